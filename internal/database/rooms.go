// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/models"
)

const (
	// RoomCodeLength is the number of characters in a room code.
	RoomCodeLength = 6

	// RoomCodeAlphabet holds the characters a room code is drawn from.
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds regeneration after a code collision.
	maxCodeAttempts = 5
)

// ErrCodeExhausted is returned when no free room code was found.
var ErrCodeExhausted = errors.New("could not allocate a unique room code")

const roomColumns = `id, name, code, host_id, video_url, is_playing, playback_position, created_at, updated_at`

// GenerateRoomCode returns a random room code from crypto/rand.
func GenerateRoomCode() (string, error) {
	var b strings.Builder
	b.Grow(RoomCodeLength)
	limit := big.NewInt(int64(len(RoomCodeAlphabet)))
	for i := 0; i < RoomCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		b.WriteByte(RoomCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeRoomCode upper-cases a client supplied code.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom creates a room hosted by hostID and records the host as its
// first participant. A colliding code is regenerated up to five times.
func (db *DB) CreateRoom(ctx context.Context, name, hostID, videoURL string) (r *models.Room, err error) {
	start := time.Now()
	defer func() { observe("INSERT", "rooms", start, err) }()

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := db.newCode()
		if err != nil {
			return nil, err
		}
		room, err := db.insertRoom(ctx, name, code, hostID, videoURL)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		logging.Debug().Int("attempt", attempt).Msg("Room code collision, regenerating")
	}
	return nil, ErrCodeExhausted
}

func (db *DB) insertRoom(ctx context.Context, name, code, hostID, videoURL string) (*models.Room, error) {
	now := db.now()
	room := &models.Room{
		ID:        uuid.New().String(),
		Name:      name,
		Code:      code,
		HostID:    hostID,
		VideoURL:  videoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rooms (`+roomColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		room.ID, room.Name, room.Code, room.HostID, room.VideoURL,
		room.IsPlaying, room.CurrentTime, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to insert room: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_participants (room_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		room.ID, hostID, now); err != nil {
		return nil, fmt.Errorf("failed to add host as participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to commit room: %w", err)
	}
	return room, nil
}

// GetRoomByCode returns the room with the given code, matched
// case-insensitively, or ErrNotFound.
func (db *DB) GetRoomByCode(ctx context.Context, code string) (r *models.Room, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "rooms", start, err) }()

	return scanRoom(db.conn.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE code = $1`, NormalizeRoomCode(code)))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var r models.Room
	err := row.Scan(&r.ID, &r.Name, &r.Code, &r.HostID, &r.VideoURL,
		&r.IsPlaying, &r.CurrentTime, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// UpdateRoomState stores new playback state and returns the updated room.
// A nil state.VideoURL keeps the current video.
func (db *DB) UpdateRoomState(ctx context.Context, code string, state models.RoomState) (r *models.Room, err error) {
	start := time.Now()
	defer func() { observe("UPDATE", "rooms", start, err) }()

	code = NormalizeRoomCode(code)
	var res sql.Result
	if state.VideoURL != nil {
		res, err = db.conn.ExecContext(ctx,
			`UPDATE rooms SET is_playing = $1, playback_position = $2, video_url = $3, updated_at = $4 WHERE code = $5`,
			state.IsPlaying, state.CurrentTime, *state.VideoURL, db.now(), code)
	} else {
		res, err = db.conn.ExecContext(ctx,
			`UPDATE rooms SET is_playing = $1, playback_position = $2, updated_at = $3 WHERE code = $4`,
			state.IsPlaying, state.CurrentTime, db.now(), code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update room state: %w", err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return nil, ErrNotFound
	}

	return scanRoom(db.conn.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE code = $1`, code))
}

// JoinRoom adds userID to the room. joined is false when the user was
// already a participant.
func (db *DB) JoinRoom(ctx context.Context, roomID, userID string) (joined bool, err error) {
	start := time.Now()
	defer func() { observe("INSERT", "room_participants", start, err) }()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO room_participants (room_id, user_id, joined_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		roomID, userID, db.now())
	if err != nil {
		return false, fmt.Errorf("failed to join room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read join result: %w", err)
	}
	return n > 0, nil
}

// IsParticipant reports whether userID has joined the room.
func (db *DB) IsParticipant(ctx context.Context, roomID, userID string) (ok bool, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "room_participants", start, err) }()

	var n int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_participants WHERE room_id = $1 AND user_id = $2`,
		roomID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return n > 0, nil
}

// ListParticipants returns the users in a room ordered by join time.
func (db *DB) ListParticipants(ctx context.Context, roomID string) (ps []models.Participant, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "room_participants", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.user_id, u.username, p.joined_at
		FROM room_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.room_id = $1
		ORDER BY p.joined_at, u.username`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer closeQuietly(rows)

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.UserID, &p.Username, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// CountParticipants returns the number of users in a room.
func (db *DB) CountParticipants(ctx context.Context, roomID string) (n int, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "room_participants", start, err) }()

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_participants WHERE room_id = $1`, roomID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

// DeleteRoom closes a room and removes its participants.
func (db *DB) DeleteRoom(ctx context.Context, roomID string) (err error) {
	start := time.Now()
	defer func() { observe("DELETE", "rooms", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM room_participants WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// CountRooms returns the number of open rooms.
func (db *DB) CountRooms(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "rooms", start, err) }()

	err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return n, nil
}

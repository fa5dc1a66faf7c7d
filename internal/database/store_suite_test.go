// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/videoparty/internal/models"
)

// runStoreSuite exercises the data access methods against any driver.
// newDB must return an empty, migrated database.
func runStoreSuite(t *testing.T, newDB func(t *testing.T) *DB) {
	t.Run("users", func(t *testing.T) { testUsers(t, newDB(t)) })
	t.Run("update user", func(t *testing.T) { testUpdateUser(t, newDB(t)) })
	t.Run("rooms", func(t *testing.T) { testRooms(t, newDB(t)) })
	t.Run("room state", func(t *testing.T) { testRoomState(t, newDB(t)) })
	t.Run("participants", func(t *testing.T) { testParticipants(t, newDB(t)) })
	t.Run("delete room", func(t *testing.T) { testDeleteRoom(t, newDB(t)) })
	t.Run("delete user", func(t *testing.T) { testDeleteUser(t, newDB(t)) })
	t.Run("code collision", func(t *testing.T) { testCodeCollision(t, newDB(t)) })
}

func TestStore_DuckDB(t *testing.T) {
	t.Parallel()
	runStoreSuite(t, setupTestDB)
}

func mustCreateUser(t *testing.T, db *DB, name string) *models.User {
	t.Helper()
	u, err := db.CreateUser(context.Background(), name, "hash-"+name)
	if err != nil {
		t.Fatalf("CreateUser(%q) error = %v", name, err)
	}
	return u
}

func mustCreateRoom(t *testing.T, db *DB, host *models.User) *models.Room {
	t.Helper()
	r, err := db.CreateRoom(context.Background(), "Movie night", host.ID, "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	return r
}

func testUsers(t *testing.T, db *DB) {
	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice")

	if alice.ID == "" || alice.CreatedAt.IsZero() {
		t.Fatalf("CreateUser() returned incomplete user %+v", alice)
	}

	if _, err := db.CreateUser(ctx, "alice", "other"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrConflict", err)
	}

	byName, err := db.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if byName.ID != alice.ID || byName.PasswordHash != "hash-alice" {
		t.Errorf("GetUserByUsername() = %+v", byName)
	}

	byID, err := db.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("GetUserByID().Username = %q", byID.Username)
	}
	if !byID.CreatedAt.Equal(alice.CreatedAt.Truncate(time.Microsecond)) {
		t.Errorf("CreatedAt = %v, want %v", byID.CreatedAt, alice.CreatedAt)
	}

	if _, err := db.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByUsername(ctx, "ALICE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("usernames should be case-sensitive, got %v", err)
	}
}

func testUpdateUser(t *testing.T, db *DB) {
	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice")
	mustCreateUser(t, db, "bob")

	newName := "alicia"
	updated, err := db.UpdateUser(ctx, alice.ID, &newName, nil)
	if err != nil {
		t.Fatalf("UpdateUser(username) error = %v", err)
	}
	if updated.Username != "alicia" || updated.PasswordHash != "hash-alice" {
		t.Errorf("UpdateUser(username) = %+v", updated)
	}

	hash := "new-hash"
	updated, err = db.UpdateUser(ctx, alice.ID, nil, &hash)
	if err != nil {
		t.Fatalf("UpdateUser(password) error = %v", err)
	}
	if updated.Username != "alicia" || updated.PasswordHash != "new-hash" {
		t.Errorf("UpdateUser(password) = %+v", updated)
	}

	taken := "bob"
	if _, err := db.UpdateUser(ctx, alice.ID, &taken, nil); !errors.Is(err, ErrConflict) {
		t.Errorf("rename to existing user error = %v, want ErrConflict", err)
	}

	if _, err := db.UpdateUser(ctx, "missing", &newName, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUser(missing) error = %v, want ErrNotFound", err)
	}
}

func testRooms(t *testing.T, db *DB) {
	ctx := context.Background()
	host := mustCreateUser(t, db, "host")
	room := mustCreateRoom(t, db, host)

	if len(room.Code) != RoomCodeLength {
		t.Errorf("code %q has length %d", room.Code, len(room.Code))
	}
	for _, c := range room.Code {
		if !strings.ContainsRune(RoomCodeAlphabet, c) {
			t.Errorf("code %q contains %q", room.Code, c)
		}
	}
	if room.IsPlaying || room.CurrentTime != 0 {
		t.Errorf("new room state = (%v, %v), want paused at 0", room.IsPlaying, room.CurrentTime)
	}

	got, err := db.GetRoomByCode(ctx, strings.ToLower(room.Code))
	if err != nil {
		t.Fatalf("GetRoomByCode(lower) error = %v", err)
	}
	if got.ID != room.ID || got.HostID != host.ID || got.VideoURL != room.VideoURL {
		t.Errorf("GetRoomByCode() = %+v, want %+v", got, room)
	}

	ok, err := db.IsParticipant(ctx, room.ID, host.ID)
	if err != nil || !ok {
		t.Errorf("host should be a participant: ok=%v err=%v", ok, err)
	}

	if _, err := db.GetRoomByCode(ctx, "ZZZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRoomByCode(unknown) error = %v, want ErrNotFound", err)
	}

	n, err := db.CountRooms(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountRooms() = %d, %v", n, err)
	}
}

func testRoomState(t *testing.T, db *DB) {
	ctx := context.Background()
	host := mustCreateUser(t, db, "host")
	room := mustCreateRoom(t, db, host)

	updated, err := db.UpdateRoomState(ctx, room.Code, models.RoomState{IsPlaying: true, CurrentTime: 42.5})
	if err != nil {
		t.Fatalf("UpdateRoomState() error = %v", err)
	}
	if !updated.IsPlaying || updated.CurrentTime != 42.5 || updated.VideoURL != room.VideoURL {
		t.Errorf("UpdateRoomState() = %+v", updated)
	}
	if updated.UpdatedAt.Before(room.UpdatedAt.Truncate(time.Microsecond)) {
		t.Errorf("UpdatedAt went backwards: %v < %v", updated.UpdatedAt, room.UpdatedAt)
	}

	next := "https://vimeo.com/76979871"
	updated, err = db.UpdateRoomState(ctx, strings.ToLower(room.Code), models.RoomState{CurrentTime: 0, VideoURL: &next})
	if err != nil {
		t.Fatalf("UpdateRoomState(video) error = %v", err)
	}
	if updated.IsPlaying || updated.VideoURL != next {
		t.Errorf("UpdateRoomState(video) = %+v", updated)
	}

	if _, err := db.UpdateRoomState(ctx, "ZZZZZZ", models.RoomState{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateRoomState(unknown) error = %v, want ErrNotFound", err)
	}
}

func testParticipants(t *testing.T, db *DB) {
	ctx := context.Background()
	host := mustCreateUser(t, db, "host")
	guest := mustCreateUser(t, db, "guest")
	room := mustCreateRoom(t, db, host)

	joined, err := db.JoinRoom(ctx, room.ID, guest.ID)
	if err != nil || !joined {
		t.Fatalf("JoinRoom() = %v, %v; want true, nil", joined, err)
	}
	joined, err = db.JoinRoom(ctx, room.ID, guest.ID)
	if err != nil || joined {
		t.Errorf("second JoinRoom() = %v, %v; want false, nil", joined, err)
	}

	n, err := db.CountParticipants(ctx, room.ID)
	if err != nil || n != 2 {
		t.Errorf("CountParticipants() = %d, %v; want 2", n, err)
	}

	ps, err := db.ListParticipants(ctx, room.ID)
	if err != nil {
		t.Fatalf("ListParticipants() error = %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("ListParticipants() returned %d rows, want 2", len(ps))
	}
	names := map[string]bool{}
	for _, p := range ps {
		names[p.Username] = true
		if p.JoinedAt.IsZero() {
			t.Errorf("participant %s has zero JoinedAt", p.Username)
		}
	}
	if !names["host"] || !names["guest"] {
		t.Errorf("participants = %+v", ps)
	}

	empty, err := db.ListParticipants(ctx, "no-such-room")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("ListParticipants(unknown) = %v, %v; want empty slice", empty, err)
	}
}

func testDeleteRoom(t *testing.T, db *DB) {
	ctx := context.Background()
	host := mustCreateUser(t, db, "host")
	room := mustCreateRoom(t, db, host)

	if err := db.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("DeleteRoom() error = %v", err)
	}
	if _, err := db.GetRoomByCode(ctx, room.Code); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRoomByCode after delete error = %v", err)
	}
	if n, _ := db.CountParticipants(ctx, room.ID); n != 0 {
		t.Errorf("participants left after delete: %d", n)
	}
	if err := db.DeleteRoom(ctx, room.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRoom() error = %v, want ErrNotFound", err)
	}
}

func testDeleteUser(t *testing.T, db *DB) {
	ctx := context.Background()
	host := mustCreateUser(t, db, "host")
	guest := mustCreateUser(t, db, "guest")
	room := mustCreateRoom(t, db, host)
	if _, err := db.JoinRoom(ctx, room.ID, guest.ID); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteUser(ctx, guest.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := db.GetUserByID(ctx, guest.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID after delete error = %v", err)
	}
	if ok, _ := db.IsParticipant(ctx, room.ID, guest.ID); ok {
		t.Error("deleted user is still a participant")
	}
}

func testCodeCollision(t *testing.T, db *DB) {
	host := mustCreateUser(t, db, "host")

	db.newCode = func() (string, error) { return "AAAAAA", nil }
	first := mustCreateRoom(t, db, host)
	if first.Code != "AAAAAA" {
		t.Fatalf("code = %q", first.Code)
	}

	// Colliding twice, then a free code.
	calls := 0
	db.newCode = func() (string, error) {
		calls++
		if calls < 3 {
			return "AAAAAA", nil
		}
		return "BBBBBB", nil
	}
	second := mustCreateRoom(t, db, host)
	if second.Code != "BBBBBB" || calls != 3 {
		t.Errorf("code = %q after %d attempts, want BBBBBB after 3", second.Code, calls)
	}

	calls = 0
	db.newCode = func() (string, error) {
		calls++
		return "AAAAAA", nil
	}
	_, err := db.CreateRoom(context.Background(), "x", host.ID, "u")
	if !errors.Is(err, ErrCodeExhausted) {
		t.Errorf("CreateRoom() error = %v, want ErrCodeExhausted", err)
	}
	if calls != maxCodeAttempts {
		t.Errorf("generator called %d times, want %d", calls, maxCodeAttempts)
	}

	db.newCode = func() (string, error) { return "", fmt.Errorf("entropy exhausted") }
	if _, err := db.CreateRoom(context.Background(), "x", host.ID, "u"); err == nil {
		t.Error("CreateRoom() should surface generator errors")
	}
}

func TestGenerateRoomCode(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateRoomCode()
		if err != nil {
			t.Fatalf("GenerateRoomCode() error = %v", err)
		}
		if len(code) != RoomCodeLength || strings.Trim(code, RoomCodeAlphabet) != "" {
			t.Fatalf("invalid code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Errorf("only %d distinct codes in 200 draws", len(seen))
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	t.Parallel()
	if got := NormalizeRoomCode(" xk4q2z "); got != "XK4Q2Z" {
		t.Errorf("NormalizeRoomCode() = %q", got)
	}
}

// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/videoparty/internal/models"
)

const userColumns = `id, username, password_hash, created_at, updated_at`

// CreateUser inserts a new account. ErrConflict is returned when the
// username is taken.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (u *models.User, err error) {
	start := time.Now()
	defer func() { observe("INSERT", "users", start, err) }()

	now := db.now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// GetUserByID returns the user with the given id or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id string) (u *models.User, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "users", start, err) }()

	return db.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByUsername returns the user with the given username or ErrNotFound.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (u *models.User, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "users", start, err) }()

	return db.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (db *DB) scanUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateUser changes the username and/or password hash of a user. Nil
// arguments keep the current value. Returns the updated user.
func (db *DB) UpdateUser(ctx context.Context, id string, username, passwordHash *string) (u *models.User, err error) {
	start := time.Now()
	defer func() { observe("UPDATE", "users", start, err) }()

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if username != nil {
		args = append(args, *username)
		sets = append(sets, fmt.Sprintf("username = $%d", len(args)))
	}
	if passwordHash != nil {
		args = append(args, *passwordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	args = append(args, db.now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	// #nosec G201 -- column names are fixed above, values are bound
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return nil, ErrNotFound
	}
	return db.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// DeleteUser removes an account and its room memberships.
func (db *DB) DeleteUser(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe("DELETE", "users", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM room_participants WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

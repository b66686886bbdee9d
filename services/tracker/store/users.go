// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is a registered identity. PasswordHash is a bcrypt hash and is
// never serialized to clients.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// FullName returns "first last" with empty parts dropped, falling back to
// the username when both name parts are empty.
func (u *User) FullName() string {
	full := strings.TrimSpace(strings.Join(nonEmpty(u.FirstName, u.LastName), " "))
	if full == "" {
		return u.Username
	}
	return full
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CreateUser inserts a new user and stamps CreatedAt.
// Returns ErrDuplicate when the username is taken.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.FirstName, u.LastName, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return translateWrite(err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read user id: %w", err)
	}
	return nil
}

// GetUser returns the user with the given id, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, username, password_hash, created_at
		 FROM users WHERE id = ?`, id))
}

// GetUserByUsername returns the user with the given username, or ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, username, password_hash, created_at
		 FROM users WHERE username = ?`, username))
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, username, password_hash, created_at
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var created string
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username,
			&u.PasswordHash, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.CreatedAt, err = parseCreatedAt(created); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates the mutable fields of a user. The password hash is
// only replaced when a non-empty hash is supplied.
// Returns ErrNotFound for a missing id and ErrDuplicate on a taken username.
func (s *Store) UpdateUser(ctx context.Context, u *User) error {
	var res sql.Result
	var err error
	if u.PasswordHash != "" {
		res, err = s.db.ExecContext(ctx,
			`UPDATE users SET first_name = ?, last_name = ?, username = ?, password_hash = ?
			 WHERE id = ?`,
			u.FirstName, u.LastName, u.Username, u.PasswordHash, u.ID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE users SET first_name = ?, last_name = ?, username = ? WHERE id = ?`,
			u.FirstName, u.LastName, u.Username, u.ID)
	}
	if err != nil {
		return translateWrite(err)
	}
	return requireRow(res)
}

// DeleteUser removes a user.
// Returns ErrInUse when the user still authors or executes tasks.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translateDelete(err)
	}
	return requireRow(res)
}

// UsernameTaken reports whether another user (excluding excludeID) already
// holds the username. Pass excludeID 0 for creation checks.
func (s *Store) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	return s.exists(ctx,
		`SELECT 1 FROM users WHERE username = ? AND id != ?`, username, excludeID)
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if u.CreatedAt, err = parseCreatedAt(created); err != nil {
		return nil, err
	}
	return &u, nil
}

// requireRow converts a zero-row update or delete into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

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
	"time"

	"github.com/google/uuid"
)

// SessionTTL bounds the lifetime of a session row and of the cookie that
// carries its token. A leaked token is useless once the row expires.
const SessionTTL = 14 * 24 * time.Hour

// CreateSession mints an opaque session token for the user and persists it.
func (s *Store) CreateSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("create session: %w", translateWrite(err))
	}
	return token, nil
}

// UserForSession resolves a session token to its user.
// Returns ErrNotFound for unknown or expired tokens; an expired row is
// removed on the way out.
func (s *Store) UserForSession(ctx context.Context, token string) (*User, error) {
	var userID int64
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, created_at FROM sessions WHERE token = ?`, token).
		Scan(&userID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	createdAt, err := parseCreatedAt(created)
	if err != nil {
		return nil, err
	}
	if time.Since(createdAt) > SessionTTL {
		if err := s.DeleteSession(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, userID)
}

// DeleteSession invalidates a session token. Deleting an unknown token is
// not an error; logout is idempotent.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store provides SQLite persistence for the tracker service.
//
// # Description
//
// The store owns the four entity tables (users, statuses, labels, tasks)
// plus the task_labels join table and the sessions table. Uniqueness and
// referential integrity are enforced by the database itself: every foreign
// key from tasks is declared ON DELETE RESTRICT, so the database rejects
// any deletion that would orphan a task. The store's job is to translate
// those constraint failures into the sentinel errors callers branch on:
//
//   - ErrNotFound: the requested row does not exist
//   - ErrDuplicate: a UNIQUE constraint (name, username) was violated
//   - ErrInUse: a RESTRICT foreign key blocked a deletion
//   - ErrBadReference: a write named a row that does not exist
//
// Handlers never see raw driver errors; they match sentinels with errors.Is.
//
// # Concurrency
//
// The *sql.DB pool is safe for concurrent use. WAL mode and a busy timeout
// are enabled so concurrent requests queue instead of failing. In-memory
// stores pin the pool to a single connection because each SQLite :memory:
// connection is an independent database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Sentinel errors returned by store operations. Callers should test with
// errors.Is rather than direct comparison since errors may be wrapped.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate indicates a UNIQUE constraint violation, such as a
	// second status with the same name or a taken username.
	ErrDuplicate = errors.New("store: duplicate value")

	// ErrInUse indicates a deletion was blocked because dependent rows
	// still reference the target (RESTRICT foreign key).
	ErrInUse = errors.New("store: row is referenced by dependent rows")

	// ErrBadReference indicates an insert or update named a status, user,
	// or label that does not exist.
	ErrBadReference = errors.New("store: referenced row does not exist")
)

// Store wraps the SQLite database behind typed entity operations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the tracker database at the given path and
// applies the schema. The caller owns the returned store and must Close it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Foreign keys are off by default in SQLite; the integrity guard
	// depends on them being enforced.
	if _, err := db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens an isolated in-memory database. Each call creates a
// fresh database, which makes it ideal for tests.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A :memory: DSN gives every pooled connection its own database, so
	// the pool must stay at exactly one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// translateConstraint maps SQLite constraint failures onto the store's
// sentinel errors. modernc.org/sqlite surfaces constraint violations as
// textual errors, so classification is by message. A foreign key failure
// means different things depending on the operation: on a delete it is a
// dependent row blocking the removal (ErrInUse), on a write it is a
// dangling reference in the new data (ErrBadReference). The fkSentinel
// argument selects the right one.
func translateConstraint(err error, fkSentinel error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %s", ErrDuplicate, msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s", fkSentinel, msg)
	}
	return err
}

// translateWrite classifies constraint failures from inserts and updates.
func translateWrite(err error) error { return translateConstraint(err, ErrBadReference) }

// translateDelete classifies constraint failures from deletions.
func translateDelete(err error) error { return translateConstraint(err, ErrInUse) }

// parseCreatedAt decodes a stored RFC3339 timestamp. A row that fails to
// parse is corrupt and surfaces as an error rather than a zero time.
func parseCreatedAt(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", raw, err)
	}
	return ts, nil
}

// exists reports whether the query returns at least one row.
func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

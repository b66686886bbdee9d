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
)

// NamedRow is the shape shared by statuses and labels: an id, a unique
// name, and a creation timestamp. Statuses and Labels differ only in
// which table they live in, so their CRUD is implemented once here.
type NamedRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// namedTable restricts the generic helpers to the two tables that hold
// NamedRow data. Interpolating a table name into SQL is only safe because
// the values are compile-time constants.
type namedTable string

const (
	tableStatuses namedTable = "statuses"
	tableLabels   namedTable = "labels"
)

func (s *Store) createNamed(ctx context.Context, table namedTable, r *NamedRow) error {
	r.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, created_at) VALUES (?, ?)`, table),
		r.Name, r.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return translateWrite(err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read %s id: %w", table, err)
	}
	return nil
}

func (s *Store) getNamed(ctx context.Context, table namedTable, id int64) (*NamedRow, error) {
	var r NamedRow
	var created string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, name, created_at FROM %s WHERE id = ?`, table), id).
		Scan(&r.ID, &r.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	if r.CreatedAt, err = parseCreatedAt(created); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) listNamed(ctx context.Context, table namedTable) ([]NamedRow, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name, created_at FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []NamedRow
	for rows.Next() {
		var r NamedRow
		var created string
		if err := rows.Scan(&r.ID, &r.Name, &created); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		if r.CreatedAt, err = parseCreatedAt(created); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) updateNamed(ctx context.Context, table namedTable, r *NamedRow) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = ? WHERE id = ?`, table), r.Name, r.ID)
	if err != nil {
		return translateWrite(err)
	}
	return requireRow(res)
}

func (s *Store) deleteNamed(ctx context.Context, table namedTable, id int64) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return translateDelete(err)
	}
	return requireRow(res)
}

func (s *Store) namedTaken(ctx context.Context, table namedTable, name string, excludeID int64) (bool, error) {
	return s.exists(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE name = ? AND id != ?`, table), name, excludeID)
}

// Status operations.

// CreateStatus inserts a new status. Returns ErrDuplicate for a taken name.
func (s *Store) CreateStatus(ctx context.Context, r *NamedRow) error {
	return s.createNamed(ctx, tableStatuses, r)
}

// GetStatus returns the status with the given id, or ErrNotFound.
func (s *Store) GetStatus(ctx context.Context, id int64) (*NamedRow, error) {
	return s.getNamed(ctx, tableStatuses, id)
}

// ListStatuses returns all statuses ordered by id.
func (s *Store) ListStatuses(ctx context.Context) ([]NamedRow, error) {
	return s.listNamed(ctx, tableStatuses)
}

// UpdateStatus renames a status. Returns ErrDuplicate for a taken name.
func (s *Store) UpdateStatus(ctx context.Context, r *NamedRow) error {
	return s.updateNamed(ctx, tableStatuses, r)
}

// DeleteStatus removes a status. Returns ErrInUse while any task
// references it.
func (s *Store) DeleteStatus(ctx context.Context, id int64) error {
	return s.deleteNamed(ctx, tableStatuses, id)
}

// StatusNameTaken reports whether another status already holds the name.
func (s *Store) StatusNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	return s.namedTaken(ctx, tableStatuses, name, excludeID)
}

// Label operations.

// CreateLabel inserts a new label. Returns ErrDuplicate for a taken name.
func (s *Store) CreateLabel(ctx context.Context, r *NamedRow) error {
	return s.createNamed(ctx, tableLabels, r)
}

// GetLabel returns the label with the given id, or ErrNotFound.
func (s *Store) GetLabel(ctx context.Context, id int64) (*NamedRow, error) {
	return s.getNamed(ctx, tableLabels, id)
}

// ListLabels returns all labels ordered by id.
func (s *Store) ListLabels(ctx context.Context) ([]NamedRow, error) {
	return s.listNamed(ctx, tableLabels)
}

// UpdateLabel renames a label. Returns ErrDuplicate for a taken name.
func (s *Store) UpdateLabel(ctx context.Context, r *NamedRow) error {
	return s.updateNamed(ctx, tableLabels, r)
}

// DeleteLabel removes a label. Returns ErrInUse while any task
// references it.
func (s *Store) DeleteLabel(ctx context.Context, id int64) error {
	return s.deleteNamed(ctx, tableLabels, id)
}

// LabelNameTaken reports whether another label already holds the name.
func (s *Store) LabelNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	return s.namedTaken(ctx, tableLabels, name, excludeID)
}

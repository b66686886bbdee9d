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

// Task is a unit of work. AuthorID is stamped at creation from the acting
// identity and is never changed by UpdateTask. ExecutorID is optional.
type Task struct {
	ID          int64
	Name        string
	Description string
	StatusID    int64
	AuthorID    int64
	ExecutorID  *int64
	LabelIDs    []int64
	CreatedAt   time.Time
}

// TaskFilter narrows ListTasks results. Nil pointer fields impose no
// constraint; all set fields compose conjunctively. SelfOnly restricts the
// result to tasks authored by ActorID regardless of the other fields.
type TaskFilter struct {
	StatusID   *int64
	ExecutorID *int64
	LabelID    *int64
	SelfOnly   bool
	ActorID    int64
}

// CreateTask inserts a task and its label links in one transaction.
// The caller must have stamped AuthorID from the acting identity.
// Returns ErrBadReference when a referenced status, user, or label does
// not exist.
func (s *Store) CreateTask(ctx context.Context, t *Task) error {
	t.CreatedAt = time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (name, description, status_id, author_id, executor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.StatusID, t.AuthorID, t.ExecutorID,
		t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return translateWrite(err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read task id: %w", err)
	}

	if err := insertTaskLabels(ctx, tx, t.ID, t.LabelIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTask returns the task with the given id, labels included, or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, id int64) (*Task, error) {
	var t Task
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, status_id, author_id, executor_id, created_at
		 FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.StatusID, &t.AuthorID, &t.ExecutorID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	if t.CreatedAt, err = parseCreatedAt(created); err != nil {
		return nil, err
	}

	t.LabelIDs, err = s.taskLabelIDs(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns tasks matching every set field of the filter, ordered
// by id. A zero filter returns all tasks. Filters only ever narrow the
// result set.
func (s *Store) ListTasks(ctx context.Context, f TaskFilter) ([]Task, error) {
	query := `SELECT id, name, description, status_id, author_id, executor_id, created_at
	          FROM tasks`
	var where []string
	var args []any

	if f.StatusID != nil {
		where = append(where, "status_id = ?")
		args = append(args, *f.StatusID)
	}
	if f.ExecutorID != nil {
		where = append(where, "executor_id = ?")
		args = append(args, *f.ExecutorID)
	}
	if f.LabelID != nil {
		where = append(where, "id IN (SELECT task_id FROM task_labels WHERE label_id = ?)")
		args = append(args, *f.LabelID)
	}
	if f.SelfOnly {
		where = append(where, "author_id = ?")
		args = append(args, f.ActorID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.StatusID,
			&t.AuthorID, &t.ExecutorID, &created); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if t.CreatedAt, err = parseCreatedAt(created); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].LabelIDs, err = s.taskLabelIDs(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// UpdateTask updates the mutable fields of a task and replaces its label
// links. The author column is deliberately absent from the UPDATE: the
// author is immutable after creation.
// Returns ErrNotFound for a missing id.
func (s *Store) UpdateTask(ctx context.Context, t *Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET name = ?, description = ?, status_id = ?, executor_id = ?
		 WHERE id = ?`,
		t.Name, t.Description, t.StatusID, t.ExecutorID, t.ID)
	if err != nil {
		return translateWrite(err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM task_labels WHERE task_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clear task labels: %w", err)
	}
	if err := insertTaskLabels(ctx, tx, t.ID, t.LabelIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteTask removes a task and, via cascade, its label links.
// Returns ErrNotFound for a missing id. Tasks have no inbound dependents,
// so deletion never returns ErrInUse.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return translateDelete(err)
	}
	return requireRow(res)
}

func (s *Store) taskLabelIDs(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label_id FROM task_labels WHERE task_id = ? ORDER BY label_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task labels: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan label id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertTaskLabels(ctx context.Context, tx *sql.Tx, taskID int64, labelIDs []int64) error {
	// Repeated ids collapse to one link rather than tripping the
	// task_labels primary key.
	seen := make(map[int64]struct{}, len(labelIDs))
	for _, labelID := range labelIDs {
		if _, ok := seen[labelID]; ok {
			continue
		}
		seen[labelID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_labels (task_id, label_id) VALUES (?, ?)`,
			taskID, labelID); err != nil {
			return translateWrite(err)
		}
	}
	return nil
}

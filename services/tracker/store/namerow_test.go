// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Statuses and labels share one implementation, so each case runs against
// both tables through this harness.
type namedOps struct {
	create func(ctx context.Context, r *NamedRow) error
	get    func(ctx context.Context, id int64) (*NamedRow, error)
	list   func(ctx context.Context) ([]NamedRow, error)
	update func(ctx context.Context, r *NamedRow) error
	delete func(ctx context.Context, id int64) error
	taken  func(ctx context.Context, name string, excludeID int64) (bool, error)
}

func statusOps(st *Store) namedOps {
	return namedOps{st.CreateStatus, st.GetStatus, st.ListStatuses,
		st.UpdateStatus, st.DeleteStatus, st.StatusNameTaken}
}

func labelOps(st *Store) namedOps {
	return namedOps{st.CreateLabel, st.GetLabel, st.ListLabels,
		st.UpdateLabel, st.DeleteLabel, st.LabelNameTaken}
}

func runNamedRowTests(t *testing.T, kind string, ops func(*Store) namedOps) {
	ctx := context.Background()

	t.Run(kind+" round trip", func(t *testing.T) {
		st := NewTestStore(t)
		o := ops(st)

		r := &NamedRow{Name: "new"}
		require.NoError(t, o.create(ctx, r))
		require.NotZero(t, r.ID)

		got, err := o.get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Name)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run(kind+" duplicate name rejected", func(t *testing.T) {
		st := NewTestStore(t)
		o := ops(st)

		require.NoError(t, o.create(ctx, &NamedRow{Name: "new"}))
		err := o.create(ctx, &NamedRow{Name: "new"})
		assert.ErrorIs(t, err, ErrDuplicate)

		rows, err := o.list(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1, "failed creation must not add a row")
	})

	t.Run(kind+" rename", func(t *testing.T) {
		st := NewTestStore(t)
		o := ops(st)

		r := &NamedRow{Name: "old"}
		require.NoError(t, o.create(ctx, r))
		r.Name = "renamed"
		require.NoError(t, o.update(ctx, r))

		got, err := o.get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
	})

	t.Run(kind+" rename onto taken name rejected", func(t *testing.T) {
		st := NewTestStore(t)
		o := ops(st)

		require.NoError(t, o.create(ctx, &NamedRow{Name: "a"}))
		b := &NamedRow{Name: "b"}
		require.NoError(t, o.create(ctx, b))

		b.Name = "a"
		assert.ErrorIs(t, o.update(ctx, b), ErrDuplicate)
	})

	t.Run(kind+" delete unreferenced row", func(t *testing.T) {
		st := NewTestStore(t)
		o := ops(st)

		r := &NamedRow{Name: "new"}
		require.NoError(t, o.create(ctx, r))
		require.NoError(t, o.delete(ctx, r.ID))

		rows, err := o.list(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run(kind+" delete missing row", func(t *testing.T) {
		st := NewTestStore(t)
		o := ops(st)

		assert.ErrorIs(t, o.delete(ctx, 99), ErrNotFound)
	})

	t.Run(kind+" name taken excludes self", func(t *testing.T) {
		st := NewTestStore(t)
		o := ops(st)

		r := &NamedRow{Name: "new"}
		require.NoError(t, o.create(ctx, r))

		taken, err := o.taken(ctx, "new", 0)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = o.taken(ctx, "new", r.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestStatuses(t *testing.T) {
	runNamedRowTests(t, "status", statusOps)
}

func TestLabels(t *testing.T) {
	runNamedRowTests(t, "label", labelOps)
}

// =============================================================================
// Referential Integrity Tests
// =============================================================================

func TestGetStatus_CorruptTimestampSurfaced(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	status := mustCreateStatus(t, st, "new")
	_, err := st.DB().ExecContext(ctx,
		`UPDATE statuses SET created_at = 'not-a-time' WHERE id = ?`, status.ID)
	require.NoError(t, err)

	_, err = st.GetStatus(ctx, status.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = st.ListStatuses(ctx)
	require.Error(t, err)
}

func TestDeleteStatus_BlockedWhileReferenced(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "in progress")
	require.NoError(t, st.CreateTask(ctx, &Task{
		Name: "t", StatusID: status.ID, AuthorID: author.ID,
	}))

	err := st.DeleteStatus(ctx, status.ID)
	assert.ErrorIs(t, err, ErrInUse)

	rows, err := st.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "blocked deletion must leave the row count unchanged")
}

func TestDeleteLabel_BlockedWhileReferenced(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")
	label := mustCreateLabel(t, st, "bug")
	require.NoError(t, st.CreateTask(ctx, &Task{
		Name: "t", StatusID: status.ID, AuthorID: author.ID, LabelIDs: []int64{label.ID},
	}))

	err := st.DeleteLabel(ctx, label.ID)
	assert.ErrorIs(t, err, ErrInUse)

	rows, err := st.ListLabels(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDeleteLabel_AllowedAfterTaskDeleted(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")
	label := mustCreateLabel(t, st, "bug")
	task := &Task{Name: "t", StatusID: status.ID, AuthorID: author.ID, LabelIDs: []int64{label.ID}}
	require.NoError(t, st.CreateTask(ctx, task))

	// Deleting the task cascades its label links, freeing the label.
	require.NoError(t, st.DeleteTask(ctx, task.ID))
	assert.NoError(t, st.DeleteLabel(ctx, label.ID))
}

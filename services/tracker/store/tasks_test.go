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

// =============================================================================
// Task CRUD Tests
// =============================================================================

func TestCreateTask_RoundTrip(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	executor := mustCreateUser(t, st, "executor")
	status := mustCreateStatus(t, st, "new")
	bug := mustCreateLabel(t, st, "bug")
	urgent := mustCreateLabel(t, st, "urgent")

	task := &Task{
		Name:        "fix login",
		Description: "session cookie never expires",
		StatusID:    status.ID,
		AuthorID:    author.ID,
		ExecutorID:  &executor.ID,
		LabelIDs:    []int64{bug.ID, urgent.ID},
	}
	require.NoError(t, st.CreateTask(ctx, task))
	require.NotZero(t, task.ID)

	got, err := st.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "fix login", got.Name)
	assert.Equal(t, status.ID, got.StatusID)
	assert.Equal(t, author.ID, got.AuthorID)
	require.NotNil(t, got.ExecutorID)
	assert.Equal(t, executor.ID, *got.ExecutorID)
	assert.Equal(t, []int64{bug.ID, urgent.ID}, got.LabelIDs)
}

func TestCreateTask_MissingStatusRejected(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")

	err := st.CreateTask(ctx, &Task{Name: "t", StatusID: 99, AuthorID: author.ID})
	assert.ErrorIs(t, err, ErrBadReference)

	tasks, err := st.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks, "failed creation must not add a row")
}

func TestCreateTask_MissingLabelRolledBack(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")

	err := st.CreateTask(ctx, &Task{
		Name: "t", StatusID: status.ID, AuthorID: author.ID, LabelIDs: []int64{99},
	})
	assert.ErrorIs(t, err, ErrBadReference)

	tasks, err := st.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks, "task insert must roll back with its label links")
}

func TestUpdateTask_NeverChangesAuthor(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	other := mustCreateUser(t, st, "other")
	status := mustCreateStatus(t, st, "new")

	task := &Task{Name: "t", StatusID: status.ID, AuthorID: author.ID}
	require.NoError(t, st.CreateTask(ctx, task))

	// An update carrying a different author must not stick.
	task.Name = "renamed"
	task.AuthorID = other.ID
	require.NoError(t, st.UpdateTask(ctx, task))

	got, err := st.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, author.ID, got.AuthorID, "author is immutable after creation")
}

func TestUpdateTask_ReplacesLabels(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")
	bug := mustCreateLabel(t, st, "bug")
	docs := mustCreateLabel(t, st, "docs")

	task := &Task{Name: "t", StatusID: status.ID, AuthorID: author.ID, LabelIDs: []int64{bug.ID}}
	require.NoError(t, st.CreateTask(ctx, task))

	task.LabelIDs = []int64{docs.ID}
	require.NoError(t, st.UpdateTask(ctx, task))

	got, err := st.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{docs.ID}, got.LabelIDs)
}

func TestCreateTask_RepeatedLabelIDsCollapse(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")
	bug := mustCreateLabel(t, st, "bug")

	task := &Task{Name: "t", StatusID: status.ID, AuthorID: author.ID,
		LabelIDs: []int64{bug.ID, bug.ID}}
	require.NoError(t, st.CreateTask(ctx, task))

	got, err := st.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bug.ID}, got.LabelIDs)
}

func TestUpdateTask_RepeatedLabelIDsCollapse(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")
	bug := mustCreateLabel(t, st, "bug")
	docs := mustCreateLabel(t, st, "docs")

	task := &Task{Name: "t", StatusID: status.ID, AuthorID: author.ID}
	require.NoError(t, st.CreateTask(ctx, task))

	task.LabelIDs = []int64{docs.ID, bug.ID, docs.ID}
	require.NoError(t, st.UpdateTask(ctx, task))

	got, err := st.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bug.ID, docs.ID}, got.LabelIDs)
}

func TestDeleteTask(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")
	task := &Task{Name: "t", StatusID: status.ID, AuthorID: author.ID}
	require.NoError(t, st.CreateTask(ctx, task))

	require.NoError(t, st.DeleteTask(ctx, task.ID))
	_, err := st.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.DeleteTask(ctx, task.ID), ErrNotFound)
}

// =============================================================================
// Filter Engine Tests
// =============================================================================

// filterFixture builds the three-task arrangement used by the filter
// composition cases: T1(status A, executor U1), T2(A, U2), T3(B, U1).
func filterFixture(t *testing.T, st *Store) (u1, u2 *User, a, b *NamedRow, t1, t2, t3 *Task) {
	t.Helper()
	ctx := context.Background()

	u1 = mustCreateUser(t, st, "u1")
	u2 = mustCreateUser(t, st, "u2")
	a = mustCreateStatus(t, st, "A")
	b = mustCreateStatus(t, st, "B")

	t1 = &Task{Name: "t1", StatusID: a.ID, AuthorID: u1.ID, ExecutorID: &u1.ID}
	t2 = &Task{Name: "t2", StatusID: a.ID, AuthorID: u2.ID, ExecutorID: &u2.ID}
	t3 = &Task{Name: "t3", StatusID: b.ID, AuthorID: u2.ID, ExecutorID: &u1.ID}
	for _, task := range []*Task{t1, t2, t3} {
		require.NoError(t, st.CreateTask(ctx, task))
	}
	return
}

func taskNames(tasks []Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

func TestListTasks_NoFilterReturnsAll(t *testing.T) {
	st := NewTestStore(t)
	filterFixture(t, st)

	tasks, err := st.ListTasks(context.Background(), TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, taskNames(tasks))
}

func TestListTasks_FiltersComposeConjunctively(t *testing.T) {
	st := NewTestStore(t)
	u1, _, a, _, _, _, _ := filterFixture(t, st)

	tasks, err := st.ListTasks(context.Background(), TaskFilter{
		StatusID:   &a.ID,
		ExecutorID: &u1.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, taskNames(tasks),
		"status=A AND executor=U1 must narrow to exactly T1")
}

func TestListTasks_SingleFilters(t *testing.T) {
	st := NewTestStore(t)
	u1, _, a, _, _, _, _ := filterFixture(t, st)

	tasks, err := st.ListTasks(context.Background(), TaskFilter{StatusID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, taskNames(tasks))

	tasks, err = st.ListTasks(context.Background(), TaskFilter{ExecutorID: &u1.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t3"}, taskNames(tasks))
}

func TestListTasks_SelfOnly(t *testing.T) {
	st := NewTestStore(t)
	u1, u2, _, _, _, _, _ := filterFixture(t, st)

	tasks, err := st.ListTasks(context.Background(), TaskFilter{SelfOnly: true, ActorID: u1.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, taskNames(tasks))

	tasks, err = st.ListTasks(context.Background(), TaskFilter{SelfOnly: true, ActorID: u2.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t3"}, taskNames(tasks))
}

func TestListTasks_LabelFilter(t *testing.T) {
	st := NewTestStore(t)
	ctx := context.Background()

	author := mustCreateUser(t, st, "author")
	status := mustCreateStatus(t, st, "new")
	bug := mustCreateLabel(t, st, "bug")

	tagged := &Task{Name: "tagged", StatusID: status.ID, AuthorID: author.ID, LabelIDs: []int64{bug.ID}}
	plain := &Task{Name: "plain", StatusID: status.ID, AuthorID: author.ID}
	require.NoError(t, st.CreateTask(ctx, tagged))
	require.NoError(t, st.CreateTask(ctx, plain))

	tasks, err := st.ListTasks(ctx, TaskFilter{LabelID: &bug.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"tagged"}, taskNames(tasks))
}

func TestListTasks_SelfOnlyComposesWithOtherFilters(t *testing.T) {
	st := NewTestStore(t)
	u1, _, a, _, _, _, _ := filterFixture(t, st)

	// u1 authored only t1; status=A keeps t1 and t2. Conjunction keeps t1.
	tasks, err := st.ListTasks(context.Background(), TaskFilter{
		StatusID: &a.ID,
		SelfOnly: true,
		ActorID:  u1.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, taskNames(tasks))
}

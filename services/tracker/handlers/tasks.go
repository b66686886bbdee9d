// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/tasktracker/pkg/validation"
	"github.com/AleutianAI/tasktracker/services/tracker/datatypes"
	"github.com/AleutianAI/tasktracker/services/tracker/middleware"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/policy"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

const (
	msgTaskCreated = "Task successfully created"
	msgTaskUpdated = "Task successfully updated"
	msgTaskDeleted = "Task successfully deleted"
)

// ListTasks returns the task collection, narrowed by the optional
// status/executor/label/self_tasks query filters. Filters compose with
// AND; an unknown id in a filter simply matches nothing.
func ListTasks(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, eng, m, policy.ResourceTask, policy.ActionList, policy.Target{}) {
			return
		}
		var query datatypes.TaskListQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			m.RecordValidationFailure("task")
			m.RecordRequest("task", "list", outcomeInvalid)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validation.FromBindingError(err)})
			return
		}

		actor := middleware.CurrentActor(c)
		filter := store.TaskFilter{
			StatusID:   query.StatusID,
			ExecutorID: query.ExecutorID,
			LabelID:    query.LabelID,
			SelfOnly:   query.SelfTasks,
			ActorID:    actor.ID,
		}
		tasks, err := st.ListTasks(c.Request.Context(), filter)
		if err != nil {
			storeFailure(c, m, "task", "list", err)
			return
		}
		out := make([]datatypes.TaskResponse, 0, len(tasks))
		for i := range tasks {
			out = append(out, datatypes.NewTaskResponse(&tasks[i]))
		}
		m.RecordRequest("task", "list", outcomeOK)
		c.JSON(http.StatusOK, gin.H{"tasks": out})
	}
}

// GetTask returns one task by id, labels included.
func GetTask(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, eng, m, policy.ResourceTask, policy.ActionRead, policy.Target{}) {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		task, err := st.GetTask(c.Request.Context(), id)
		if err != nil {
			storeFailure(c, m, "task", "read", err)
			return
		}
		m.RecordRequest("task", "read", outcomeOK)
		c.JSON(http.StatusOK, gin.H{"task": datatypes.NewTaskResponse(task)})
	}
}

// CreateTask creates a task authored by the requesting user. Whatever
// the client submits, the author is always the session holder.
func CreateTask(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, eng, m, policy.ResourceTask, policy.ActionCreate, policy.Target{}) {
			return
		}
		var form datatypes.TaskForm
		if !bindForm(c, m, "task", &form) {
			return
		}
		errs, err := checkTaskReferences(c, st, &form)
		if err != nil {
			storeFailure(c, m, "task", "create", err)
			return
		}
		if errs.Any() {
			rejectForm(c, m, "task", errs)
			return
		}

		actor := middleware.CurrentActor(c)
		task := &store.Task{
			Name:        form.Name,
			Description: form.Description,
			StatusID:    form.StatusID,
			AuthorID:    actor.ID,
			ExecutorID:  form.ExecutorID,
			LabelIDs:    form.LabelIDs,
		}
		if err := st.CreateTask(c.Request.Context(), task); err != nil {
			if errors.Is(err, store.ErrBadReference) {
				// A referenced row vanished between the checks above and
				// the insert.
				errs.Add("non_field_errors", validation.MsgUnknownStatus)
				rejectForm(c, m, "task", errs)
				return
			}
			storeFailure(c, m, "task", "create", err)
			return
		}

		m.RecordRequest("task", "create", outcomeOK)
		c.JSON(http.StatusCreated, gin.H{
			"message":     msgTaskCreated,
			"redirect_to": policy.TasksPath,
			"task":        datatypes.NewTaskResponse(task),
		})
	}
}

// UpdateTask rewrites a task's name, description, status, executor, and
// labels. Any authenticated user may update any task; only the author
// column never moves.
func UpdateTask(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, eng, m, policy.ResourceTask, policy.ActionUpdate, policy.Target{}) {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if _, err := st.GetTask(c.Request.Context(), id); err != nil {
			storeFailure(c, m, "task", "update", err)
			return
		}
		var form datatypes.TaskForm
		if !bindForm(c, m, "task", &form) {
			return
		}
		errs, err := checkTaskReferences(c, st, &form)
		if err != nil {
			storeFailure(c, m, "task", "update", err)
			return
		}
		if errs.Any() {
			rejectForm(c, m, "task", errs)
			return
		}

		task := &store.Task{
			ID:          id,
			Name:        form.Name,
			Description: form.Description,
			StatusID:    form.StatusID,
			ExecutorID:  form.ExecutorID,
			LabelIDs:    form.LabelIDs,
		}
		if err := st.UpdateTask(c.Request.Context(), task); err != nil {
			if errors.Is(err, store.ErrBadReference) {
				errs.Add("non_field_errors", validation.MsgUnknownStatus)
				rejectForm(c, m, "task", errs)
				return
			}
			storeFailure(c, m, "task", "update", err)
			return
		}

		m.RecordRequest("task", "update", outcomeOK)
		c.JSON(http.StatusOK, datatypes.Flash{
			Message:    msgTaskUpdated,
			RedirectTo: policy.TasksPath,
		})
	}
}

// DeleteTask removes a task. Only the task's author may delete it.
func DeleteTask(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)
		if !actor.Authenticated {
			// Answer before touching the store so anonymous callers
			// cannot learn which task ids exist.
			authorize(c, eng, m, policy.ResourceTask, policy.ActionDelete, policy.Target{})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		task, err := st.GetTask(c.Request.Context(), id)
		if err != nil {
			storeFailure(c, m, "task", "delete", err)
			return
		}
		if !authorize(c, eng, m, policy.ResourceTask, policy.ActionDelete, policy.Target{OwnerID: task.AuthorID}) {
			return
		}
		guardedDelete(c, m, deletePlan{
			resource:   "task",
			listPath:   policy.TasksPath,
			successMsg: msgTaskDeleted,
		}, func() error {
			return st.DeleteTask(c.Request.Context(), id)
		})
	}
}

// checkTaskReferences verifies that the status, executor, and every
// label on the form exist, reporting each miss as a field error. The
// returned error is reserved for store failures.
func checkTaskReferences(c *gin.Context, st *store.Store, form *datatypes.TaskForm) (validation.Errors, error) {
	ctx := c.Request.Context()
	errs := validation.Errors{}

	if _, err := st.GetStatus(ctx, form.StatusID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		errs.Add("status_id", validation.MsgUnknownStatus)
	}
	if form.ExecutorID != nil {
		if _, err := st.GetUser(ctx, *form.ExecutorID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			errs.Add("executor_id", validation.MsgUnknownExecutor)
		}
	}
	for _, labelID := range form.LabelIDs {
		if _, err := st.GetLabel(ctx, labelID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			errs.Add("label_ids", validation.MsgUnknownLabel)
			break
		}
	}
	return errs, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the wire types of the tracker service: form
// submissions bound by gin and the JSON shapes returned to clients.
// Structural validation (required, length bounds) lives in the binding
// tags; checks that need the store (uniqueness, reference existence) live
// in the handlers.
package datatypes

// LoginForm is the login submission.
type LoginForm struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserCreateForm is the registration submission. First and last name are
// required here even though the identity primitive would allow them
// empty. The author field of tasks never appears on any form; likewise
// no form carries an id.
type UserCreateForm struct {
	FirstName            string `json:"first_name" binding:"required"`
	LastName             string `json:"last_name" binding:"required"`
	Username             string `json:"username" binding:"required"`
	Password             string `json:"password" binding:"required,min=3"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

// UserUpdateForm is the profile edit submission. The password pair is
// optional; when omitted the stored credential is kept.
type UserUpdateForm struct {
	FirstName            string `json:"first_name" binding:"required"`
	LastName             string `json:"last_name" binding:"required"`
	Username             string `json:"username" binding:"required"`
	Password             string `json:"password" binding:"omitempty,min=3"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// NamedForm is the create/update submission shared by statuses and
// labels: a single unique name of at most 50 characters.
type NamedForm struct {
	Name string `json:"name" binding:"required,max=50"`
}

// TaskForm is the create/update submission for tasks. The author is
// deliberately absent: it is stamped server-side at creation and
// immutable thereafter.
type TaskForm struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	StatusID    int64   `json:"status_id" binding:"required"`
	ExecutorID  *int64  `json:"executor_id"`
	LabelIDs    []int64 `json:"label_ids"`
}

// TaskListQuery carries the optional task list filters. All fields
// compose conjunctively; self_tasks restricts to tasks authored by the
// requesting user.
type TaskListQuery struct {
	StatusID   *int64 `form:"status"`
	ExecutorID *int64 `form:"executor"`
	LabelID    *int64 `form:"label"`
	SelfTasks  bool   `form:"self_tasks"`
}

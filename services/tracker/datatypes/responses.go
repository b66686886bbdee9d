// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"time"

	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

// Flash is the explicit replacement for a server-side message queue: the
// outcome message and the page the client should navigate to travel in
// the response body itself.
type Flash struct {
	Message    string `json:"message,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Denial is the body of a rejected request: the user-visible reason and
// the redirect target.
type Denial struct {
	Error      string `json:"error"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// UserResponse is a user as returned to clients. The password hash never
// leaves the store layer.
type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse converts a stored user to its wire shape.
func NewUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		FullName:  u.FullName(),
		CreatedAt: u.CreatedAt,
	}
}

// NamedResponse is a status or label as returned to clients.
type NamedResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNamedResponse converts a stored status or label to its wire shape.
func NewNamedResponse(r *store.NamedRow) NamedResponse {
	return NamedResponse{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

// TaskResponse is a task as returned to clients.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StatusID    int64     `json:"status_id"`
	AuthorID    int64     `json:"author_id"`
	ExecutorID  *int64    `json:"executor_id,omitempty"`
	LabelIDs    []int64   `json:"label_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTaskResponse converts a stored task to its wire shape.
func NewTaskResponse(t *store.Task) TaskResponse {
	labels := t.LabelIDs
	if labels == nil {
		labels = []int64{}
	}
	return TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		StatusID:    t.StatusID,
		AuthorID:    t.AuthorID,
		ExecutorID:  t.ExecutorID,
		LabelIDs:    labels,
		CreatedAt:   t.CreatedAt,
	}
}

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
	"golang.org/x/crypto/bcrypt"

	"github.com/AleutianAI/tasktracker/pkg/validation"
	"github.com/AleutianAI/tasktracker/services/tracker/datatypes"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/policy"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

const (
	msgUserRegistered = "User successfully registered"
	msgUserUpdated    = "User successfully updated"
	msgUserDeleted    = "User successfully deleted"
	msgUserInUse      = "Cannot delete user because it is in use"
)

// ListUsers returns every registered user, hash omitted.
func ListUsers(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, eng, m, policy.ResourceUser, policy.ActionList, policy.Target{}) {
			return
		}
		users, err := st.ListUsers(c.Request.Context())
		if err != nil {
			storeFailure(c, m, "user", "list", err)
			return
		}
		out := make([]datatypes.UserResponse, 0, len(users))
		for i := range users {
			out = append(out, datatypes.NewUserResponse(&users[i]))
		}
		m.RecordRequest("user", "list", outcomeOK)
		c.JSON(http.StatusOK, gin.H{"users": out})
	}
}

// GetUser returns one user by id.
func GetUser(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, eng, m, policy.ResourceUser, policy.ActionRead, policy.Target{}) {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		user, err := st.GetUser(c.Request.Context(), id)
		if err != nil {
			storeFailure(c, m, "user", "read", err)
			return
		}
		m.RecordRequest("user", "read", outcomeOK)
		c.JSON(http.StatusOK, gin.H{"user": datatypes.NewUserResponse(user)})
	}
}

// CreateUser registers a new account. This is the one mutating endpoint
// open to anonymous callers.
func CreateUser(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, eng, m, policy.ResourceUser, policy.ActionCreate, policy.Target{}) {
			return
		}
		var form datatypes.UserCreateForm
		if !bindForm(c, m, "user", &form) {
			return
		}

		errs := validation.Errors{}
		if !validation.ValidUsername(form.Username) {
			errs.Add("username", validation.MsgInvalidUsername)
		}
		if form.Password != form.PasswordConfirmation {
			errs.Add("password_confirmation", validation.MsgPasswordMismatch)
		}
		taken, err := st.UsernameTaken(c.Request.Context(), form.Username, 0)
		if err != nil {
			storeFailure(c, m, "user", "create", err)
			return
		}
		if taken {
			errs.Add("username", validation.MsgUsernameTaken)
		}
		if errs.Any() {
			rejectForm(c, m, "user", errs)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			storeFailure(c, m, "user", "create", err)
			return
		}

		user := &store.User{
			FirstName:    form.FirstName,
			LastName:     form.LastName,
			Username:     form.Username,
			PasswordHash: string(hash),
		}
		if err := st.CreateUser(c.Request.Context(), user); err != nil {
			// The uniqueness check above races with concurrent signups.
			if errors.Is(err, store.ErrDuplicate) {
				errs.Add("username", validation.MsgUsernameTaken)
				rejectForm(c, m, "user", errs)
				return
			}
			storeFailure(c, m, "user", "create", err)
			return
		}

		m.RecordRequest("user", "create", outcomeOK)
		c.JSON(http.StatusCreated, gin.H{
			"message":     msgUserRegistered,
			"redirect_to": policy.LoginPath,
			"user":        datatypes.NewUserResponse(user),
		})
	}
}

// UpdateUser rewrites a user's profile. Only the account owner may do
// this; an empty password leaves the stored hash untouched.
func UpdateUser(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if !authorize(c, eng, m, policy.ResourceUser, policy.ActionUpdate, policy.Target{OwnerID: id}) {
			return
		}
		var form datatypes.UserUpdateForm
		if !bindForm(c, m, "user", &form) {
			return
		}

		errs := validation.Errors{}
		if !validation.ValidUsername(form.Username) {
			errs.Add("username", validation.MsgInvalidUsername)
		}
		if form.Password != form.PasswordConfirmation {
			errs.Add("password_confirmation", validation.MsgPasswordMismatch)
		}
		taken, err := st.UsernameTaken(c.Request.Context(), form.Username, id)
		if err != nil {
			storeFailure(c, m, "user", "update", err)
			return
		}
		if taken {
			errs.Add("username", validation.MsgUsernameTaken)
		}
		if errs.Any() {
			rejectForm(c, m, "user", errs)
			return
		}

		var hash string
		if form.Password != "" {
			h, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
			if err != nil {
				storeFailure(c, m, "user", "update", err)
				return
			}
			hash = string(h)
		}

		user := &store.User{
			ID:           id,
			FirstName:    form.FirstName,
			LastName:     form.LastName,
			Username:     form.Username,
			PasswordHash: hash,
		}
		if err := st.UpdateUser(c.Request.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				errs.Add("username", validation.MsgUsernameTaken)
				rejectForm(c, m, "user", errs)
				return
			}
			storeFailure(c, m, "user", "update", err)
			return
		}

		m.RecordRequest("user", "update", outcomeOK)
		c.JSON(http.StatusOK, datatypes.Flash{
			Message:    msgUserUpdated,
			RedirectTo: policy.UsersPath,
		})
	}
}

// DeleteUser removes an account. Only the owner may delete it, and the
// deletion is blocked while the user authors or executes any task.
func DeleteUser(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if !authorize(c, eng, m, policy.ResourceUser, policy.ActionDelete, policy.Target{OwnerID: id}) {
			return
		}
		guardedDelete(c, m, deletePlan{
			resource:   "user",
			listPath:   policy.UsersPath,
			successMsg: msgUserDeleted,
			inUseMsg:   msgUserInUse,
		}, func() error {
			return st.DeleteUser(c.Request.Context(), id)
		})
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/AleutianAI/tasktracker/pkg/validation"
	"github.com/AleutianAI/tasktracker/services/tracker/datatypes"
	"github.com/AleutianAI/tasktracker/services/tracker/middleware"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

const (
	msgLoggedIn  = "You are logged in"
	msgLoggedOut = "You are logged out"

	// Shown for both an unknown username and a wrong password so the
	// response does not reveal which usernames exist.
	msgBadCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

// The cookie expires when the server-side session row does.
var sessionTTLSeconds = int(store.SessionTTL / time.Second)

// Login authenticates a username/password pair, opens a session, and
// hands the token back both as a cookie and in the response body.
//
// # Inputs
//
//   - st: backing store for user lookup and session creation
//   - m: request metrics
//
// # Outputs
//
//   - gin.HandlerFunc answering POST /api/v1/login
func Login(st *store.Store, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form datatypes.LoginForm
		if !bindForm(c, m, "session", &form) {
			return
		}

		user, err := st.GetUserByUsername(c.Request.Context(), form.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				rejectLogin(c, m)
				return
			}
			storeFailure(c, m, "session", "create", err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)) != nil {
			rejectLogin(c, m)
			return
		}

		token, err := st.CreateSession(c.Request.Context(), user.ID)
		if err != nil {
			storeFailure(c, m, "session", "create", err)
			return
		}

		c.SetCookie(middleware.SessionCookie, token, sessionTTLSeconds, "/", "", false, true)
		m.RecordRequest("session", "create", outcomeOK)
		c.JSON(http.StatusOK, gin.H{
			"message":     msgLoggedIn,
			"redirect_to": "/",
			"token":       token,
			"user":        datatypes.NewUserResponse(user),
		})
	}
}

func rejectLogin(c *gin.Context, m *observability.TrackerMetrics) {
	slog.Debug("login rejected")
	errs := validation.Errors{}
	errs.Add("non_field_errors", msgBadCredentials)
	m.RecordValidationFailure("session")
	m.RecordRequest("session", "create", outcomeInvalid)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
}

// Logout deletes the caller's session, if any, and clears the cookie.
// Calling it without a session is not an error.
func Logout(st *store.Store, m *observability.TrackerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := middleware.SessionToken(c); token != "" {
			if err := st.DeleteSession(c.Request.Context(), token); err != nil {
				storeFailure(c, m, "session", "delete", err)
				return
			}
		}
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
		m.RecordRequest("session", "delete", outcomeOK)
		c.JSON(http.StatusOK, datatypes.Flash{
			Message:    msgLoggedOut,
			RedirectTo: "/",
		})
	}
}

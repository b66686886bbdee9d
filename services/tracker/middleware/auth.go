// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the tracker service.
//
// # Authentication Flow
//
// The auth middleware extracts a session token from the Authorization
// header (Bearer scheme) or the session cookie, resolves it against the
// sessions table, and stores the resulting user in the Gin context for
// downstream handlers.
//
//	Request
//	   │
//	   ▼
//	SessionMiddleware
//	   │
//	   ├─► Extract token (Authorization header, then cookie)
//	   │
//	   ├─► store.UserForSession(ctx, token)
//	   │
//	   └─► Store user in context
//	           │
//	           ▼
//	       Handler (retrieves via GetCurrentUser / CurrentActor)
//
// A missing or invalid token does NOT abort the request: the middleware
// leaves the context anonymous and the policy engine decides. That keeps
// registration and login reachable without a second, unauthenticated
// route tree.
package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/tasktracker/services/tracker/policy"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

// SessionCookie is the cookie carrying the session token for browser
// clients. API clients use the Authorization header instead.
const SessionCookie = "tracker_session"

// currentUserKey is the context key for the resolved user.
// Using a typed key prevents collisions with other context values.
const currentUserKey = "tracker_current_user"

// sessionTokenKey is the context key for the raw session token, kept so
// the logout handler can invalidate the right session.
const sessionTokenKey = "tracker_session_token"

// SetCurrentUser stores the authenticated user in the Gin context.
// Called by SessionMiddleware after a successful session lookup.
func SetCurrentUser(c *gin.Context, u *store.User) {
	c.Set(currentUserKey, u)
}

// GetCurrentUser retrieves the authenticated user from the Gin context.
// Returns nil for anonymous requests.
func GetCurrentUser(c *gin.Context) *store.User {
	if v, exists := c.Get(currentUserKey); exists {
		if u, ok := v.(*store.User); ok {
			return u
		}
	}
	return nil
}

// CurrentActor converts the context's user into the policy actor. The
// anonymous actor is returned when no user is present.
func CurrentActor(c *gin.Context) policy.Actor {
	if u := GetCurrentUser(c); u != nil {
		return policy.Actor{ID: u.ID, Authenticated: true}
	}
	return policy.Anonymous
}

// SessionToken returns the raw token the request authenticated with, or
// empty string for anonymous requests.
func SessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}

// SessionMiddleware creates a Gin middleware that resolves the request's
// session token to a user.
//
// # Description
//
// The token is taken from "Authorization: Bearer <token>" first, then
// from the session cookie. An unknown token is treated the same as no
// token: the request proceeds anonymously and authorization is left to
// the policy engine, which knows which operations are open.
//
// # Thread Safety
//
// Thread-safe. The returned middleware can be used concurrently.
func SessionMiddleware(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := st.UserForSession(c.Request.Context(), token)
		if err != nil {
			// Expired or forged tokens fall through to anonymous.
			slog.Debug("session token did not resolve", "error", err)
			c.Next()
			return
		}

		SetCurrentUser(c, user)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// extractToken returns the session token from the Authorization header
// or, failing that, the session cookie. The "Bearer" prefix is
// case-insensitive per RFC 7235.
func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

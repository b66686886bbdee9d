// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP endpoints of the tracker service.
//
// Every mutating endpoint follows the same sequence: consult the policy
// engine, validate the submitted form, then ask the store to persist.
// Denials, validation failures, and integrity-blocked deletions are all
// normal responses carrying explicit {error, redirect_to} values; nothing
// in this package panics on user input.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/tasktracker/pkg/validation"
	"github.com/AleutianAI/tasktracker/services/tracker/datatypes"
	"github.com/AleutianAI/tasktracker/services/tracker/middleware"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/policy"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

// Outcome labels recorded on the request counter.
const (
	outcomeOK       = "ok"
	outcomeDenied   = "denied"
	outcomeInvalid  = "invalid"
	outcomeConflict = "conflict"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// authorize consults the policy engine and, on denial, writes the
// redirect-with-message response. Returns true when the request may
// proceed. Anonymous denials answer 401, ownership denials 403.
func authorize(c *gin.Context, eng *policy.Engine, m *observability.TrackerMetrics,
	res policy.Resource, act policy.Action, target policy.Target) bool {

	actor := middleware.CurrentActor(c)
	d := eng.Authorize(actor, res, act, target)
	if d.Allowed {
		return true
	}

	status := http.StatusForbidden
	if !actor.Authenticated {
		status = http.StatusUnauthorized
	}
	m.RecordAuthDenial(string(res), string(act))
	m.RecordRequest(string(res), string(act), outcomeDenied)
	c.AbortWithStatusJSON(status, datatypes.Denial{
		Error:      d.Reason,
		RedirectTo: d.RedirectTo,
	})
	return false
}

// pathID parses the :id route parameter. A malformed id is answered with
// the same 404 as a missing row; ids are opaque to clients.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, datatypes.Denial{Error: "not found"})
		return 0, false
	}
	return id, true
}

// bindForm binds the JSON body into form and, on failure, writes the
// field-error response. Returns true when binding succeeded.
func bindForm(c *gin.Context, m *observability.TrackerMetrics, resource string, form any) bool {
	if err := c.ShouldBindJSON(form); err != nil {
		m.RecordValidationFailure(resource)
		m.RecordRequest(resource, "bind", outcomeInvalid)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validation.FromBindingError(err)})
		return false
	}
	return true
}

// rejectForm writes a field-error response for checks performed after
// binding (uniqueness, reference existence, password confirmation).
func rejectForm(c *gin.Context, m *observability.TrackerMetrics, resource string, errs validation.Errors) {
	m.RecordValidationFailure(resource)
	m.RecordRequest(resource, "validate", outcomeInvalid)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
}

// notFound answers a lookup that matched no row.
func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, datatypes.Denial{Error: "not found"})
}

// storeFailure answers an unexpected store error. Constraint errors are
// handled by the callers before reaching here.
func storeFailure(c *gin.Context, m *observability.TrackerMetrics, resource, action string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		m.RecordRequest(resource, action, outcomeNotFound)
		notFound(c)
		return
	}
	m.RecordRequest(resource, action, outcomeError)
	c.JSON(http.StatusInternalServerError, datatypes.Denial{Error: "internal error"})
}

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

	"github.com/AleutianAI/tasktracker/services/tracker/datatypes"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

// deletePlan describes one entity's guarded deletion: where to send the
// client afterwards and what to say in each outcome.
type deletePlan struct {
	resource   string
	listPath   string
	successMsg string
	inUseMsg   string
}

// guardedDelete runs del and maps the three possible outcomes onto HTTP
// responses. A delete blocked by dependent rows is not an internal
// error: it answers 409 with a redirect back to the listing, and the
// row is guaranteed untouched.
func guardedDelete(c *gin.Context, m *observability.TrackerMetrics, plan deletePlan, del func() error) {
	err := del()
	switch {
	case err == nil:
		m.RecordRequest(plan.resource, "delete", outcomeOK)
		c.JSON(http.StatusOK, datatypes.Flash{
			Message:    plan.successMsg,
			RedirectTo: plan.listPath,
		})
	case errors.Is(err, store.ErrInUse):
		m.RecordIntegrityBlock(plan.resource)
		m.RecordRequest(plan.resource, "delete", outcomeConflict)
		c.JSON(http.StatusConflict, datatypes.Denial{
			Error:      plan.inUseMsg,
			RedirectTo: plan.listPath,
		})
	case errors.Is(err, store.ErrNotFound):
		m.RecordRequest(plan.resource, "delete", outcomeNotFound)
		notFound(c)
	default:
		m.RecordRequest(plan.resource, "delete", outcomeError)
		c.JSON(http.StatusInternalServerError, datatypes.Denial{Error: "internal error"})
	}
}

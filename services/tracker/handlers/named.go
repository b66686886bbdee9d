// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/tasktracker/pkg/validation"
	"github.com/AleutianAI/tasktracker/services/tracker/datatypes"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/policy"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

// namedStoreOps binds one name-only entity to its store operations.
type namedStoreOps struct {
	create func(context.Context, *store.NamedRow) error
	get    func(context.Context, int64) (*store.NamedRow, error)
	list   func(context.Context) ([]store.NamedRow, error)
	update func(context.Context, *store.NamedRow) error
	delete func(context.Context, int64) error
	taken  func(context.Context, string, int64) (bool, error)
}

// NamedHandlers is the full CRUD surface for a name-only entity.
// Statuses and labels are the same endpoints wired to different tables
// and messages.
type NamedHandlers struct {
	List   gin.HandlerFunc
	Get    gin.HandlerFunc
	Create gin.HandlerFunc
	Update gin.HandlerFunc
	Delete gin.HandlerFunc
}

type namedConfig struct {
	resource   policy.Resource
	listPath   string
	key        string
	pluralKey  string
	createdMsg string
	updatedMsg string
	deletedMsg string
	inUseMsg   string
	ops        namedStoreOps
}

// StatusHandlers wires the shared name-only CRUD onto the statuses table.
func StatusHandlers(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) NamedHandlers {
	return newNamedHandlers(eng, m, namedConfig{
		resource:   policy.ResourceStatus,
		listPath:   "/statuses",
		key:        "status",
		pluralKey:  "statuses",
		createdMsg: "Status successfully created",
		updatedMsg: "Status successfully updated",
		deletedMsg: "Status successfully deleted",
		inUseMsg:   "Cannot delete status because it is in use",
		ops: namedStoreOps{
			create: st.CreateStatus,
			get:    st.GetStatus,
			list:   st.ListStatuses,
			update: st.UpdateStatus,
			delete: st.DeleteStatus,
			taken:  st.StatusNameTaken,
		},
	})
}

// LabelHandlers wires the shared name-only CRUD onto the labels table.
func LabelHandlers(st *store.Store, eng *policy.Engine, m *observability.TrackerMetrics) NamedHandlers {
	return newNamedHandlers(eng, m, namedConfig{
		resource:   policy.ResourceLabel,
		listPath:   "/labels",
		key:        "label",
		pluralKey:  "labels",
		createdMsg: "Label successfully created",
		updatedMsg: "Label successfully updated",
		deletedMsg: "Label successfully deleted",
		inUseMsg:   "Cannot delete label because it is in use",
		ops: namedStoreOps{
			create: st.CreateLabel,
			get:    st.GetLabel,
			list:   st.ListLabels,
			update: st.UpdateLabel,
			delete: st.DeleteLabel,
			taken:  st.LabelNameTaken,
		},
	})
}

func newNamedHandlers(eng *policy.Engine, m *observability.TrackerMetrics, cfg namedConfig) NamedHandlers {
	resource := string(cfg.resource)

	return NamedHandlers{
		List: func(c *gin.Context) {
			if !authorize(c, eng, m, cfg.resource, policy.ActionList, policy.Target{}) {
				return
			}
			rows, err := cfg.ops.list(c.Request.Context())
			if err != nil {
				storeFailure(c, m, resource, "list", err)
				return
			}
			out := make([]datatypes.NamedResponse, 0, len(rows))
			for i := range rows {
				out = append(out, datatypes.NewNamedResponse(&rows[i]))
			}
			m.RecordRequest(resource, "list", outcomeOK)
			c.JSON(http.StatusOK, gin.H{cfg.pluralKey: out})
		},

		Get: func(c *gin.Context) {
			if !authorize(c, eng, m, cfg.resource, policy.ActionRead, policy.Target{}) {
				return
			}
			id, ok := pathID(c)
			if !ok {
				return
			}
			row, err := cfg.ops.get(c.Request.Context(), id)
			if err != nil {
				storeFailure(c, m, resource, "read", err)
				return
			}
			m.RecordRequest(resource, "read", outcomeOK)
			c.JSON(http.StatusOK, gin.H{cfg.key: datatypes.NewNamedResponse(row)})
		},

		Create: func(c *gin.Context) {
			if !authorize(c, eng, m, cfg.resource, policy.ActionCreate, policy.Target{}) {
				return
			}
			var form datatypes.NamedForm
			if !bindForm(c, m, resource, &form) {
				return
			}
			if taken, err := cfg.ops.taken(c.Request.Context(), form.Name, 0); err != nil {
				storeFailure(c, m, resource, "create", err)
				return
			} else if taken {
				errs := validation.Errors{}
				errs.Add("name", validation.MsgNameTaken)
				rejectForm(c, m, resource, errs)
				return
			}
			row := &store.NamedRow{Name: form.Name}
			if err := cfg.ops.create(c.Request.Context(), row); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					errs := validation.Errors{}
					errs.Add("name", validation.MsgNameTaken)
					rejectForm(c, m, resource, errs)
					return
				}
				storeFailure(c, m, resource, "create", err)
				return
			}
			m.RecordRequest(resource, "create", outcomeOK)
			c.JSON(http.StatusCreated, gin.H{
				"message":     cfg.createdMsg,
				"redirect_to": cfg.listPath,
				cfg.key:       datatypes.NewNamedResponse(row),
			})
		},

		Update: func(c *gin.Context) {
			if !authorize(c, eng, m, cfg.resource, policy.ActionUpdate, policy.Target{}) {
				return
			}
			id, ok := pathID(c)
			if !ok {
				return
			}
			var form datatypes.NamedForm
			if !bindForm(c, m, resource, &form) {
				return
			}
			if taken, err := cfg.ops.taken(c.Request.Context(), form.Name, id); err != nil {
				storeFailure(c, m, resource, "update", err)
				return
			} else if taken {
				errs := validation.Errors{}
				errs.Add("name", validation.MsgNameTaken)
				rejectForm(c, m, resource, errs)
				return
			}
			row := &store.NamedRow{ID: id, Name: form.Name}
			if err := cfg.ops.update(c.Request.Context(), row); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					errs := validation.Errors{}
					errs.Add("name", validation.MsgNameTaken)
					rejectForm(c, m, resource, errs)
					return
				}
				storeFailure(c, m, resource, "update", err)
				return
			}
			m.RecordRequest(resource, "update", outcomeOK)
			c.JSON(http.StatusOK, datatypes.Flash{
				Message:    cfg.updatedMsg,
				RedirectTo: cfg.listPath,
			})
		},

		Delete: func(c *gin.Context) {
			if !authorize(c, eng, m, cfg.resource, policy.ActionDelete, policy.Target{}) {
				return
			}
			id, ok := pathID(c)
			if !ok {
				return
			}
			guardedDelete(c, m, deletePlan{
				resource:   resource,
				listPath:   cfg.listPath,
				successMsg: cfg.deletedMsg,
				inUseMsg:   cfg.inUseMsg,
			}, func() error {
				return cfg.ops.delete(c.Request.Context(), id)
			})
		},
	}
}

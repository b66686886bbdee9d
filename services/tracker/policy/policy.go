// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package policy decides, per request, whether the acting identity may
// perform an operation on an entity.
//
// # Description
//
// The engine evaluates a fixed, ordered rule set and returns the decision
// of the first rule that claims the request:
//
//  1. Anonymous actors may only register (user create) or log in; every
//     other operation is denied with a redirect to the login page.
//  2. A user record may only be updated or deleted by that user.
//  3. A task may only be deleted by its author.
//  4. Any other operation by an authenticated actor is allowed.
//
// Decisions carry the user-visible reason and the redirect target, so the
// handler layer returns them as explicit response values instead of
// mutating shared request state.
//
// # Thread Safety
//
// The engine holds no mutable state; evaluation is stateless and per
// request, so a single Engine is safe for concurrent use.
package policy

// Resource identifies the entity type a request targets.
type Resource string

const (
	ResourceUser   Resource = "user"
	ResourceStatus Resource = "status"
	ResourceLabel  Resource = "label"
	ResourceTask   Resource = "task"
)

// Action identifies the requested operation.
type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the acting identity. The zero value is the anonymous actor.
type Actor struct {
	ID            int64
	Authenticated bool
}

// Anonymous is the unauthenticated actor.
var Anonymous = Actor{}

// Target carries the ownership facts about the entity instance a request
// targets. OwnerID is the target user's own id for user operations and the
// task author's id for task operations; it is ignored for resources that
// have no owner.
type Target struct {
	OwnerID int64
}

// Decision is the outcome of a policy check. On denial, Reason is the
// user-visible message and RedirectTo the page the client should land on.
type Decision struct {
	Allowed    bool
	Reason     string
	RedirectTo string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// User-visible denial messages.
const (
	MsgLoginRequired   = "You are not authorized! Please log in."
	MsgNotProfileOwner = "You don't have permission to change other user"
	MsgNotTaskAuthor   = "Only the author can delete the task"
)

// Redirect targets used by denials.
const (
	LoginPath = "/login"
	UsersPath = "/users"
	TasksPath = "/tasks"
)

// rule claims a subset of requests and decides them. applies and decide
// are split so the engine can fall through to later rules.
type rule struct {
	applies func(actor Actor, res Resource, act Action, target Target) bool
	decide  func(actor Actor, res Resource, act Action, target Target) Decision
}

// Engine evaluates the authorization rule set.
type Engine struct {
	rules []rule
}

// NewEngine builds the engine with the tracker's fixed rule set.
func NewEngine() *Engine {
	return &Engine{rules: []rule{
		{
			// Registration and login are the only anonymous operations.
			applies: func(actor Actor, res Resource, act Action, _ Target) bool {
				return !actor.Authenticated
			},
			decide: func(_ Actor, res Resource, act Action, _ Target) Decision {
				if res == ResourceUser && act == ActionCreate {
					return Allow
				}
				return Decision{Reason: MsgLoginRequired, RedirectTo: LoginPath}
			},
		},
		{
			// Profile edits are self-service only.
			applies: func(_ Actor, res Resource, act Action, _ Target) bool {
				return res == ResourceUser && (act == ActionUpdate || act == ActionDelete)
			},
			decide: func(actor Actor, _ Resource, _ Action, target Target) Decision {
				if actor.ID == target.OwnerID {
					return Allow
				}
				return Decision{Reason: MsgNotProfileOwner, RedirectTo: UsersPath}
			},
		},
		{
			// Only the author may delete a task.
			applies: func(_ Actor, res Resource, act Action, _ Target) bool {
				return res == ResourceTask && act == ActionDelete
			},
			decide: func(actor Actor, _ Resource, _ Action, target Target) Decision {
				if actor.ID == target.OwnerID {
					return Allow
				}
				return Decision{Reason: MsgNotTaskAuthor, RedirectTo: TasksPath}
			},
		},
	}}
}

// Authorize evaluates the rule set for one request. Rules are checked in
// order and the first applicable rule decides; a request no rule claims is
// allowed (the actor is authenticated by then).
func (e *Engine) Authorize(actor Actor, res Resource, act Action, target Target) Decision {
	for _, r := range e.rules {
		if r.applies(actor, res, act, target) {
			return r.decide(actor, res, act, target)
		}
	}
	return Allow
}

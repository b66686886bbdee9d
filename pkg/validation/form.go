// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation converts failed input checks into recoverable form
// errors.
//
// # Description
//
// A form submission that fails validation is a normal outcome, not a
// fault: the handler re-renders the form with per-field messages and
// persists nothing. This package provides the error value for that path,
// a mapping of field name to human-readable messages, and translates
// go-playground/validator binding failures into it. Application-level
// checks that the struct tags cannot express (uniqueness against the
// store, password confirmation) append to the same map via Add.
//
// # Usage
//
//	var form datatypes.StatusForm
//	if err := c.ShouldBindJSON(&form); err != nil {
//	    errs := validation.FromBindingError(err)
//	    c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name to the messages explaining why the submitted
// value was rejected. An empty map means the input passed.
type Errors map[string][]string

// Add appends a message to the field's error list.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether at least one field has an error.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Messages used by application-level checks in the handlers.
const (
	MsgNameTaken        = "A record with this name already exists."
	MsgUsernameTaken    = "A user with that username already exists."
	MsgPasswordMismatch = "The two password fields didn't match."
	MsgUnknownStatus    = "Select a valid status."
	MsgUnknownExecutor  = "Select a valid executor."
	MsgUnknownLabel     = "Select valid labels."
)

// FromBindingError translates a gin binding failure into field errors.
// Non-validator errors (malformed JSON, wrong types) come back as a
// single "non_field_errors" entry, mirroring how forms report errors that
// belong to no particular field.
func FromBindingError(err error) Errors {
	out := Errors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("non_field_errors", "Invalid request body.")
		return out
	}
	for _, fe := range verrs {
		out.Add(fieldName(fe), messageFor(fe))
	}
	return out
}

// RegisterTagNameFunc makes the validator report fields by their json tag
// instead of the Go struct field name, so error keys match the wire form.
// Call once at startup against gin's binding validator.
func RegisterTagNameFunc(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func fieldName(fe validator.FieldError) string {
	// With RegisterTagNameFunc installed Field() is already the json
	// name; lower-casing covers the uninstalled case in tests.
	return strings.ToLower(fe.Field())
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	default:
		return "This value is invalid."
	}
}

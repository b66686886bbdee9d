// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"regexp"
)

// usernamePattern matches valid account usernames.
// Allows: letters, digits, and the @ . + - _ characters
// Max length: 150 characters
var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// MsgInvalidUsername explains the username character rules.
const MsgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."

// ValidUsername reports whether the value is an acceptable username.
// The allowed alphabet keeps usernames safe to embed in URLs and log
// lines without escaping.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

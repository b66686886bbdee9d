// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "testing"

// NewTestStore creates an in-memory store for testing. The store is
// automatically closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    st := store.NewTestStore(t)
//	    // use st...
//	}
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	st, err := OpenInMemory()
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = st.Close()
	})

	return st
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, bearer token
// inspection and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// PerformerCtxKey is the key used to store the staff member performing a
// request (the X-Performer header of the local API) in the context.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.PerformerCtxKey, "nurse.adeyemi")
var PerformerCtxKey = contextKey("performer")

// GetPerformerFromContext retrieves the performer from the context.
//
// Returns the performer and an ok flag:
//   - ok == true:  value is found, is a string and is not empty
//   - ok == false: value is missing, empty or has an unexpected type
func GetPerformerFromContext(ctx context.Context) (string, bool) {
	performer, ok := ctx.Value(PerformerCtxKey).(string)
	return performer, ok && performer != ""
}

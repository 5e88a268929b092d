// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks values before they are persisted.
//
// A Validator validates a whole value or, when field names are given, only
// those fields. Services call it before a write so a malformed value never
// reaches durable storage, where it would be replayed on every drain.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
type Validator interface {
	// Validate validates the provided input and optionally restricts
	// validation to specific named fields.
	Validate(context.Context, any, ...string) error
}

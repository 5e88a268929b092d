// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidMethod     = errors.New("invalid HTTP method")
	ErrInvalidEndpoint   = errors.New("endpoint must be an absolute path")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidOperation  = errors.New("invalid outbox operation")
	ErrMissingEntityID   = errors.New("update and delete need a target entity")
	ErrInvalidBody       = errors.New("body is not valid JSON")
	ErrInvalidPriority   = errors.New("invalid priority")
)

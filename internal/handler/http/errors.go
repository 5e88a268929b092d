// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrInvalidQueryParam is returned when a query parameter of a collection
	// read can't be parsed.
	ErrInvalidQueryParam = errors.New("invalid query parameter")

	// ErrIntegrityCheckFailed is returned when the HashSHA256 header does not
	// match the request body.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")
)

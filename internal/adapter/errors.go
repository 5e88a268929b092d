// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrRequestTimeout      = errors.New("request timeout")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessable       = errors.New("unprocessable entity")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServerUnavailable   = errors.New("server unavailable")
	ErrUnexpectedStatus    = errors.New("unexpected status")

	// ErrNetwork wraps transport failures: the request never got a response.
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponse is returned when a 2xx body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid server response")
)

// HTTPError is a non-2xx response. It unwraps to one of the sentinel errors
// above so callers can match with errors.Is and still reach the status and
// body with errors.As.
type HTTPError struct {
	StatusCode int
	Body       string

	kind error
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.kind)
	}
	return fmt.Sprintf("http %d: %s: %s", e.StatusCode, e.kind, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return e.kind
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// HTTP error.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsTransient reports whether a retry may succeed: transport failures,
// 408, 429 and 5xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}

	code := StatusCode(err)
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// IsAuth reports whether the server rejected the credential.
func IsAuth(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

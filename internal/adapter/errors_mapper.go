// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	return mapStatus(resp.StatusCode(), resp.Body())
}

func mapStatus(code int, rawBody []byte) error {
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(rawBody))

	var kind error
	switch code {
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusRequestTimeout:
		kind = ErrRequestTimeout
	case http.StatusConflict:
		kind = ErrConflict
	case http.StatusUnprocessableEntity:
		kind = ErrUnprocessable
	case http.StatusTooManyRequests:
		kind = ErrTooManyRequests
	case http.StatusInternalServerError:
		kind = ErrInternalServerError
	case http.StatusBadGateway:
		kind = ErrBadGateway
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		kind = ErrServerUnavailable
	default:
		kind = ErrUnexpectedStatus
		if body == "" {
			body = http.StatusText(code)
		}
	}

	return &HTTPError{StatusCode: code, Body: body, kind: kind}
}

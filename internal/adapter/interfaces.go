// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the hospital API.
//
// The primary abstraction is [ServerAdapter], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) and a websocket subscriber for the
// real-time update channel ([PushListener]).
//
// Non-2xx responses are mapped by mapHTTPError to [*HTTPError] values that
// unwrap to the sentinels in errors.go, so callers can use [errors.Is]
// (e.g. [ErrConflict] for 409, [ErrForbidden] for 403) and [errors.As] to
// reach the status and body.
package adapter

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-clinic-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines communication with the hospital API. Implementations
// are responsible for serialisation, authentication headers and mapping
// transport-level errors to the sentinel values defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	// An empty token clears it.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if none is set.
	Token() string

	// Ping probes the health endpoint. A nil error means the server is
	// reachable; the probe does not require a valid token.
	Ping(ctx context.Context) error

	// Send replays one outbox item: method, endpoint and body as recorded,
	// with the item ID as the Idempotency-Key header. The result is filled
	// whenever the server answered, also on non-2xx statuses.
	Send(ctx context.Context, item models.OutboxItem) (models.SendResult, error)

	// FetchCollection downloads the full server collection for entity.
	FetchCollection(ctx context.Context, entity models.EntityType) ([]json.RawMessage, error)

	// CreateQueueEntry adds a patient to the visit queue and returns the
	// created record.
	CreateQueueEntry(ctx context.Context, body models.QueueCreateBody, idempotencyKey string) (json.RawMessage, error)

	// UpdateQueueStatus moves an existing entry to a new status (removal is
	// a DELETE) and returns the updated record.
	UpdateQueueStatus(ctx context.Context, queueID string, body models.QueueStatusBody, idempotencyKey string) (json.RawMessage, error)
}

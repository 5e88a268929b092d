// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"strconv"
)

// Priority orders outbox items; lower values are served first.
type Priority int

const (
	PriorityCritical   Priority = 0
	PriorityNormal     Priority = 5
	PriorityBackground Priority = 10
)

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityNormal, PriorityBackground:
		return true
	default:
		return false
	}
}

// OutboxOperation tells the reconciler what a delivered item did on the server.
type OutboxOperation string

const (
	OpCreate OutboxOperation = "create"
	OpUpdate OutboxOperation = "update"
	OpDelete OutboxOperation = "delete"
)

// OutboxStatus is the lifecycle state of an outbox item.
type OutboxStatus string

const (
	// OutboxPending items are picked up by the next drain once due.
	OutboxPending OutboxStatus = "pending"
	// OutboxDead items exhausted their retry budget or failed permanently.
	// They stay in the table until retried manually.
	OutboxDead OutboxStatus = "dead"
)

// OutboxItem is a pending HTTP-shaped mutation awaiting transmission.
type OutboxItem struct {
	// ID is opaque to callers. It is sent as the Idempotency-Key header so
	// the server can drop replays of an already applied item.
	ID string `json:"id"`

	// Seq is the storage insertion order; it breaks timestamp ties and
	// fixes the order of items within one entity.
	Seq int64 `json:"seq"`

	Method   string          `json:"method"`
	Endpoint string          `json:"endpoint"`
	Body     json.RawMessage `json:"body,omitempty"`

	EntityType EntityType `json:"entity_type"`

	// EntityID is the target entity; local until the entity is reconciled.
	EntityID ID `json:"entity_id,omitzero"`

	// TempID is set when the item belongs to an entity created offline.
	TempID ID `json:"temp_id,omitzero"`

	Operation OutboxOperation `json:"operation"`

	// ActionID links the item to the queue-action record it replays.
	ActionID string `json:"action_id,omitempty"`

	Priority  Priority `json:"priority"`
	Timestamp int64    `json:"timestamp"`

	Retries       int          `json:"retries"`
	Error         string       `json:"error,omitempty"`
	NextAttemptAt int64        `json:"next_attempt_at"`
	Status        OutboxStatus `json:"status"`
}

// LaneKey groups the items that must be applied in enqueue order: every item
// touching the same entity, keyed by its temporary identity when it has one
// so an offline-created entry and the actions queued behind it share a lane.
func (o OutboxItem) LaneKey() string {
	id := o.EntityID
	if !o.TempID.IsZero() {
		id = o.TempID
	}
	if id.IsZero() {
		return string(o.EntityType) + "#" + o.ID
	}
	return string(o.EntityType) + ":" + id.String()
}

// SendResult is the server response to one delivered outbox item.
type SendResult struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// OutboxCounts summarises the outbox by status.
type OutboxCounts struct {
	Pending int `json:"pending"`
	Dead    int `json:"dead"`
}

// DrainReport summarises one drain pass.
type DrainReport struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Dead      int `json:"dead"`
	Deferred  int `json:"deferred"`
}

// FailedNotice is the aggregate message shown to staff after a drain,
// empty when nothing failed.
func (r DrainReport) FailedNotice() string {
	n := r.Failed + r.Dead
	switch n {
	case 0:
		return ""
	case 1:
		return "1 action failed to sync"
	default:
		return strconv.Itoa(n) + " actions failed to sync"
	}
}

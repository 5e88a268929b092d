// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownQueueAction is returned for an action outside add/call/seen/remove.
var ErrUnknownQueueAction = errors.New("unknown queue action")

// QueueAction is a domain action performed against a visit-queue entry.
type QueueAction string

const (
	ActionAdd    QueueAction = "add"
	ActionCall   QueueAction = "call"
	ActionSeen   QueueAction = "seen"
	ActionRemove QueueAction = "remove"
)

// ParseQueueAction accepts both the verb ("call") and the resulting status
// ("called") spellings, since the UI sends either.
func ParseQueueAction(s string) (QueueAction, error) {
	switch s {
	case "add":
		return ActionAdd, nil
	case "call", "called":
		return ActionCall, nil
	case "seen":
		return ActionSeen, nil
	case "remove", "removed":
		return ActionRemove, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownQueueAction, s)
	}
}

// ResultingStatus is the queue status an action leaves the entry in.
func (a QueueAction) ResultingStatus() QueueStatus {
	switch a {
	case ActionCall:
		return QueueCalled
	case ActionSeen:
		return QueueSeen
	case ActionRemove:
		return QueueRemoved
	default:
		return QueueWaiting
	}
}

// QueueActionRecord is one queue action performed while offline and not yet
// confirmed by the server.
type QueueActionRecord struct {
	ID           string      `json:"id"`
	Action       QueueAction `json:"action"`
	QueueID      ID          `json:"queue_id"`
	Performer    string      `json:"performer"`
	OutboxItemID string      `json:"outbox_item_id"`
	Processed    bool        `json:"processed"`
	Error        string      `json:"error,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// QueueCreateBody is the payload of POST /api/queue. It carries the
// denormalised display fields so the server can recreate the entry exactly
// as it was shown offline.
type QueueCreateBody struct {
	PatientID string    `json:"patient_id"`
	Reason    string    `json:"reason"`
	Performer string    `json:"performer"`
	FullName  string    `json:"full_name"`
	CheckInAt time.Time `json:"check_in_at"`

	// ClientRef is the temporary identity the entry was created under
	// offline; empty for online adds.
	ClientRef ID `json:"client_ref,omitzero"`
}

// QueueStatusBody is the payload of PUT /api/queue/{id}/status and
// DELETE /api/queue/{id}.
type QueueStatusBody struct {
	QueueID   ID          `json:"queue_id"`
	Status    QueueStatus `json:"status"`
	Performer string      `json:"performer"`
}

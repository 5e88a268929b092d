// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// PushOp is the kind of change announced on the real-time channel.
type PushOp string

const (
	PushUpsert PushOp = "upsert"
	PushDelete PushOp = "delete"
)

// PushEvent carries the latest server state of one entity.
type PushEvent struct {
	EntityType EntityType      `json:"entity_type"`
	Op         PushOp          `json:"op"`
	ID         ID              `json:"id"`
	Record     json.RawMessage `json:"record,omitempty"`
}

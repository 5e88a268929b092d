// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// LocalWrite creates an entity on this device ahead of the server. The mirror
// row, the action record and the outbox item are written together or not at
// all.
type LocalWrite struct {
	EntityType EntityType

	// ID is the temporary identity to use; a fresh one is minted when zero.
	ID ID

	// Payload is the entity JSON without an id; the store injects it.
	Payload json.RawMessage

	// Action, when set, gets QueueID and OutboxItemID filled in.
	Action *QueueActionRecord

	// Item, when set, gets EntityID and TempID filled in.
	Item *OutboxItem
}

// LocalPatch changes an existing mirror row on this device and records the
// mutation for later delivery, atomically.
type LocalPatch struct {
	EntityType EntityType
	ID         ID

	// Patch is merged over the top-level payload fields.
	Patch map[string]any

	SoftDelete bool

	Action *QueueActionRecord
	Item   *OutboxItem
}

// ReconcileRequest swaps a temporary identity for the server-issued one.
type ReconcileRequest struct {
	EntityType EntityType
	TempID     ID
	ServerID   ID

	// Patch holds the fields echoed by the server; they win over local
	// values.
	Patch map[string]any

	// DeliveredItemID is the outbox item whose response carried ServerID.
	DeliveredItemID string

	// ActionID is the queue action the delivered item replayed.
	ActionID string
}

// Acknowledgement settles a delivered outbox item that needs no identity
// swap.
type Acknowledgement struct {
	ItemID   string
	ActionID string

	// Record, when set, replaces the mirror row with the server's copy.
	Record *MirrorRecord
}

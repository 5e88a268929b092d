// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncStatus is where a mirrored record currently is in its sync lifecycle.
type SyncStatus string

const (
	// SyncPending means the record carries local changes not yet sent.
	SyncPending SyncStatus = "pending"
	// SyncSyncing means an outbox item for the record is in flight.
	SyncSyncing SyncStatus = "syncing"
	// SyncSynced means the record matches the last known server state.
	SyncSynced SyncStatus = "synced"
	// SyncError means the last attempt to sync the record failed.
	SyncError SyncStatus = "error"
)

// MirrorRecord is a cached copy of a server entity plus sync bookkeeping.
//
// Payload is the entity JSON exactly as the server (or the offline path)
// produced it; its "id" field always mirrors ID.
type MirrorRecord struct {
	// EntityType is the collection the record belongs to.
	EntityType EntityType `json:"entity_type"`

	// ID is the current identity: local while the record only exists on
	// this device, remote once reconciled.
	ID ID `json:"id"`

	// TempID keeps the temporary identity the record was created under,
	// also after reconciliation (lineage for audit and late references).
	TempID ID `json:"temp_id,omitzero"`

	// Payload holds the entity JSON.
	Payload json.RawMessage `json:"payload"`

	SyncStatus SyncStatus `json:"sync_status"`

	// SyncTimestamp is the unix-millis time of the last status change.
	SyncTimestamp int64 `json:"sync_timestamp"`

	Deleted   bool       `json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// MirrorFilter narrows a collection read. The zero value returns every
// non-deleted record.
type MirrorFilter struct {
	// IncludeDeleted also returns soft-deleted records.
	IncludeDeleted bool

	// Statuses restricts results to the listed sync statuses.
	Statuses []SyncStatus

	// Fields matches top-level payload fields by equality
	// (e.g. {"patient_id": "p001"}).
	Fields map[string]any
}

// DecodePayload decodes the payload of r into T.
func DecodePayload[T any](r MirrorRecord) (T, error) {
	var v T
	if err := json.Unmarshal(r.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload (id=%s): %w", r.EntityType, r.ID, err)
	}
	return v, nil
}

// NowMillis is the wall-clock time used for sync timestamps.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

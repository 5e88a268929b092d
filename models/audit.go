// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// AuditKind classifies sync-audit log entries.
type AuditKind string

const (
	AuditDrainStarted   AuditKind = "drain_started"
	AuditDrainFinished  AuditKind = "drain_finished"
	AuditDelivered      AuditKind = "delivered"
	AuditFailed         AuditKind = "failed"
	AuditDeadLettered   AuditKind = "dead_lettered"
	AuditReconciled     AuditKind = "reconciled"
	AuditSessionRevoked AuditKind = "session_revoked"
	AuditRemoteApplied  AuditKind = "remote_applied"
	AuditCacheReplaced  AuditKind = "cache_replaced"
	AuditRequeued       AuditKind = "requeued"
)

// AuditEntry is one row of the sync-audit log.
type AuditEntry struct {
	ID         int64      `json:"id"`
	At         time.Time  `json:"at"`
	Kind       AuditKind  `json:"kind"`
	EntityType EntityType `json:"entity_type,omitempty"`
	EntityID   string     `json:"entity_id,omitempty"`
	Detail     string     `json:"detail,omitempty"`
}

// SyncReport is returned by a full sync pass.
type SyncReport struct {
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Refreshed  []string    `json:"refreshed,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
	Drain      DrainReport `json:"drain"`
	Requeued   int         `json:"requeued"`
	Notice     string      `json:"notice,omitempty"`
}

// SyncStatusView is what the UI polls to render the connectivity banner.
type SyncStatusView struct {
	Online     bool         `json:"online"`
	Syncing    bool         `json:"syncing"`
	Outbox     OutboxCounts `json:"outbox"`
	LastSync   *SyncReport  `json:"last_sync,omitempty"`
	AppVersion string       `json:"app_version,omitempty"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/go-clinic-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// MirrorRepository is the local cache of server entities, one table per
// collection.
type MirrorRepository interface {
	// ReplaceAll swaps the whole collection for records in one transaction.
	ReplaceAll(ctx context.Context, entity models.EntityType, records []models.MirrorRecord) error
	// ReplaceSynced is ReplaceAll that keeps rows carrying unsent local
	// changes.
	ReplaceSynced(ctx context.Context, entity models.EntityType, records []models.MirrorRecord) error
	// UpsertLocal writes an offline-created entity with a temporary id and
	// status pending, together with its action record and outbox item.
	UpsertLocal(ctx context.Context, write models.LocalWrite) (models.MirrorRecord, error)
	// UpsertRemote inserts or replaces a server-confirmed record.
	UpsertRemote(ctx context.Context, record models.MirrorRecord) error
	// PatchLocal merges a patch into a row and records the mutation.
	PatchLocal(ctx context.Context, patch models.LocalPatch) (models.MirrorRecord, error)
	Get(ctx context.Context, entity models.EntityType, id models.ID) (models.MirrorRecord, error)
	ReadCollection(ctx context.Context, entity models.EntityType, filter models.MirrorFilter) ([]models.MirrorRecord, error)
	SetSyncStatus(ctx context.Context, entity models.EntityType, id models.ID, status models.SyncStatus) error
	SoftDelete(ctx context.Context, entity models.EntityType, id models.ID) error
	Count(ctx context.Context, entity models.EntityType) (int, error)
	// ReconcileID replaces a temporary identity with the server-issued one
	// everywhere it is referenced, in one transaction.
	ReconcileID(ctx context.Context, req models.ReconcileRequest) error
}

// OutboxRepository is the durable list of mutations awaiting delivery.
type OutboxRepository interface {
	Enqueue(ctx context.Context, item models.OutboxItem) (models.OutboxItem, error)
	Get(ctx context.Context, id string) (models.OutboxItem, error)
	// ListActive returns pending and dead items ordered by priority,
	// timestamp and insertion order.
	ListActive(ctx context.Context) ([]models.OutboxItem, error)
	ListByStatus(ctx context.Context, status models.OutboxStatus) ([]models.OutboxItem, error)
	Remove(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string, nextAttemptAt int64, dead bool) (models.OutboxItem, error)
	// Resurrect moves dead items back to pending with a fresh retry budget.
	Resurrect(ctx context.Context, ids ...string) (int, error)
	// Acknowledge removes a delivered item and settles its side effects.
	Acknowledge(ctx context.Context, ack models.Acknowledgement) error
	Counts(ctx context.Context) (models.OutboxCounts, error)
}

// QueueActionRepository is the log of queue actions performed on this device.
type QueueActionRepository interface {
	Create(ctx context.Context, record models.QueueActionRecord) error
	Get(ctx context.Context, id string) (models.QueueActionRecord, error)
	ListUnprocessed(ctx context.Context) ([]models.QueueActionRecord, error)
	MarkProcessed(ctx context.Context, id string) error
	MarkError(ctx context.Context, id string, errMsg string) error
	SetOutboxItem(ctx context.Context, id string, outboxItemID string) error
}

// AuditRepository is the append-only sync audit log.
type AuditRepository interface {
	Append(ctx context.Context, entry models.AuditEntry) error
	List(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// execer is satisfied by both *sql.DB and *sql.Tx so row helpers can run
// inside or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

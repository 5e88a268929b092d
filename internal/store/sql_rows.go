// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"dario.cat/mergo"

	"github.com/MKhiriev/go-clinic-sync/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMirrorRecord(entity models.EntityType, row rowScanner) (models.MirrorRecord, error) {
	rec := models.MirrorRecord{EntityType: entity}
	var payload, status string

	err := row.Scan(
		&rec.ID,
		&rec.TempID,
		&payload,
		&status,
		&rec.SyncTimestamp,
		&rec.Deleted,
		&rec.DeletedAt,
	)
	if err != nil {
		return models.MirrorRecord{}, err
	}

	rec.Payload = json.RawMessage(payload)
	rec.SyncStatus = models.SyncStatus(status)
	return rec, nil
}

func scanOutboxItem(row rowScanner) (models.OutboxItem, error) {
	var item models.OutboxItem
	var body, entityType, operation, status string
	var priority int

	err := row.Scan(
		&item.Seq,
		&item.ID,
		&item.Method,
		&item.Endpoint,
		&body,
		&entityType,
		&item.EntityID,
		&item.TempID,
		&operation,
		&item.ActionID,
		&priority,
		&item.Timestamp,
		&item.Retries,
		&item.Error,
		&item.NextAttemptAt,
		&status,
	)
	if err != nil {
		return models.OutboxItem{}, err
	}

	if body != "" {
		item.Body = json.RawMessage(body)
	}
	item.EntityType = models.EntityType(entityType)
	item.Operation = models.OutboxOperation(operation)
	item.Priority = models.Priority(priority)
	item.Status = models.OutboxStatus(status)
	return item, nil
}

func scanQueueAction(row rowScanner) (models.QueueActionRecord, error) {
	var rec models.QueueActionRecord
	var action string

	err := row.Scan(
		&rec.ID,
		&action,
		&rec.QueueID,
		&rec.Performer,
		&rec.OutboxItemID,
		&rec.Processed,
		&rec.Error,
		&rec.CreatedAt,
	)
	if err != nil {
		return models.QueueActionRecord{}, err
	}

	rec.Action = models.QueueAction(action)
	return rec, nil
}

func scanAuditEntry(row rowScanner) (models.AuditEntry, error) {
	var entry models.AuditEntry
	var kind, entityType string

	err := row.Scan(
		&entry.ID,
		&entry.At,
		&kind,
		&entityType,
		&entry.EntityID,
		&entry.Detail,
	)
	if err != nil {
		return models.AuditEntry{}, err
	}

	entry.Kind = models.AuditKind(kind)
	entry.EntityType = models.EntityType(entityType)
	return entry, nil
}

// insertOutboxItem writes item and stores the assigned insertion order back
// into it.
func insertOutboxItem(ctx context.Context, ex execer, item *models.OutboxItem) error {
	if item.ID == "" {
		return fmt.Errorf("%w: outbox item without id", ErrBuildingSQLQuery)
	}
	if item.Status == "" {
		item.Status = models.OutboxPending
	}

	query, args, err := buildInsertOutboxQuery(*item)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	item.Seq = seq

	return nil
}

func insertQueueAction(ctx context.Context, ex execer, record models.QueueActionRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query, args, err := buildInsertQueueActionQuery(record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func insertAuditEntry(ctx context.Context, ex execer, entry models.AuditEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	query, args, err := buildInsertAuditQuery(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// localStateFields are the payload fields offline actions write. A server
// echo must not overwrite them while the entity still has queued items.
var localStateFields = []string{"status", "updated_by", "updated_at"}

// withoutFields returns a copy of patch without keys.
func withoutFields(patch map[string]any, keys ...string) map[string]any {
	if len(patch) == 0 {
		return patch
	}
	out := maps.Clone(patch)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// mergePayload merges patch over the top-level fields of payload and pins
// "id" to id. Keys absent from patch keep their stored values; every key
// present in patch wins, including empty values, so the server can clear
// a field.
func mergePayload(payload json.RawMessage, patch map[string]any, id models.ID) (json.RawMessage, error) {
	fields := make(map[string]any)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
		}
	}

	if len(patch) > 0 {
		if err := mergo.Merge(&fields, patch, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
		}
		// mergo leaves zero values in patch unapplied
		for k, v := range patch {
			if isEmptyPatchValue(v) {
				fields[k] = v
			}
		}
	}

	if !id.IsZero() {
		fields["id"] = id.String()
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
	}

	return merged, nil
}

func isEmptyPatchValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}

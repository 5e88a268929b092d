// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"regexp"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-clinic-sync/models"
)

var (
	mirrorColumns = []string{
		"id", "temp_id", "payload", "sync_status", "sync_timestamp", "deleted", "deleted_at",
	}
	outboxColumns = []string{
		"seq", "id", "method", "endpoint", "body", "entity_type", "entity_id", "temp_id",
		"operation", "action_id", "priority", "timestamp", "retries", "error",
		"next_attempt_at", "status",
	}
	queueActionColumns = []string{
		"id", "action", "queue_id", "performer", "outbox_item_id", "processed", "error", "created_at",
	}
	auditColumns = []string{
		"id", "at", "kind", "entity_type", "entity_id", "detail",
	}
)

var payloadFieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

const (
	reconcileQueueActions = `UPDATE queue_actions SET queue_id = ? WHERE queue_id = ?`

	// identities inside endpoint and body are rewritten textually; the temp
	// id is a "local:" prefixed UUID and cannot collide with other content.
	reconcileOutboxItems = `UPDATE outbox
		SET entity_id = ?,
		    endpoint  = REPLACE(endpoint, ?, ?),
		    body      = REPLACE(body, ?, ?)
		WHERE (temp_id = ? OR entity_id = ?) AND id <> ?`

	countLaneItems = `SELECT COUNT(*) FROM outbox WHERE (temp_id = ? OR entity_id = ?) AND id <> ?`

	countEntityItems = `SELECT COUNT(*) FROM outbox WHERE entity_type = ? AND entity_id = ? AND id <> ?`

	deleteOutboxItem = `DELETE FROM outbox WHERE id = ?`

	markQueueActionProcessed = `UPDATE queue_actions SET processed = 1, error = '' WHERE id = ?`

	markQueueActionError = `UPDATE queue_actions SET error = ? WHERE id = ?`

	setQueueActionOutboxItem = `UPDATE queue_actions SET outbox_item_id = ? WHERE id = ?`

	markOutboxItemFailed = `UPDATE outbox
		SET retries = retries + 1, error = ?, next_attempt_at = ?, status = ?
		WHERE id = ?`

	countOutboxByStatus = `SELECT status, COUNT(*) FROM outbox GROUP BY status`
)

func buildSelectMirrorQuery(entity models.EntityType, id models.ID) (string, []any, error) {
	return sqlb.Select(mirrorColumns...).
		From(entity.Table()).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
}

// buildReadCollectionQuery builds the collection read for filter. Payload
// fields are matched with json_extract; field names are restricted to plain
// identifiers because they end up inside the JSON path.
func buildReadCollectionQuery(entity models.EntityType, filter models.MirrorFilter) (string, []any, error) {
	query := sqlb.Select(mirrorColumns...).From(entity.Table())

	if !filter.IncludeDeleted {
		query = query.Where(sq.Eq{"deleted": 0})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where(sq.Eq{"sync_status": statuses})
	}

	fields := make([]string, 0, len(filter.Fields))
	for field := range filter.Fields {
		if !payloadFieldPattern.MatchString(field) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidFilterField, field)
		}
		fields = append(fields, field)
	}
	slices.Sort(fields)

	for _, field := range fields {
		query = query.Where(sq.Expr("json_extract(payload, ?) = ?", "$."+field, filter.Fields[field]))
	}

	return query.OrderBy("rowid").ToSql()
}

// buildWriteMirrorQuery builds an INSERT with the given conflict clause
// ("" for a plain insert, "OR REPLACE", "OR IGNORE").
func buildWriteMirrorQuery(conflict string, record models.MirrorRecord) (string, []any, error) {
	query := sqlb.Insert(record.EntityType.Table())
	if conflict != "" {
		query = query.Options(conflict)
	}

	return query.
		Columns(mirrorColumns...).
		Values(
			record.ID,
			record.TempID,
			string(record.Payload),
			string(record.SyncStatus),
			record.SyncTimestamp,
			record.Deleted,
			record.DeletedAt,
		).
		ToSql()
}

func buildUpdateMirrorQuery(record models.MirrorRecord) (string, []any, error) {
	return sqlb.Update(record.EntityType.Table()).
		Set("payload", string(record.Payload)).
		Set("sync_status", string(record.SyncStatus)).
		Set("sync_timestamp", record.SyncTimestamp).
		Set("deleted", record.Deleted).
		Set("deleted_at", record.DeletedAt).
		Where(sq.Eq{"id": record.ID.String()}).
		ToSql()
}

func buildInsertOutboxQuery(item models.OutboxItem) (string, []any, error) {
	return sqlb.Insert("outbox").
		Columns(outboxColumns[1:]...).
		Values(
			item.ID,
			item.Method,
			item.Endpoint,
			string(item.Body),
			string(item.EntityType),
			item.EntityID,
			item.TempID,
			string(item.Operation),
			item.ActionID,
			int(item.Priority),
			item.Timestamp,
			item.Retries,
			item.Error,
			item.NextAttemptAt,
			string(item.Status),
		).
		ToSql()
}

func buildSelectOutboxQuery(where sq.Sqlizer) (string, []any, error) {
	query := sqlb.Select(outboxColumns...).From("outbox")
	if where != nil {
		query = query.Where(where)
	}
	return query.OrderBy("priority", "timestamp", "seq").ToSql()
}

func buildResurrectQuery(ids []string) (string, []any, error) {
	query := sqlb.Update("outbox").
		Set("status", string(models.OutboxPending)).
		Set("retries", 0).
		Set("error", "").
		Set("next_attempt_at", 0).
		Where(sq.Eq{"status": string(models.OutboxDead)})

	if len(ids) > 0 {
		query = query.Where(sq.Eq{"id": ids})
	}

	return query.ToSql()
}

func buildInsertQueueActionQuery(record models.QueueActionRecord) (string, []any, error) {
	return sqlb.Insert("queue_actions").
		Columns(queueActionColumns...).
		Values(
			record.ID,
			string(record.Action),
			record.QueueID,
			record.Performer,
			record.OutboxItemID,
			record.Processed,
			record.Error,
			record.CreatedAt,
		).
		ToSql()
}

func buildSelectQueueActionsQuery(where sq.Sqlizer) (string, []any, error) {
	return sqlb.Select(queueActionColumns...).
		From("queue_actions").
		Where(where).
		OrderBy("created_at", "rowid").
		ToSql()
}

func buildInsertAuditQuery(entry models.AuditEntry) (string, []any, error) {
	return sqlb.Insert("sync_audit").
		Columns(auditColumns[1:]...).
		Values(
			entry.At,
			string(entry.Kind),
			string(entry.EntityType),
			entry.EntityID,
			entry.Detail,
		).
		ToSql()
}

func buildListAuditQuery(limit int) (string, []any, error) {
	return sqlb.Select(auditColumns...).
		From("sync_audit").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/models"
)

type outboxRepository struct {
	*DB
	logger *logger.Logger
}

func NewOutboxRepository(db *DB, logger *logger.Logger) OutboxRepository {
	return &outboxRepository{
		DB:     db,
		logger: logger,
	}
}

// Enqueue appends item. A failure is always returned: a lost enqueue is a
// lost write.
func (o *outboxRepository) Enqueue(ctx context.Context, item models.OutboxItem) (models.OutboxItem, error) {
	log := logger.FromContext(ctx)

	if err := insertOutboxItem(ctx, o.DB, &item); err != nil {
		log.Err(err).
			Str("func", "outboxRepository.Enqueue").
			Str("entity", string(item.EntityType)).
			Str("outbox_id", item.ID).
			Msg("failed to enqueue outbox item")
		return models.OutboxItem{}, o.classify(err)
	}

	log.Debug().
		Str("func", "outboxRepository.Enqueue").
		Str("outbox_id", item.ID).
		Int64("seq", item.Seq).
		Str("lane", item.LaneKey()).
		Msg("outbox item enqueued")

	return item, nil
}

func (o *outboxRepository) Get(ctx context.Context, id string) (models.OutboxItem, error) {
	query, args, err := sqlb.Select(outboxColumns...).From("outbox").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.OutboxItem{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	item, err := scanOutboxItem(o.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OutboxItem{}, ErrRecordNotFound
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "outboxRepository.Get").
			Str("outbox_id", id).
			Msg("failed to get outbox item")
		return models.OutboxItem{}, o.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	return item, nil
}

func (o *outboxRepository) ListActive(ctx context.Context) ([]models.OutboxItem, error) {
	return o.list(ctx, "outboxRepository.ListActive", sq.Eq{"status": []string{
		string(models.OutboxPending),
		string(models.OutboxDead),
	}})
}

func (o *outboxRepository) ListByStatus(ctx context.Context, status models.OutboxStatus) ([]models.OutboxItem, error) {
	return o.list(ctx, "outboxRepository.ListByStatus", sq.Eq{"status": string(status)})
}

func (o *outboxRepository) list(ctx context.Context, fn string, where sq.Sqlizer) ([]models.OutboxItem, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectOutboxQuery(where)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := o.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to query outbox")
		return nil, o.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	items := make([]models.OutboxItem, 0)
	for rows.Next() {
		item, scanErr := scanOutboxItem(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", fn).Msg("failed to scan outbox row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", fn).Msg("error occurred during rows iteration")
		return nil, o.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, rowsErr))
	}

	return items, nil
}

func (o *outboxRepository) Remove(ctx context.Context, id string) error {
	res, err := o.DB.ExecContext(ctx, deleteOutboxItem, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "outboxRepository.Remove").
			Str("outbox_id", id).
			Msg("failed to remove outbox item")
		return o.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// MarkFailed records a failed delivery: retries is incremented, the error
// kept and the next attempt scheduled. dead parks the item until it is
// resurrected.
func (o *outboxRepository) MarkFailed(ctx context.Context, id string, errMsg string, nextAttemptAt int64, dead bool) (models.OutboxItem, error) {
	log := logger.FromContext(ctx)

	status := models.OutboxPending
	if dead {
		status = models.OutboxDead
	}

	res, err := o.DB.ExecContext(ctx, markOutboxItemFailed, errMsg, nextAttemptAt, string(status), id)
	if err != nil {
		log.Err(err).
			Str("func", "outboxRepository.MarkFailed").
			Str("outbox_id", id).
			Msg("failed to record delivery failure")
		return models.OutboxItem{}, o.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.OutboxItem{}, ErrRecordNotFound
	}

	return o.Get(ctx, id)
}

func (o *outboxRepository) Resurrect(ctx context.Context, ids ...string) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildResurrectQuery(ids)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := o.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "outboxRepository.Resurrect").Msg("failed to resurrect dead items")
		return 0, o.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return int(affected), nil
}

// Acknowledge removes a delivered item, marks its action processed and, when
// the server echoed a record and no later item for the same entity is still
// waiting, overwrites the mirror row with it. All in one transaction.
func (o *outboxRepository) Acknowledge(ctx context.Context, ack models.Acknowledgement) error {
	log := logger.FromContext(ctx)

	tx, err := o.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "outboxRepository.Acknowledge").Msg("failed to begin transaction")
		return o.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteOutboxItem, ack.ItemID); err != nil {
		log.Err(err).Str("func", "outboxRepository.Acknowledge").Str("outbox_id", ack.ItemID).Msg("failed to remove item")
		return o.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if ack.ActionID != "" {
		if _, err = tx.ExecContext(ctx, markQueueActionProcessed, ack.ActionID); err != nil {
			log.Err(err).Str("func", "outboxRepository.Acknowledge").Str("action_id", ack.ActionID).Msg("failed to mark action processed")
			return o.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
		}
	}

	entityType := models.EntityType("")
	entityID := ""
	if rec := ack.Record; rec != nil && rec.EntityType.Valid() && !rec.ID.IsZero() {
		entityType, entityID = rec.EntityType, rec.ID.String()

		var later int
		if err = tx.QueryRowContext(ctx, countEntityItems, string(rec.EntityType), rec.ID, ack.ItemID).Scan(&later); err != nil {
			return o.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
		}

		if later == 0 {
			if err = o.overwriteMirror(ctx, tx, *rec); err != nil {
				log.Err(err).Str("func", "outboxRepository.Acknowledge").Str("id", entityID).Msg("failed to overwrite mirror row")
				return o.classify(err)
			}
		}
	}

	if err = insertAuditEntry(ctx, tx, models.AuditEntry{
		Kind:       models.AuditDelivered,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     "outbox item " + ack.ItemID,
	}); err != nil {
		return o.classify(err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "outboxRepository.Acknowledge").Msg("failed to commit transaction")
		return o.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr))
	}

	return nil
}

// overwriteMirror replaces the mirror row with the server copy, keeping the
// temp id lineage and the soft-delete state of the existing row.
func (o *outboxRepository) overwriteMirror(ctx context.Context, tx *sql.Tx, rec models.MirrorRecord) error {
	current, err := getMirrorRecord(ctx, tx, rec.EntityType, rec.ID)
	switch {
	case err == nil:
		if rec.TempID.IsZero() {
			rec.TempID = current.TempID
		}
		if current.Deleted {
			rec.Deleted, rec.DeletedAt = true, current.DeletedAt
		}
	case !errors.Is(err, ErrRecordNotFound):
		return err
	}

	payload, err := mergePayload(rec.Payload, nil, rec.ID)
	if err != nil {
		return err
	}
	rec.Payload = payload
	rec.SyncStatus = models.SyncSynced
	rec.SyncTimestamp = models.NowMillis()

	query, args, err := buildWriteMirrorQuery("OR REPLACE", rec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (o *outboxRepository) Counts(ctx context.Context) (models.OutboxCounts, error) {
	rows, err := o.DB.QueryContext(ctx, countOutboxByStatus)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "outboxRepository.Counts").Msg("failed to count outbox items")
		return models.OutboxCounts{}, o.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	var counts models.OutboxCounts
	for rows.Next() {
		var status string
		var n int
		if err = rows.Scan(&status, &n); err != nil {
			return models.OutboxCounts{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		switch models.OutboxStatus(status) {
		case models.OutboxPending:
			counts.Pending = n
		case models.OutboxDead:
			counts.Dead = n
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return models.OutboxCounts{}, o.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, rowsErr))
	}

	return counts, nil
}

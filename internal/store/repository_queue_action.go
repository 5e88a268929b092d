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

type queueActionRepository struct {
	*DB
	logger *logger.Logger
}

func NewQueueActionRepository(db *DB, logger *logger.Logger) QueueActionRepository {
	return &queueActionRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueActionRepository) Create(ctx context.Context, record models.QueueActionRecord) error {
	if err := insertQueueAction(ctx, q.DB, record); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "queueActionRepository.Create").
			Str("action_id", record.ID).
			Str("queue_id", record.QueueID.String()).
			Msg("failed to create queue action")
		return q.classify(err)
	}

	return nil
}

func (q *queueActionRepository) Get(ctx context.Context, id string) (models.QueueActionRecord, error) {
	query, args, err := sqlb.Select(queueActionColumns...).From("queue_actions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.QueueActionRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rec, err := scanQueueAction(q.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueActionRecord{}, ErrRecordNotFound
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "queueActionRepository.Get").
			Str("action_id", id).
			Msg("failed to get queue action")
		return models.QueueActionRecord{}, q.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	return rec, nil
}

func (q *queueActionRepository) ListUnprocessed(ctx context.Context) ([]models.QueueActionRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectQueueActionsQuery(sq.Eq{"processed": 0})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "queueActionRepository.ListUnprocessed").Msg("failed to query queue actions")
		return nil, q.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	records := make([]models.QueueActionRecord, 0)
	for rows.Next() {
		rec, scanErr := scanQueueAction(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "queueActionRepository.ListUnprocessed").Msg("failed to scan queue action row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, q.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, rowsErr))
	}

	return records, nil
}

func (q *queueActionRepository) MarkProcessed(ctx context.Context, id string) error {
	return q.execOne(ctx, "queueActionRepository.MarkProcessed", markQueueActionProcessed, id)
}

func (q *queueActionRepository) MarkError(ctx context.Context, id string, errMsg string) error {
	return q.execOne(ctx, "queueActionRepository.MarkError", markQueueActionError, errMsg, id)
}

func (q *queueActionRepository) SetOutboxItem(ctx context.Context, id string, outboxItemID string) error {
	return q.execOne(ctx, "queueActionRepository.SetOutboxItem", setQueueActionOutboxItem, outboxItemID, id)
}

func (q *queueActionRepository) execOne(ctx context.Context, fn string, query string, args ...any) error {
	res, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to update queue action")
		return q.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

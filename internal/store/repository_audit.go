// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/models"
)

const defaultAuditLimit = 100

type auditRepository struct {
	*DB
	logger *logger.Logger
}

func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	return &auditRepository{
		DB:     db,
		logger: logger,
	}
}

func (a *auditRepository) Append(ctx context.Context, entry models.AuditEntry) error {
	if err := insertAuditEntry(ctx, a.DB, entry); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "auditRepository.Append").
			Str("kind", string(entry.Kind)).
			Msg("failed to append audit entry")
		return a.classify(err)
	}

	return nil
}

// List returns the newest entries first. A non-positive limit falls back to
// 100.
func (a *auditRepository) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	log := logger.FromContext(ctx)

	if limit <= 0 {
		limit = defaultAuditLimit
	}

	query, args, err := buildListAuditQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := a.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "auditRepository.List").Msg("failed to query audit log")
		return nil, a.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0, limit)
	for rows.Next() {
		entry, scanErr := scanAuditEntry(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "auditRepository.List").Msg("failed to scan audit row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, a.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, rowsErr))
	}

	return entries, nil
}

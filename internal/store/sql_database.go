// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/migrations"
)

// sqlb builds queries with SQLite "?" placeholders.
var sqlb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// SchemaVersion reports the applied migration version.
func (db *DB) SchemaVersion() (int64, error) {
	return migrations.Version(db.DB)
}

// classify tags err with ErrStorageBusy or ErrStorageUnavailable when the
// driver reports a transient or resource failure. Other errors pass through.
func (db *DB) classify(err error) error {
	if err == nil || db.errorClassificator == nil {
		return err
	}

	if errors.Is(err, ErrStorageBusy) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}

	switch db.errorClassificator.Classify(err) {
	case Retryable:
		return fmt.Errorf("%w: %w", ErrStorageBusy, err)
	case Unavailable:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	default:
		return err
	}
}

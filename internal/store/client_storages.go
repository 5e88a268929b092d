// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-clinic-sync/internal/config"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

// ClientStorages groups all on-device repositories into a single value that
// can be passed around the service layer. They share one SQLite connection.
type ClientStorages struct {
	// MirrorRepository caches server entities, one table per collection.
	MirrorRepository MirrorRepository

	// OutboxRepository holds mutations awaiting delivery.
	OutboxRepository OutboxRepository

	// QueueActionRepository logs queue actions performed on this device.
	QueueActionRepository QueueActionRepository

	// AuditRepository is the sync audit log.
	AuditRepository AuditRepository

	db *DB
}

// NewClientStorages initialises the storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the parent directory if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs the repositories over the shared connection.
//
// Returns an error if the database connection cannot be established or if
// migration fails. The caller owns the returned value and must Close it.
func NewClientStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	if version, err := db.SchemaVersion(); err == nil {
		logger.Info().Int64("schema_version", version).Msg("local mirror schema is up to date")
	}

	return newClientStorages(db, logger), nil
}

func newClientStorages(db *DB, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		MirrorRepository:      NewMirrorRepository(db, logger),
		OutboxRepository:      NewOutboxRepository(db, logger),
		QueueActionRepository: NewQueueActionRepository(db, logger),
		AuditRepository:       NewAuditRepository(db, logger),
		db:                    db,
	}
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/models"
)

type mirrorRepository struct {
	*DB
	logger *logger.Logger
}

func NewMirrorRepository(db *DB, logger *logger.Logger) MirrorRepository {
	return &mirrorRepository{
		DB:     db,
		logger: logger,
	}
}

// ReplaceAll deletes the whole collection and inserts records with status
// synced in a single transaction, so a reader sees either the old set or the
// new one.
func (m *mirrorRepository) ReplaceAll(ctx context.Context, entity models.EntityType, records []models.MirrorRecord) error {
	return m.replace(ctx, "mirrorRepository.ReplaceAll", entity, records, false)
}

// ReplaceSynced is ReplaceAll for collections with local writes: rows whose
// status is not synced survive, and a fetched record never overwrites them.
func (m *mirrorRepository) ReplaceSynced(ctx context.Context, entity models.EntityType, records []models.MirrorRecord) error {
	return m.replace(ctx, "mirrorRepository.ReplaceSynced", entity, records, true)
}

func (m *mirrorRepository) replace(ctx context.Context, fn string, entity models.EntityType, records []models.MirrorRecord, keepLocal bool) error {
	log := logger.FromContext(ctx)

	if !entity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, entity)
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", fn).Str("entity", string(entity)).Msg("failed to begin transaction")
		return m.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	deleteQuery := "DELETE FROM " + entity.Table()
	conflict := "OR REPLACE"
	if keepLocal {
		deleteQuery += " WHERE sync_status = '" + string(models.SyncSynced) + "'"
		conflict = "OR IGNORE"
	}

	if _, err = tx.ExecContext(ctx, deleteQuery); err != nil {
		log.Err(err).Str("func", fn).Str("entity", string(entity)).Msg("failed to clear collection")
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	now := models.NowMillis()
	for idx, rec := range records {
		rec.EntityType = entity
		rec.SyncStatus = models.SyncSynced
		rec.SyncTimestamp = now

		if rec.ID.IsZero() {
			log.Warn().Str("func", fn).Str("entity", string(entity)).Int("index", idx).Msg("skipping record without id")
			continue
		}

		query, args, buildErr := buildWriteMirrorQuery(conflict, rec)
		if buildErr != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", fn).
				Str("entity", string(entity)).
				Str("id", rec.ID.String()).
				Msg("failed to insert record")
			return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", fn).Str("entity", string(entity)).Msg("failed to commit transaction")
		return m.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr))
	}

	log.Debug().
		Str("func", fn).
		Str("entity", string(entity)).
		Int("records", len(records)).
		Msg("collection replaced")

	return nil
}

func (m *mirrorRepository) UpsertLocal(ctx context.Context, write models.LocalWrite) (models.MirrorRecord, error) {
	log := logger.FromContext(ctx)

	if !write.EntityType.Valid() {
		return models.MirrorRecord{}, fmt.Errorf("%w: %q", ErrInvalidEntityType, write.EntityType)
	}

	id := write.ID
	if id.IsZero() {
		id = models.NewLocalID()
	}
	if !id.IsLocal() {
		return models.MirrorRecord{}, ErrLocalIDRequired
	}

	payload, err := mergePayload(write.Payload, nil, id)
	if err != nil {
		return models.MirrorRecord{}, err
	}

	rec := models.MirrorRecord{
		EntityType:    write.EntityType,
		ID:            id,
		TempID:        id,
		Payload:       payload,
		SyncStatus:    models.SyncPending,
		SyncTimestamp: models.NowMillis(),
	}

	linkLocalMutation(id, id, write.Action, write.Item)

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "mirrorRepository.UpsertLocal").Msg("failed to begin transaction")
		return models.MirrorRecord{}, m.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	query, args, err := buildWriteMirrorQuery("", rec)
	if err != nil {
		return models.MirrorRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "mirrorRepository.UpsertLocal").
			Str("entity", string(rec.EntityType)).
			Str("temp_id", id.String()).
			Msg("failed to insert local record")
		return models.MirrorRecord{}, m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if err = writeLocalMutation(ctx, tx, write.Action, write.Item); err != nil {
		log.Err(err).
			Str("func", "mirrorRepository.UpsertLocal").
			Str("temp_id", id.String()).
			Msg("failed to record local mutation")
		return models.MirrorRecord{}, m.classify(err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "mirrorRepository.UpsertLocal").Msg("failed to commit transaction")
		return models.MirrorRecord{}, m.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr))
	}

	log.Info().
		Str("func", "mirrorRepository.UpsertLocal").
		Str("entity", string(rec.EntityType)).
		Str("temp_id", id.String()).
		Msg("local record created")

	return rec, nil
}

func (m *mirrorRepository) UpsertRemote(ctx context.Context, record models.MirrorRecord) error {
	log := logger.FromContext(ctx)

	if !record.EntityType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, record.EntityType)
	}

	payload, err := mergePayload(record.Payload, nil, record.ID)
	if err != nil {
		return err
	}

	record.Payload = payload
	record.SyncStatus = models.SyncSynced
	record.SyncTimestamp = models.NowMillis()

	query, args, err := buildWriteMirrorQuery("OR REPLACE", record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = m.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "mirrorRepository.UpsertRemote").
			Str("entity", string(record.EntityType)).
			Str("id", record.ID.String()).
			Msg("failed to upsert remote record")
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return nil
}

func (m *mirrorRepository) PatchLocal(ctx context.Context, patch models.LocalPatch) (models.MirrorRecord, error) {
	log := logger.FromContext(ctx)

	if !patch.EntityType.Valid() {
		return models.MirrorRecord{}, fmt.Errorf("%w: %q", ErrInvalidEntityType, patch.EntityType)
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "mirrorRepository.PatchLocal").Msg("failed to begin transaction")
		return models.MirrorRecord{}, m.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	rec, err := getMirrorRecord(ctx, tx, patch.EntityType, patch.ID)
	if err != nil {
		log.Err(err).
			Str("func", "mirrorRepository.PatchLocal").
			Str("entity", string(patch.EntityType)).
			Str("id", patch.ID.String()).
			Msg("failed to load record to patch")
		return models.MirrorRecord{}, m.classify(err)
	}

	rec.Payload, err = mergePayload(rec.Payload, patch.Patch, rec.ID)
	if err != nil {
		return models.MirrorRecord{}, err
	}
	rec.SyncStatus = models.SyncPending
	rec.SyncTimestamp = models.NowMillis()
	if patch.SoftDelete && !rec.Deleted {
		now := time.Now().UTC()
		rec.Deleted = true
		rec.DeletedAt = &now
	}

	query, args, err := buildUpdateMirrorQuery(rec)
	if err != nil {
		return models.MirrorRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "mirrorRepository.PatchLocal").
			Str("id", rec.ID.String()).
			Msg("failed to update record")
		return models.MirrorRecord{}, m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	linkLocalMutation(rec.ID, rec.TempID, patch.Action, patch.Item)

	if err = writeLocalMutation(ctx, tx, patch.Action, patch.Item); err != nil {
		log.Err(err).
			Str("func", "mirrorRepository.PatchLocal").
			Str("id", rec.ID.String()).
			Msg("failed to record local mutation")
		return models.MirrorRecord{}, m.classify(err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "mirrorRepository.PatchLocal").Msg("failed to commit transaction")
		return models.MirrorRecord{}, m.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr))
	}

	return rec, nil
}

func (m *mirrorRepository) Get(ctx context.Context, entity models.EntityType, id models.ID) (models.MirrorRecord, error) {
	log := logger.FromContext(ctx)

	if !entity.Valid() {
		return models.MirrorRecord{}, fmt.Errorf("%w: %q", ErrInvalidEntityType, entity)
	}

	rec, err := getMirrorRecord(ctx, m.DB, entity, id)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			log.Err(err).
				Str("func", "mirrorRepository.Get").
				Str("entity", string(entity)).
				Str("id", id.String()).
				Msg("failed to get record")
		}
		return models.MirrorRecord{}, m.classify(err)
	}

	return rec, nil
}

func (m *mirrorRepository) ReadCollection(ctx context.Context, entity models.EntityType, filter models.MirrorFilter) ([]models.MirrorRecord, error) {
	log := logger.FromContext(ctx)

	if !entity.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntityType, entity)
	}

	query, args, err := buildReadCollectionQuery(entity, filter)
	if err != nil {
		log.Err(err).Str("func", "mirrorRepository.ReadCollection").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "mirrorRepository.ReadCollection").
			Str("entity", string(entity)).
			Msg("failed to query collection")
		return nil, m.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	records := make([]models.MirrorRecord, 0)
	for rows.Next() {
		rec, scanErr := scanMirrorRecord(entity, rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "mirrorRepository.ReadCollection").
				Str("entity", string(entity)).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "mirrorRepository.ReadCollection").
			Msg("error occurred during rows iteration")
		return nil, m.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, rowsErr))
	}

	return records, nil
}

func (m *mirrorRepository) SetSyncStatus(ctx context.Context, entity models.EntityType, id models.ID, status models.SyncStatus) error {
	log := logger.FromContext(ctx)

	if !entity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, entity)
	}

	query, args, err := sqlb.Update(entity.Table()).
		Set("sync_status", string(status)).
		Set("sync_timestamp", models.NowMillis()).
		Where("id = ?", id.String()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return m.execOne(ctx, log, "mirrorRepository.SetSyncStatus", query, args...)
}

func (m *mirrorRepository) SoftDelete(ctx context.Context, entity models.EntityType, id models.ID) error {
	log := logger.FromContext(ctx)

	if !entity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, entity)
	}

	query, args, err := sqlb.Update(entity.Table()).
		Set("deleted", true).
		Set("deleted_at", time.Now().UTC()).
		Set("sync_timestamp", models.NowMillis()).
		Where("id = ?", id.String()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return m.execOne(ctx, log, "mirrorRepository.SoftDelete", query, args...)
}

func (m *mirrorRepository) Count(ctx context.Context, entity models.EntityType) (int, error) {
	if !entity.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEntityType, entity)
	}

	var n int
	err := m.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+entity.Table()+" WHERE deleted = 0").Scan(&n)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mirrorRepository.Count").
			Str("entity", string(entity)).
			Msg("failed to count records")
		return 0, m.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}

	return n, nil
}

// ReconcileID swaps req.TempID for req.ServerID in one transaction:
//   - the temp row is replaced by a server row carrying the merged patch;
//     while later items of the entity are still queued the local state
//     fields (status, updated_by, updated_at) are kept;
//   - queue actions pointing at the temp id are repointed;
//   - every other outbox item of the entity gets the server id in its
//     entity_id, endpoint and body (temp_id is kept for lineage);
//   - the delivered item is removed and its action marked processed;
//   - an audit row is written.
//
// ErrRecordNotFound means no temp row exists, i.e. the id was reconciled
// before.
func (m *mirrorRepository) ReconcileID(ctx context.Context, req models.ReconcileRequest) error {
	log := logger.FromContext(ctx)

	if !req.EntityType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, req.EntityType)
	}
	if !req.TempID.IsLocal() || !req.ServerID.IsRemote() {
		return fmt.Errorf("%w: reconcile %s -> %s", models.ErrInvalidID, req.TempID, req.ServerID)
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to begin transaction")
		return m.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	rec, err := getMirrorRecord(ctx, tx, req.EntityType, req.TempID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			log.Info().
				Str("func", "mirrorRepository.ReconcileID").
				Str("temp_id", req.TempID.String()).
				Msg("temp record not found")
		}
		return m.classify(err)
	}

	var remaining int
	if err = tx.QueryRowContext(ctx, countLaneItems, req.TempID, req.TempID, req.DeliveredItemID).Scan(&remaining); err != nil {
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}

	patch := req.Patch
	if remaining > 0 {
		// the echo predates the entity's queued local changes
		patch = withoutFields(req.Patch, localStateFields...)
	}

	payload, err := mergePayload(rec.Payload, patch, req.ServerID)
	if err != nil {
		return err
	}

	swapped := models.MirrorRecord{
		EntityType:    req.EntityType,
		ID:            req.ServerID,
		TempID:        req.TempID,
		Payload:       payload,
		SyncStatus:    models.SyncSynced,
		SyncTimestamp: models.NowMillis(),
		Deleted:       rec.Deleted,
		DeletedAt:     rec.DeletedAt,
	}
	if remaining > 0 {
		swapped.SyncStatus = models.SyncPending
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+req.EntityType.Table()+" WHERE id = ?", req.TempID); err != nil {
		log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to delete temp record")
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	query, args, err := buildWriteMirrorQuery("OR REPLACE", swapped)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to insert server record")
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if _, err = tx.ExecContext(ctx, reconcileQueueActions, req.ServerID, req.TempID); err != nil {
		log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to repoint queue actions")
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	tempJSON, _ := json.Marshal(req.TempID)
	serverJSON, _ := json.Marshal(req.ServerID)
	serverValue, _ := req.ServerID.Remote()

	if _, err = tx.ExecContext(ctx, reconcileOutboxItems,
		req.ServerID,
		req.TempID.String(), url.PathEscape(serverValue),
		string(tempJSON), string(serverJSON),
		req.TempID, req.TempID, req.DeliveredItemID,
	); err != nil {
		log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to rewrite pending outbox items")
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if req.DeliveredItemID != "" {
		if _, err = tx.ExecContext(ctx, deleteOutboxItem, req.DeliveredItemID); err != nil {
			log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to remove delivered item")
			return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
		}
	}

	if req.ActionID != "" {
		if _, err = tx.ExecContext(ctx, markQueueActionProcessed, req.ActionID); err != nil {
			log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to mark action processed")
			return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
		}
	}

	if err = insertAuditEntry(ctx, tx, models.AuditEntry{
		Kind:       models.AuditReconciled,
		EntityType: req.EntityType,
		EntityID:   req.ServerID.String(),
		Detail:     "temp id " + req.TempID.String(),
	}); err != nil {
		log.Err(err).Str("func", "mirrorRepository.ReconcileID").Msg("failed to write audit entry")
		return m.classify(err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "mirrorRepository.ReconcileID").Msg("failed to commit transaction")
		return m.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr))
	}

	log.Info().
		Str("func", "mirrorRepository.ReconcileID").
		Str("entity", string(req.EntityType)).
		Str("temp_id", req.TempID.String()).
		Str("server_id", req.ServerID.String()).
		Int("rewritten_items", remaining).
		Msg("temp id reconciled")

	return nil
}

func (m *mirrorRepository) execOne(ctx context.Context, log *logger.Logger, fn string, query string, args ...any) error {
	res, err := m.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to execute statement")
		return m.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func getMirrorRecord(ctx context.Context, ex execer, entity models.EntityType, id models.ID) (models.MirrorRecord, error) {
	query, args, err := buildSelectMirrorQuery(entity, id)
	if err != nil {
		return models.MirrorRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rec, err := scanMirrorRecord(entity, ex.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MirrorRecord{}, ErrRecordNotFound
		}
		return models.MirrorRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return rec, nil
}

// linkLocalMutation points the action record and outbox item of a local
// write at the entity they describe. The item keeps the entity's temp id even
// after reconciliation so it lands in the same lane as earlier items.
func linkLocalMutation(id, tempID models.ID, action *models.QueueActionRecord, item *models.OutboxItem) {
	if item != nil {
		item.EntityID = id
		if !tempID.IsZero() {
			item.TempID = tempID
		}
	}
	if action != nil {
		action.QueueID = id
		if item != nil {
			action.OutboxItemID = item.ID
			item.ActionID = action.ID
		}
	}
}

func writeLocalMutation(ctx context.Context, ex execer, action *models.QueueActionRecord, item *models.OutboxItem) error {
	if action != nil {
		if err := insertQueueAction(ctx, ex, *action); err != nil {
			return err
		}
	}
	if item != nil {
		if err := insertOutboxItem(ctx, ex, item); err != nil {
			return err
		}
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/models"
)

const (
	busyRetries = 3
	busyDelay   = 50 * time.Millisecond
)

type mirrorService struct {
	mirror store.MirrorRepository
	audit  store.AuditRepository

	adapter adapter.ServerAdapter

	logger *logger.Logger
}

// NewMirrorService constructs the mirror service.
func NewMirrorService(storages *store.ClientStorages, serverAdapter adapter.ServerAdapter, logger *logger.Logger) MirrorService {
	return &mirrorService{
		mirror:  storages.MirrorRepository,
		audit:   storages.AuditRepository,
		adapter: serverAdapter,
		logger:  logger,
	}
}

// ReadCollection implements [MirrorService].
func (m *mirrorService) ReadCollection(ctx context.Context, entity models.EntityType, filter models.MirrorFilter) ([]models.MirrorRecord, error) {
	return m.mirror.ReadCollection(ctx, entity, filter)
}

// Refresh implements [MirrorService]. A busy database is retried a few
// times before giving up.
func (m *mirrorService) Refresh(ctx context.Context, entity models.EntityType) error {
	log := logger.FromContext(ctx)

	raw, err := m.adapter.FetchCollection(ctx, entity)
	if err != nil {
		log.Warn().Err(err).
			Str("func", "mirrorService.Refresh").
			Str("entity", string(entity)).
			Msg("failed to fetch collection")
		return mapAdapterError(err)
	}

	records := make([]models.MirrorRecord, 0, len(raw))
	for _, r := range raw {
		record, id, ok := adapter.DecodeRecord(r)
		if !ok {
			log.Warn().Str("func", "mirrorService.Refresh").Str("entity", string(entity)).Msg("skipping record without server id")
			continue
		}
		records = append(records, models.MirrorRecord{EntityType: entity, ID: id, Payload: record})
	}

	replace := m.mirror.ReplaceAll
	if !entity.Replaceable() {
		replace = m.mirror.ReplaceSynced
	}

	backoff := retry.WithMaxRetries(busyRetries, retry.NewConstant(busyDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := replace(ctx, entity, records); err != nil {
			if errors.Is(err, store.ErrStorageBusy) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "mirrorService.Refresh").
			Str("entity", string(entity)).
			Msg("failed to replace cached collection")
		return err
	}

	if err = m.audit.Append(ctx, models.AuditEntry{
		Kind:       models.AuditCacheReplaced,
		EntityType: entity,
		Detail:     fmt.Sprintf("%d records", len(records)),
	}); err != nil {
		log.Warn().Err(err).Str("func", "mirrorService.Refresh").Msg("failed to write audit entry")
	}

	return nil
}

// RefreshReplaceable implements [MirrorService].
func (m *mirrorService) RefreshReplaceable(ctx context.Context) ([]string, []string) {
	var refreshed, warnings []string

	for _, entity := range models.EntityTypes {
		if !entity.Replaceable() {
			continue
		}
		if err := m.Refresh(ctx, entity); err != nil {
			if errors.Is(err, ErrSessionRevoked) {
				warnings = append(warnings, err.Error())
				return refreshed, warnings
			}
			warnings = append(warnings, fmt.Sprintf("%s: cached copy kept: %v", entity, err))
			continue
		}
		refreshed = append(refreshed, string(entity))
	}

	return refreshed, warnings
}

// ApplyRemote implements [MirrorService].
func (m *mirrorService) ApplyRemote(ctx context.Context, event models.PushEvent) error {
	log := logger.FromContext(ctx)

	if !event.EntityType.Valid() {
		return fmt.Errorf("%w: %q", store.ErrInvalidEntityType, event.EntityType)
	}

	id := event.ID
	if id.IsZero() {
		_, echoed, ok := adapter.DecodeRecord(event.Record)
		if !ok {
			return fmt.Errorf("%w: push event", ErrMissingServerID)
		}
		id = echoed
	}
	if !id.IsRemote() {
		return fmt.Errorf("%w: push event for %s", models.ErrInvalidID, id)
	}

	current, err := m.mirror.Get(ctx, event.EntityType, id)
	switch {
	case err == nil:
		if current.SyncStatus != models.SyncSynced {
			log.Debug().
				Str("func", "mirrorService.ApplyRemote").
				Str("id", id.String()).
				Msg("local changes pending, push event skipped")
			return nil
		}
	case errors.Is(err, store.ErrRecordNotFound):
		if event.Op == models.PushDelete {
			return nil
		}
	default:
		return err
	}

	switch event.Op {
	case models.PushDelete:
		err = m.mirror.SoftDelete(ctx, event.EntityType, id)
	default:
		err = m.mirror.UpsertRemote(ctx, models.MirrorRecord{
			EntityType: event.EntityType,
			ID:         id,
			TempID:     current.TempID,
			Payload:    event.Record,
		})
	}
	if err != nil {
		return err
	}

	if err = m.audit.Append(ctx, models.AuditEntry{
		Kind:       models.AuditRemoteApplied,
		EntityType: event.EntityType,
		EntityID:   id.String(),
		Detail:     string(event.Op),
	}); err != nil {
		log.Warn().Err(err).Str("func", "mirrorService.ApplyRemote").Msg("failed to write audit entry")
	}

	return nil
}

// Sizes implements [MirrorService].
func (m *mirrorService) Sizes(ctx context.Context) map[models.EntityType]int {
	sizes := make(map[models.EntityType]int, len(models.EntityTypes))
	for _, entity := range models.EntityTypes {
		n, err := m.mirror.Count(ctx, entity)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).
				Str("func", "mirrorService.Sizes").
				Str("entity", string(entity)).
				Msg("failed to count cached records")
			continue
		}
		sizes[entity] = n
	}
	return sizes
}

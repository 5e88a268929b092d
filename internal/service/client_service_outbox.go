// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
	"github.com/MKhiriev/go-clinic-sync/internal/validators"
	"github.com/MKhiriev/go-clinic-sync/models"
)

type syncQueueService struct {
	outbox store.OutboxRepository
	mirror store.MirrorRepository
	audit  store.AuditRepository

	policy    RetryPolicy
	validator validators.Validator
	ids       *utils.UUIDGenerator
	now       func() time.Time

	logger *logger.Logger
}

// NewSyncQueueService constructs the outbox service over storages.
func NewSyncQueueService(storages *store.ClientStorages, policy RetryPolicy, logger *logger.Logger) SyncQueueService {
	return newSyncQueueService(storages, policy, logger)
}

func newSyncQueueService(storages *store.ClientStorages, policy RetryPolicy, logger *logger.Logger) *syncQueueService {
	return &syncQueueService{
		outbox:    storages.OutboxRepository,
		mirror:    storages.MirrorRepository,
		audit:     storages.AuditRepository,
		policy:    policy,
		validator: validators.NewOutboxItemValidator(),
		ids:       utils.NewUUIDGenerator(),
		now:       time.Now,
		logger:    logger,
	}
}

// Enqueue implements [SyncQueueService]. A malformed item is refused with
// ErrInvalidOutboxItem before it reaches storage.
func (s *syncQueueService) Enqueue(ctx context.Context, item models.OutboxItem) (string, error) {
	if item.ID == "" {
		item.ID = s.ids.Generate()
	}
	if item.Timestamp == 0 {
		item.Timestamp = s.now().UnixMilli()
	}
	if !item.Priority.Valid() {
		item.Priority = models.PriorityNormal
	}
	item.Status = models.OutboxPending

	if err := s.validator.Validate(ctx, item); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidOutboxItem, err)
	}

	stored, err := s.outbox.Enqueue(ctx, item)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncQueueService.Enqueue").
			Str("entity_type", string(item.EntityType)).
			Msg("failed to enqueue outbox item")
		return "", fmt.Errorf("%w: %w", ErrActionNotSaved, err)
	}

	return stored.ID, nil
}

// Counts implements [SyncQueueService].
func (s *syncQueueService) Counts(ctx context.Context) (models.OutboxCounts, error) {
	return s.outbox.Counts(ctx)
}

// RetryDead implements [SyncQueueService].
func (s *syncQueueService) RetryDead(ctx context.Context, ids ...string) (int, error) {
	n, err := s.outbox.Resurrect(ctx, ids...)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.appendAudit(ctx, models.AuditEntry{
			Kind:   models.AuditRequeued,
			Detail: fmt.Sprintf("%d dead items requeued", n),
		})
	}

	return n, nil
}

// drainTally collects the counters of concurrently drained lanes.
type drainTally struct {
	mu     sync.Mutex
	report models.DrainReport
}

func (t *drainTally) add(fn func(r *models.DrainReport)) {
	t.mu.Lock()
	fn(&t.report)
	t.mu.Unlock()
}

// Drain implements [SyncQueueService].
//
// Items are split into lanes by [models.OutboxItem.LaneKey]. A lane is
// drained head first and stops at the first item that cannot be delivered
// now, so a later change of an entity never overtakes an earlier one.
func (s *syncQueueService) Drain(ctx context.Context, sender Sender, completer Completer) (models.DrainReport, error) {
	log := logger.FromContext(ctx)

	items, err := s.outbox.ListActive(ctx)
	if err != nil {
		log.Err(err).Str("func", "syncQueueService.Drain").Msg("failed to load outbox")
		return models.DrainReport{}, err
	}
	if len(items) == 0 {
		return models.DrainReport{}, nil
	}

	lanes := buildLanes(items)
	log.Info().
		Str("func", "syncQueueService.Drain").
		Int("items", len(items)).
		Int("lanes", len(lanes)).
		Msg("draining outbox")

	tally := &drainTally{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.policy.concurrency())

	for _, lane := range lanes {
		g.Go(func() error {
			return s.drainLane(gctx, lane, sender, completer, tally)
		})
	}

	err = g.Wait()
	return tally.report, err
}

// buildLanes groups items by lane. Lanes keep the order in which their first
// item appears in items, which is the outbox priority order; each lane is
// sorted by enqueue time, then insertion order.
func buildLanes(items []models.OutboxItem) [][]models.OutboxItem {
	index := make(map[string]int)
	var lanes [][]models.OutboxItem

	for _, it := range items {
		key := it.LaneKey()
		i, ok := index[key]
		if !ok {
			i = len(lanes)
			index[key] = i
			lanes = append(lanes, nil)
		}
		lanes[i] = append(lanes[i], it)
	}

	for _, lane := range lanes {
		sortLane(lane)
	}

	return lanes
}

func sortLane(lane []models.OutboxItem) {
	slices.SortStableFunc(lane, func(a, b models.OutboxItem) int {
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

func (s *syncQueueService) drainLane(ctx context.Context, lane []models.OutboxItem, sender Sender, completer Completer, tally *drainTally) error {
	log := logger.FromContext(ctx)

	for i, head := range lane {
		if ctx.Err() != nil {
			return nil
		}
		rest := len(lane) - i - 1

		// re-read: an earlier reconcile in this lane may have rewritten it
		item, err := s.outbox.Get(ctx, head.ID)
		if errors.Is(err, store.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			log.Err(err).Str("func", "syncQueueService.drainLane").Str("outbox_id", head.ID).Msg("failed to reload outbox item")
			tally.add(func(r *models.DrainReport) { r.Deferred += rest + 1 })
			return nil
		}

		if reason := s.blocked(item); reason != "" {
			log.Debug().
				Str("func", "syncQueueService.drainLane").
				Str("outbox_id", item.ID).
				Str("reason", reason).
				Msg("lane deferred")
			tally.add(func(r *models.DrainReport) { r.Deferred += rest + 1 })
			return nil
		}

		tally.add(func(r *models.DrainReport) { r.Attempted++ })
		s.setMirrorStatus(ctx, item, models.SyncSyncing)

		result, sendErr := sender.Send(ctx, item)
		if sendErr != nil && isAppliedReplay(item, result, sendErr) {
			log.Info().
				Str("func", "syncQueueService.drainLane").
				Str("outbox_id", item.ID).
				Msg("server already applied this item")
			sendErr = nil
		}

		if sendErr == nil {
			if err = completer.Complete(ctx, item, result); err == nil {
				status := models.SyncSynced
				if rest > 0 {
					status = models.SyncPending
				}
				s.setMirrorStatus(ctx, item, status)
				tally.add(func(r *models.DrainReport) { r.Delivered++ })
				continue
			}
			sendErr = err
		}

		if ctx.Err() != nil && errors.Is(sendErr, context.Canceled) {
			return nil
		}

		if adapter.IsAuth(sendErr) {
			s.setMirrorStatus(ctx, item, models.SyncPending)
			s.appendAudit(ctx, models.AuditEntry{
				Kind:       models.AuditSessionRevoked,
				EntityType: item.EntityType,
				EntityID:   item.EntityID.String(),
				Detail:     sendErr.Error(),
			})
			return fmt.Errorf("%w: %w", ErrSessionRevoked, sendErr)
		}

		dead := s.fail(ctx, item, sendErr)
		tally.add(func(r *models.DrainReport) {
			if dead {
				r.Dead++
			} else {
				r.Failed++
			}
			r.Deferred += rest
		})
		return nil
	}

	return nil
}

// blocked returns why item can't be sent in this pass, or "".
func (s *syncQueueService) blocked(item models.OutboxItem) string {
	switch {
	case item.Status == models.OutboxDead:
		return "dead item heads the lane"
	case item.NextAttemptAt > s.now().UnixMilli():
		return "backing off"
	case item.Operation != models.OpCreate && item.EntityID.IsLocal():
		return "target not created on server yet"
	}
	return ""
}

// fail records a failed attempt and reports whether the item was
// dead-lettered.
func (s *syncQueueService) fail(ctx context.Context, item models.OutboxItem, sendErr error) bool {
	log := logger.FromContext(ctx)

	retries := item.Retries + 1
	dead := s.policy.Exhausted(retries) || !retryable(sendErr)

	var next int64
	if !dead && !errors.Is(sendErr, adapter.ErrNetwork) {
		next = s.now().Add(s.policy.Delay(retries)).UnixMilli()
	}

	if _, err := s.outbox.MarkFailed(ctx, item.ID, sendErr.Error(), next, dead); err != nil {
		log.Err(err).Str("func", "syncQueueService.fail").Str("outbox_id", item.ID).Msg("failed to record failed attempt")
	}
	s.setMirrorStatus(ctx, item, models.SyncError)

	kind := models.AuditFailed
	if dead {
		kind = models.AuditDeadLettered
	}
	s.appendAudit(ctx, models.AuditEntry{
		Kind:       kind,
		EntityType: item.EntityType,
		EntityID:   item.EntityID.String(),
		Detail:     sendErr.Error(),
	})

	log.Warn().
		Err(sendErr).
		Str("func", "syncQueueService.fail").
		Str("outbox_id", item.ID).
		Int("retries", retries).
		Bool("dead", dead).
		Msg("outbox item not delivered")

	return dead
}

// retryable reports whether sending the same item again can succeed.
// Storage failures while settling a delivered item are retried as well;
// the idempotency key keeps the replay harmless.
func retryable(err error) bool {
	if adapter.StatusCode(err) != 0 {
		return adapter.IsTransient(err)
	}
	return !errors.Is(err, ErrMissingServerID)
}

// isAppliedReplay recognises a create the server already applied under the
// same idempotency key: 409 with the existing record echoed back.
func isAppliedReplay(item models.OutboxItem, result models.SendResult, err error) bool {
	if item.Operation != models.OpCreate || !errors.Is(err, adapter.ErrConflict) {
		return false
	}
	_, _, ok := adapter.DecodeRecord(result.Body)
	return ok
}

func (s *syncQueueService) setMirrorStatus(ctx context.Context, item models.OutboxItem, status models.SyncStatus) {
	if item.EntityID.IsZero() {
		return
	}

	err := s.mirror.SetSyncStatus(ctx, item.EntityType, item.EntityID, status)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "syncQueueService.setMirrorStatus").
			Str("entity_id", item.EntityID.String()).
			Msg("failed to update sync status")
	}
}

func (s *syncQueueService) appendAudit(ctx context.Context, entry models.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "syncQueueService.appendAudit").
			Str("kind", string(entry.Kind)).
			Msg("failed to write audit entry")
	}
}

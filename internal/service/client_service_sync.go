// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
	"github.com/MKhiriev/go-clinic-sync/models"
)

const defaultAuditLimit = 100

type syncService struct {
	outbox  SyncQueueService
	queue   QueueService
	mirror  MirrorService
	audit   store.AuditRepository
	appInfo AppInfoService

	adapter      adapter.ServerAdapter
	connectivity ConnectivityMonitor
	terminator   SessionTerminator

	running sync.Mutex
	syncing atomic.Bool

	lastMu sync.RWMutex
	last   *models.SyncReport

	now func() time.Time

	logger *logger.Logger
}

// NewSyncService wires the sync trigger. It does not subscribe itself to
// connectivity; see [NewClientServices].
func NewSyncService(
	outbox SyncQueueService,
	queue QueueService,
	mirror MirrorService,
	audit store.AuditRepository,
	appInfo AppInfoService,
	serverAdapter adapter.ServerAdapter,
	connectivity ConnectivityMonitor,
	terminator SessionTerminator,
	logger *logger.Logger,
) SyncService {
	return &syncService{
		outbox:       outbox,
		queue:        queue,
		mirror:       mirror,
		audit:        audit,
		appInfo:      appInfo,
		adapter:      serverAdapter,
		connectivity: connectivity,
		terminator:   terminator,
		now:          time.Now,
		logger:       logger,
	}
}

// SyncNow implements [SyncService].
//
// Steps, in order:
//  1. refresh patients, next-of-kin and reports (failures become warnings);
//  2. drain the outbox;
//  3. settle queue actions whose items were lost or dead-lettered;
//  4. refresh the queue, keeping rows with unsent changes.
//
// When the server is unreachable the pass is skipped and the report says so.
func (s *syncService) SyncNow(ctx context.Context) (models.SyncReport, error) {
	if !s.running.TryLock() {
		return models.SyncReport{}, ErrSyncInProgress
	}
	defer s.running.Unlock()

	s.syncing.Store(true)
	defer s.syncing.Store(false)

	log := logger.FromContext(ctx)
	report := models.SyncReport{StartedAt: s.now().UTC()}

	if !s.connectivity.Online() && !s.connectivity.Probe(ctx) {
		report.Warnings = append(report.Warnings, "offline: changes stay queued")
		return s.finish(ctx, report, nil), nil
	}

	if utils.TokenExpired(s.adapter.Token(), s.now()) {
		err := fmt.Errorf("%w: token expired", ErrSessionRevoked)
		s.revoke(ctx, err)
		return s.finish(ctx, report, err), err
	}

	s.appendAudit(ctx, models.AuditEntry{Kind: models.AuditDrainStarted})

	report.Refreshed, report.Warnings = s.mirror.RefreshReplaceable(ctx)

	drain, err := s.outbox.Drain(ctx, s.adapter, s.queue)
	report.Drain = drain
	report.Notice = drain.FailedNotice()
	if errors.Is(err, ErrSessionRevoked) {
		s.revoke(ctx, err)
		return s.finish(ctx, report, err), err
	}
	if err != nil {
		log.Err(err).Str("func", "syncService.SyncNow").Msg("outbox drain failed")
		report.Warnings = append(report.Warnings, "outbox: "+err.Error())
	}

	requeued, err := s.queue.DrainActions(ctx)
	report.Requeued = requeued
	if err != nil {
		report.Warnings = append(report.Warnings, "queue actions: "+err.Error())
	}

	if err = s.mirror.Refresh(ctx, models.EntityQueue); err != nil {
		if errors.Is(err, ErrSessionRevoked) {
			s.revoke(ctx, err)
			return s.finish(ctx, report, err), err
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: cached copy kept: %v", models.EntityQueue, err))
	}

	return s.finish(ctx, report, nil), nil
}

func (s *syncService) finish(ctx context.Context, report models.SyncReport, err error) models.SyncReport {
	report.FinishedAt = s.now().UTC()

	s.lastMu.Lock()
	last := report
	s.last = &last
	s.lastMu.Unlock()

	detail := fmt.Sprintf("delivered=%d failed=%d dead=%d deferred=%d",
		report.Drain.Delivered, report.Drain.Failed, report.Drain.Dead, report.Drain.Deferred)
	if err != nil {
		detail += " error=" + err.Error()
	}
	if len(report.Warnings) > 0 {
		detail += " warnings=" + strings.Join(report.Warnings, "; ")
	}
	s.appendAudit(ctx, models.AuditEntry{Kind: models.AuditDrainFinished, Detail: detail})

	logger.FromContext(ctx).Info().
		Str("func", "syncService.SyncNow").
		Int("delivered", report.Drain.Delivered).
		Int("failed", report.Drain.Failed+report.Drain.Dead).
		Int("deferred", report.Drain.Deferred).
		Strs("refreshed", report.Refreshed).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("sync pass finished")

	return report
}

func (s *syncService) revoke(ctx context.Context, reason error) {
	logger.FromContext(ctx).Warn().Err(reason).Str("func", "syncService.revoke").Msg("session revoked by server")
	if s.terminator != nil {
		s.terminator.Terminate(ctx, reason)
	}
}

// OnOnline implements [ConnectivityListener].
func (s *syncService) OnOnline(ctx context.Context) {
	_, err := s.SyncNow(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		logger.FromContext(ctx).Debug().Str("func", "syncService.OnOnline").Msg("sync already running")
	default:
		logger.FromContext(ctx).Warn().Err(err).Str("func", "syncService.OnOnline").Msg("reconnect sync failed")
	}
}

// OnOffline implements [ConnectivityListener]. The mirror lives in SQLite,
// so there is nothing to load; the cached sizes are logged for diagnostics.
func (s *syncService) OnOffline(ctx context.Context) {
	ev := logger.FromContext(ctx).Info().Str("func", "syncService.OnOffline")
	for entity, n := range s.mirror.Sizes(ctx) {
		ev = ev.Int(string(entity), n)
	}
	ev.Msg("working offline from local mirror")
}

// Status implements [SyncService].
func (s *syncService) Status(ctx context.Context) (models.SyncStatusView, error) {
	counts, err := s.outbox.Counts(ctx)
	if err != nil {
		return models.SyncStatusView{}, err
	}

	view := models.SyncStatusView{
		Online:  s.connectivity.Online(),
		Syncing: s.syncing.Load(),
		Outbox:  counts,
	}
	if s.appInfo != nil {
		view.AppVersion = s.appInfo.GetAppVersion(ctx)
	}

	s.lastMu.RLock()
	if s.last != nil {
		last := *s.last
		view.LastSync = &last
	}
	s.lastMu.RUnlock()

	return view, nil
}

// Audit implements [SyncService].
func (s *syncService) Audit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.audit.List(ctx, limit)
}

func (s *syncService) appendAudit(ctx context.Context, entry models.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "syncService.appendAudit").
			Str("kind", string(entry.Kind)).
			Msg("failed to write audit entry")
	}
}

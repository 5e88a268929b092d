// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
	"github.com/MKhiriev/go-clinic-sync/models"
)

type queueService struct {
	mirror  store.MirrorRepository
	outbox  store.OutboxRepository
	actions store.QueueActionRepository

	adapter      adapter.ServerAdapter
	connectivity ConnectivityMonitor
	terminator   SessionTerminator

	ids *utils.UUIDGenerator
	now func() time.Time

	logger *logger.Logger
}

// NewQueueService constructs the visit-queue service. terminator may be nil.
func NewQueueService(
	storages *store.ClientStorages,
	serverAdapter adapter.ServerAdapter,
	connectivity ConnectivityMonitor,
	terminator SessionTerminator,
	logger *logger.Logger,
) QueueService {
	return &queueService{
		mirror:       storages.MirrorRepository,
		outbox:       storages.OutboxRepository,
		actions:      storages.QueueActionRepository,
		adapter:      serverAdapter,
		connectivity: connectivity,
		terminator:   terminator,
		ids:          utils.NewUUIDGenerator(),
		now:          time.Now,
		logger:       logger,
	}
}

// AddToQueue implements [QueueService]. While online the server creates the
// entry and its response is cached; a network or server failure falls back to
// the offline path.
func (q *queueService) AddToQueue(ctx context.Context, req models.AddToQueueRequest) (models.QueueEntry, error) {
	if !q.connectivity.Online() {
		return q.AddToQueueOffline(ctx, req)
	}

	if err := validateAddRequest(req); err != nil {
		return models.QueueEntry{}, err
	}

	// the full name is only needed for display; the server resolves it
	fullName, err := q.patientName(ctx, req.PatientID)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).
			Str("func", "queueService.AddToQueue").
			Str("patient_id", req.PatientID).
			Msg("patient name not resolved, sending without it")
	}

	body := models.QueueCreateBody{
		PatientID: req.PatientID,
		Reason:    req.Reason,
		Performer: req.Performer,
		FullName:  fullName,
		CheckInAt: q.now().UTC(),
	}

	raw, err := q.adapter.CreateQueueEntry(ctx, body, q.ids.Generate())
	if err != nil {
		if q.fallBack(ctx, "queueService.AddToQueue", err) {
			return q.AddToQueueOffline(ctx, req)
		}
		return models.QueueEntry{}, mapAdapterError(err)
	}

	return q.cacheServerEntry(ctx, raw, models.ID{}, false)
}

// AddToQueueOffline implements [QueueService].
//
// The patient's name is resolved from the mirror so the entry renders
// offline. The mirror row, the add action and the outbox item are written in
// one transaction; any storage failure is returned.
func (q *queueService) AddToQueueOffline(ctx context.Context, req models.AddToQueueRequest) (models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	if err := validateAddRequest(req); err != nil {
		return models.QueueEntry{}, err
	}

	fullName, err := q.patientName(ctx, req.PatientID)
	if err != nil {
		return models.QueueEntry{}, err
	}

	now := q.now().UTC()
	tempID := models.NewLocalID()

	entry := models.QueueEntry{
		PatientID: req.PatientID,
		FullName:  fullName,
		Reason:    req.Reason,
		Status:    models.QueueWaiting,
		QueuedBy:  req.Performer,
		CheckInAt: now,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("encode queue entry: %w", err)
	}

	body, err := json.Marshal(models.QueueCreateBody{
		PatientID: req.PatientID,
		Reason:    req.Reason,
		Performer: req.Performer,
		FullName:  fullName,
		CheckInAt: now,
		ClientRef: tempID,
	})
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("encode queue request: %w", err)
	}

	item := &models.OutboxItem{
		ID:         q.ids.Generate(),
		Method:     http.MethodPost,
		Endpoint:   models.EntityQueue.Endpoint(),
		Body:       body,
		EntityType: models.EntityQueue,
		Operation:  models.OpCreate,
		Priority:   models.PriorityCritical,
		Timestamp:  now.UnixMilli(),
	}
	action := &models.QueueActionRecord{
		ID:        q.ids.Generate(),
		Action:    models.ActionAdd,
		Performer: req.Performer,
		CreatedAt: now,
	}

	rec, err := q.mirror.UpsertLocal(ctx, models.LocalWrite{
		EntityType: models.EntityQueue,
		ID:         tempID,
		Payload:    payload,
		Action:     action,
		Item:       item,
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueService.AddToQueueOffline").
			Str("patient_id", req.PatientID).
			Msg("queue add was not saved")
		return models.QueueEntry{}, mapStoreError(err)
	}

	log.Info().
		Str("func", "queueService.AddToQueueOffline").
		Str("temp_id", rec.ID.String()).
		Str("outbox_id", item.ID).
		Msg("patient queued offline")

	return models.DecodePayload[models.QueueEntry](rec)
}

// PerformQueueAction implements [QueueService]. Entries with unsent local
// changes always take the offline path so the new action is delivered after
// them.
func (q *queueService) PerformQueueAction(ctx context.Context, queueID models.ID, action models.QueueAction, performer string) (models.QueueEntry, error) {
	if !q.connectivity.Online() {
		return q.PerformQueueActionOffline(ctx, queueID, action, performer)
	}

	if err := validateAction(action, performer); err != nil {
		return models.QueueEntry{}, err
	}

	rec, err := q.resolveEntry(ctx, queueID)
	if err != nil {
		return models.QueueEntry{}, err
	}

	serverID, ok := rec.ID.Remote()
	if !ok || rec.SyncStatus != models.SyncSynced {
		return q.PerformQueueActionOffline(ctx, rec.ID, action, performer)
	}

	status := action.ResultingStatus()
	raw, err := q.adapter.UpdateQueueStatus(ctx, serverID, models.QueueStatusBody{
		QueueID:   rec.ID,
		Status:    status,
		Performer: performer,
	}, q.ids.Generate())
	if err != nil {
		if q.fallBack(ctx, "queueService.PerformQueueAction", err) {
			return q.PerformQueueActionOffline(ctx, rec.ID, action, performer)
		}
		return models.QueueEntry{}, mapAdapterError(err)
	}

	if _, echoed, ok := adapter.DecodeRecord(raw); !ok || echoed != rec.ID {
		// no usable echo: apply the change to the cached copy
		raw, err = patchPayload(rec.Payload, statusPatch(status, performer, q.now()))
		if err != nil {
			return models.QueueEntry{}, err
		}
	}

	return q.cacheServerEntry(ctx, raw, rec.TempID, action == models.ActionRemove)
}

// PerformQueueActionOffline implements [QueueService].
func (q *queueService) PerformQueueActionOffline(ctx context.Context, queueID models.ID, action models.QueueAction, performer string) (models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	if err := validateAction(action, performer); err != nil {
		return models.QueueEntry{}, err
	}

	rec, err := q.resolveEntry(ctx, queueID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if rec.Deleted {
		return models.QueueEntry{}, ErrQueueEntryRemoved
	}

	now := q.now().UTC()
	status := action.ResultingStatus()

	item, err := q.statusItem(rec.ID, status, performer, now)
	if err != nil {
		return models.QueueEntry{}, err
	}
	record := &models.QueueActionRecord{
		ID:        q.ids.Generate(),
		Action:    action,
		Performer: performer,
		CreatedAt: now,
	}

	patched, err := q.mirror.PatchLocal(ctx, models.LocalPatch{
		EntityType: models.EntityQueue,
		ID:         rec.ID,
		Patch:      statusPatch(status, performer, now),
		SoftDelete: action == models.ActionRemove,
		Action:     record,
		Item:       &item,
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueService.PerformQueueActionOffline").
			Str("queue_id", rec.ID.String()).
			Str("action", string(action)).
			Msg("queue action was not saved")
		return models.QueueEntry{}, mapStoreError(err)
	}

	log.Info().
		Str("func", "queueService.PerformQueueActionOffline").
		Str("queue_id", rec.ID.String()).
		Str("action", string(action)).
		Str("outbox_id", item.ID).
		Msg("queue action recorded offline")

	return models.DecodePayload[models.QueueEntry](patched)
}

// statusItem builds the outbox item that moves entry id to status.
func (q *queueService) statusItem(id models.ID, status models.QueueStatus, performer string, at time.Time) (models.OutboxItem, error) {
	body, err := json.Marshal(models.QueueStatusBody{QueueID: id, Status: status, Performer: performer})
	if err != nil {
		return models.OutboxItem{}, fmt.Errorf("encode queue status: %w", err)
	}

	method, endpoint := adapter.QueueStatusRequest(id.String(), status)
	op := models.OpUpdate
	if method == http.MethodDelete {
		op = models.OpDelete
	}

	return models.OutboxItem{
		ID:         q.ids.Generate(),
		Method:     method,
		Endpoint:   endpoint,
		Body:       body,
		EntityType: models.EntityQueue,
		EntityID:   id,
		Operation:  op,
		Priority:   models.PriorityNormal,
		Timestamp:  at.UnixMilli(),
	}, nil
}

// resolveEntry loads a queue entry by id. A temporary id the UI still holds
// after reconciliation resolves to the reconciled row.
func (q *queueService) resolveEntry(ctx context.Context, id models.ID) (models.MirrorRecord, error) {
	rec, err := q.mirror.Get(ctx, models.EntityQueue, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return models.MirrorRecord{}, mapStoreError(err)
	}
	if !id.IsLocal() {
		return models.MirrorRecord{}, ErrQueueEntryNotFound
	}

	all, err := q.mirror.ReadCollection(ctx, models.EntityQueue, models.MirrorFilter{IncludeDeleted: true})
	if err != nil {
		return models.MirrorRecord{}, mapStoreError(err)
	}
	for _, r := range all {
		if r.TempID == id {
			return r, nil
		}
	}

	return models.MirrorRecord{}, ErrQueueEntryNotFound
}

func (q *queueService) patientName(ctx context.Context, patientID string) (string, error) {
	id, err := models.ParseID(patientID)
	if err != nil {
		return "", ErrValidationNoPatientID
	}

	rec, err := q.mirror.Get(ctx, models.EntityPatients, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrPatientNotCached, patientID)
	}
	if err != nil {
		return "", mapStoreError(err)
	}

	patient, err := models.DecodePayload[models.Patient](rec)
	if err != nil {
		return "", err
	}

	return patient.FullName(), nil
}

// cacheServerEntry writes a server-confirmed entry to the mirror. A failed
// cache write is logged only: the server already holds the change.
func (q *queueService) cacheServerEntry(ctx context.Context, raw json.RawMessage, tempID models.ID, removed bool) (models.QueueEntry, error) {
	record, id, ok := adapter.DecodeRecord(raw)
	if !ok {
		logger.FromContext(ctx).Warn().
			Str("func", "queueService.cacheServerEntry").
			Msg("server response carried no queue entry")
		var entry models.QueueEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			logger.FromContext(ctx).Warn().Err(err).
				Str("func", "queueService.cacheServerEntry").
				Msg("failed to decode server response")
		}
		return entry, nil
	}

	rec := models.MirrorRecord{
		EntityType: models.EntityQueue,
		ID:         id,
		TempID:     tempID,
		Payload:    record,
	}
	if removed {
		now := q.now().UTC()
		rec.Deleted, rec.DeletedAt = true, &now
	}

	if err := q.mirror.UpsertRemote(ctx, rec); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "queueService.cacheServerEntry").
			Str("queue_id", id.String()).
			Msg("failed to cache server entry")
	}

	return models.DecodePayload[models.QueueEntry](rec)
}

// fallBack decides whether a failed online call should be retried through
// the outbox. Auth failures end the session.
func (q *queueService) fallBack(ctx context.Context, fn string, err error) bool {
	log := logger.FromContext(ctx)

	if adapter.IsAuth(err) {
		if q.terminator != nil {
			q.terminator.Terminate(ctx, err)
		}
		return false
	}

	if !adapter.IsTransient(err) {
		return false
	}

	if errors.Is(err, adapter.ErrNetwork) {
		q.connectivity.SetOnline(ctx, false)
	}

	log.Warn().Err(err).Str("func", fn).Msg("server unreachable, queueing locally")
	return true
}

// ── Reconciler ───────────────────────────────────────────────────────────────

// Complete implements [Completer]. A delivered create swaps its temporary
// identity for the server's exactly once; a replay finds the temp row gone and
// only settles the item. Other items are acknowledged with the echoed record.
func (q *queueService) Complete(ctx context.Context, item models.OutboxItem, result models.SendResult) error {
	log := logger.FromContext(ctx)
	record, serverID, ok := adapter.DecodeRecord(result.Body)

	if item.Operation == models.OpCreate && item.TempID.IsLocal() {
		if !ok {
			return fmt.Errorf("%w: outbox item %s", ErrMissingServerID, item.ID)
		}

		patch, err := recordFields(record)
		if err != nil {
			return err
		}

		err = q.mirror.ReconcileID(ctx, models.ReconcileRequest{
			EntityType:      item.EntityType,
			TempID:          item.TempID,
			ServerID:        serverID,
			Patch:           patch,
			DeliveredItemID: item.ID,
			ActionID:        item.ActionID,
		})
		if errors.Is(err, store.ErrRecordNotFound) {
			log.Info().
				Str("func", "queueService.Complete").
				Str("temp_id", item.TempID.String()).
				Msg("temp id already reconciled")
			return q.outbox.Acknowledge(ctx, models.Acknowledgement{ItemID: item.ID, ActionID: item.ActionID})
		}
		return err
	}

	ack := models.Acknowledgement{ItemID: item.ID, ActionID: item.ActionID}
	if ok && serverID == item.EntityID {
		ack.Record = &models.MirrorRecord{
			EntityType: item.EntityType,
			ID:         serverID,
			TempID:     item.TempID,
			Payload:    record,
		}
	}

	return q.outbox.Acknowledge(ctx, ack)
}

// DrainActions implements [QueueService]. Actions whose item was
// dead-lettered are marked errored; actions whose item vanished without being
// processed get a fresh item built from the action and the cached entry.
func (q *queueService) DrainActions(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	pending, err := q.actions.ListUnprocessed(ctx)
	if err != nil {
		log.Err(err).Str("func", "queueService.DrainActions").Msg("failed to list queue actions")
		return 0, err
	}

	requeued := 0
	for _, a := range pending {
		if ctx.Err() != nil {
			return requeued, ctx.Err()
		}

		item, err := q.outbox.Get(ctx, a.OutboxItemID)
		switch {
		case err == nil && item.Status == models.OutboxDead:
			if a.Error == item.Error {
				continue
			}
			if err = q.actions.MarkError(ctx, a.ID, item.Error); err != nil {
				log.Err(err).Str("func", "queueService.DrainActions").Str("action_id", a.ID).Msg("failed to mark action errored")
			}
			if err = q.mirror.SetSyncStatus(ctx, models.EntityQueue, a.QueueID, models.SyncError); err != nil {
				log.Warn().Err(err).Str("func", "queueService.DrainActions").Str("id", a.QueueID.String()).Msg("failed to mark mirror row errored")
			}

		case err == nil:
			// still waiting for the next drain

		case errors.Is(err, store.ErrRecordNotFound) || a.OutboxItemID == "":
			ok, err := q.requeue(ctx, a)
			if err != nil {
				log.Err(err).Str("func", "queueService.DrainActions").Str("action_id", a.ID).Msg("failed to requeue action")
				continue
			}
			if ok {
				requeued++
			}

		default:
			log.Err(err).Str("func", "queueService.DrainActions").Str("action_id", a.ID).Msg("failed to load outbox item")
		}
	}

	return requeued, nil
}

// requeue rebuilds the outbox item of an action that lost it. ok is false
// when there is nothing left to send.
func (q *queueService) requeue(ctx context.Context, a models.QueueActionRecord) (bool, error) {
	rec, err := q.resolveEntry(ctx, a.QueueID)
	if errors.Is(err, ErrQueueEntryNotFound) {
		return false, q.actions.MarkError(ctx, a.ID, "queue entry no longer cached")
	}
	if err != nil {
		return false, err
	}

	var item models.OutboxItem
	switch {
	case a.Action == models.ActionAdd && rec.ID.IsRemote():
		// the server has it already
		return false, q.actions.MarkProcessed(ctx, a.ID)

	case a.Action == models.ActionAdd:
		entry, err := models.DecodePayload[models.QueueEntry](rec)
		if err != nil {
			return false, err
		}
		body, err := json.Marshal(models.QueueCreateBody{
			PatientID: entry.PatientID,
			Reason:    entry.Reason,
			Performer: a.Performer,
			FullName:  entry.FullName,
			CheckInAt: entry.CheckInAt,
			ClientRef: rec.ID,
		})
		if err != nil {
			return false, fmt.Errorf("encode queue request: %w", err)
		}
		item = models.OutboxItem{
			ID:         q.ids.Generate(),
			Method:     http.MethodPost,
			Endpoint:   models.EntityQueue.Endpoint(),
			Body:       body,
			EntityType: models.EntityQueue,
			Operation:  models.OpCreate,
			Priority:   models.PriorityCritical,
			Timestamp:  a.CreatedAt.UnixMilli(),
		}

	default:
		item, err = q.statusItem(rec.ID, a.Action.ResultingStatus(), a.Performer, a.CreatedAt)
		if err != nil {
			return false, err
		}
	}

	item.EntityID = rec.ID
	item.TempID = rec.TempID
	item.ActionID = a.ID

	stored, err := q.outbox.Enqueue(ctx, item)
	if err != nil {
		return false, err
	}
	if err = q.actions.SetOutboxItem(ctx, a.ID, stored.ID); err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info().
		Str("func", "queueService.requeue").
		Str("action_id", a.ID).
		Str("outbox_id", stored.ID).
		Msg("queue action requeued")

	return true, nil
}

// RetryFailed implements [QueueService].
func (q *queueService) RetryFailed(ctx context.Context) (int, error) {
	dead, err := q.outbox.ListByStatus(ctx, models.OutboxDead)
	if err != nil {
		return 0, err
	}

	var ids []string
	for _, it := range dead {
		if it.EntityType == models.EntityQueue {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := q.outbox.Resurrect(ctx, ids...)
	if err != nil {
		return 0, err
	}

	for _, it := range dead {
		if it.EntityType == models.EntityQueue && !it.EntityID.IsZero() {
			if err = q.mirror.SetSyncStatus(ctx, models.EntityQueue, it.EntityID, models.SyncPending); err != nil {
				logger.FromContext(ctx).Warn().Err(err).
					Str("func", "queueService.RetryFailed").
					Str("id", it.EntityID.String()).
					Msg("failed to mark mirror row pending")
			}
		}
	}

	return n, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func validateAddRequest(req models.AddToQueueRequest) error {
	if strings.TrimSpace(req.PatientID) == "" {
		return ErrValidationNoPatientID
	}
	if strings.TrimSpace(req.Performer) == "" {
		return ErrValidationNoPerformer
	}
	return nil
}

func validateAction(action models.QueueAction, performer string) error {
	switch action {
	case models.ActionCall, models.ActionSeen, models.ActionRemove:
	default:
		return ErrValidationNoAction
	}
	if strings.TrimSpace(performer) == "" {
		return ErrValidationNoPerformer
	}
	return nil
}

func statusPatch(status models.QueueStatus, performer string, at time.Time) map[string]any {
	return map[string]any{
		"status":     string(status),
		"updated_by": performer,
		"updated_at": at.UTC().Format(time.RFC3339Nano),
	}
}

func recordFields(record json.RawMessage) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(record, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", adapter.ErrInvalidResponse, err)
	}
	return fields, nil
}

func patchPayload(payload json.RawMessage, patch map[string]any) (json.RawMessage, error) {
	fields, err := recordFields(payload)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/mock"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/models"
)

// ── Offline round trip ───────────────────────────────────────────────────────

func TestAddToQueueOffline_RoundTrip(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOffline()

	entry, err := h.queue.AddToQueue(h.ctx, models.AddToQueueRequest{
		PatientID: "p001",
		Reason:    "fever",
		Performer: "nurse A",
	})
	require.NoError(t, err)
	assert.True(t, entry.ID.IsLocal())
	assert.Equal(t, models.QueueWaiting, entry.Status)
	assert.Equal(t, "Amina Yusuf", entry.FullName)

	rows := h.queueRows(t)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].ID.IsLocal())
	assert.Equal(t, rows[0].ID, rows[0].TempID)
	assert.Equal(t, models.SyncPending, rows[0].SyncStatus)

	local, err := models.DecodePayload[models.QueueEntry](rows[0])
	require.NoError(t, err)
	assert.Equal(t, "p001", local.PatientID)
	assert.Equal(t, models.QueueWaiting, local.Status)

	// сервер ничего не видел, пока нет связи
	assert.Empty(t, h.hospital.entries())

	h.goOnline()
	report := h.drain(t)
	assert.Equal(t, 1, report.Delivered)

	rows = h.queueRows(t)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].ID.IsRemote())
	assert.Equal(t, entry.ID, rows[0].TempID)
	assert.Equal(t, models.SyncSynced, rows[0].SyncStatus)

	synced, err := models.DecodePayload[models.QueueEntry](rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.QueueWaiting, synced.Status)
	assert.Equal(t, rows[0].ID, synced.ID)

	// временный id больше не читается
	_, err = h.storages.MirrorRepository.Get(h.ctx, models.EntityQueue, entry.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	server := h.hospital.entries()
	require.Len(t, server, 1)
	assert.Equal(t, "fever", server[0]["reason"])
	assert.Equal(t, "nurse A", server[0]["queued_by"])

	counts, err := h.outbox.Counts(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OutboxCounts{}, counts)

	actions, err := h.storages.QueueActionRepository.ListUnprocessed(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestAddToQueueOffline_NoLostWrites(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.seedPatient(t, "p002", "Brian", "Otieno")
	h.seedPatient(t, "p003", "Chen", "Li")
	h.goOffline()

	const adds = 5
	patients := []string{"p001", "p002", "p003", "p001", "p002"}
	for i := range adds {
		_, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{
			PatientID: patients[i],
			Reason:    "check-up",
			Performer: "reception",
		})
		require.NoError(t, err)
	}

	h.goOnline()
	report := h.drain(t)
	assert.Equal(t, adds, report.Delivered)

	rows := h.queueRows(t)
	require.Len(t, rows, adds)
	seen := make(map[models.ID]bool)
	for _, r := range rows {
		assert.True(t, r.ID.IsRemote(), r.ID.String())
		seen[r.ID] = true
	}
	assert.Len(t, seen, adds)
	assert.Len(t, h.hospital.entries(), adds)
}

// TestPerformQueueActionOffline_AfterUnsyncedAdd: вызов пациента, добавленного
// без связи, доходит до сервера после создания записи, а не вместо него.
func TestPerformQueueActionOffline_AfterUnsyncedAdd(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p002", "Brian", "Otieno")
	h.goOffline()

	entry, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{
		PatientID: "p002",
		Reason:    "follow-up",
		Performer: "nurse A",
	})
	require.NoError(t, err)

	called, err := h.queue.PerformQueueAction(h.ctx, entry.ID, models.ActionCall, "nurse B")
	require.NoError(t, err)
	assert.Equal(t, models.QueueCalled, called.Status)
	assert.Equal(t, "nurse B", called.UpdatedBy)

	h.goOnline()
	report := h.drain(t)
	assert.Equal(t, 2, report.Delivered)
	assert.Zero(t, report.Deferred)

	server := h.hospital.entries()
	require.Len(t, server, 1)
	assert.Equal(t, "p002", server[0]["patient_id"])
	assert.Equal(t, string(models.QueueCalled), server[0]["status"])

	// создание раньше смены статуса
	var writes []string
	for _, r := range h.hospital.requests() {
		if r != "GET /api/health" {
			writes = append(writes, r)
		}
	}
	require.Equal(t, []string{"POST /api/queue", "PUT /api/queue/q1/status"}, writes)

	rows := h.queueRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.RemoteID("q1"), rows[0].ID)
	assert.Equal(t, models.SyncSynced, rows[0].SyncStatus)
	final, err := models.DecodePayload[models.QueueEntry](rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.QueueCalled, final.Status)
}

// failingSender передаёт элементы настоящему адаптеру, кроме тех, что
// отбирает fail: для них соединение будто бы рвётся.
type failingSender struct {
	next Sender
	fail func(models.OutboxItem) bool
}

func (s *failingSender) Send(ctx context.Context, item models.OutboxItem) (models.SendResult, error) {
	if s.fail(item) {
		return models.SendResult{}, fmt.Errorf("%w: connection reset", adapter.ErrNetwork)
	}
	return s.next.Send(ctx, item)
}

func statusIs(status models.QueueStatus) func(models.OutboxItem) bool {
	return func(item models.OutboxItem) bool {
		var body models.QueueStatusBody
		return item.Method != "POST" && json.Unmarshal(item.Body, &body) == nil && body.Status == status
	}
}

func TestPerformQueueActionOffline_AddDeliveredCallFails(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p002", "Brian", "Otieno")
	h.goOffline()

	entry, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{PatientID: "p002", Reason: "follow-up", Performer: "nurse A"})
	require.NoError(t, err)
	_, err = h.queue.PerformQueueActionOffline(h.ctx, entry.ID, models.ActionCall, "nurse B")
	require.NoError(t, err)

	h.goOnline()
	report, err := h.outbox.Drain(h.ctx, &failingSender{next: h.adapter, fail: statusIs(models.QueueCalled)}, h.queue)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, 1, report.Failed)

	// сервер знает запись, но вызов до него не дошёл
	server := h.hospital.entries()
	require.Len(t, server, 1)
	assert.Equal(t, string(models.QueueWaiting), server[0]["status"])

	// зеркало получило серверный id и сохранило локальный вызов
	rows := h.queueRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.RemoteID("q1"), rows[0].ID)
	assert.NotEqual(t, models.SyncSynced, rows[0].SyncStatus)
	got, err := models.DecodePayload[models.QueueEntry](rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.QueueCalled, got.Status)
	assert.Equal(t, "nurse B", got.UpdatedBy)
	assert.Equal(t, "p002", got.PatientID)

	// следующий проход доставляет вызов
	report = h.drain(t)
	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, string(models.QueueCalled), h.hospital.entries()[0]["status"])

	rows = h.queueRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SyncSynced, rows[0].SyncStatus)
	got, err = models.DecodePayload[models.QueueEntry](rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.QueueCalled, got.Status)
}

func TestPerformQueueActionOffline_SecondDependentActionFails(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p002", "Brian", "Otieno")
	h.goOffline()

	entry, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{PatientID: "p002", Performer: "nurse A"})
	require.NoError(t, err)
	_, err = h.queue.PerformQueueActionOffline(h.ctx, entry.ID, models.ActionCall, "nurse B")
	require.NoError(t, err)
	_, err = h.queue.PerformQueueActionOffline(h.ctx, entry.ID, models.ActionSeen, "dr. Mwangi")
	require.NoError(t, err)

	h.goOnline()
	report, err := h.outbox.Drain(h.ctx, &failingSender{next: h.adapter, fail: statusIs(models.QueueSeen)}, h.queue)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Delivered)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, string(models.QueueCalled), h.hospital.entries()[0]["status"])

	// ни эхо создания, ни эхо вызова не откатили осмотр
	rows := h.queueRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.RemoteID("q1"), rows[0].ID)
	got, err := models.DecodePayload[models.QueueEntry](rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.QueueSeen, got.Status)
	assert.Equal(t, "dr. Mwangi", got.UpdatedBy)

	report = h.drain(t)
	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, string(models.QueueSeen), h.hospital.entries()[0]["status"])

	rows = h.queueRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SyncSynced, rows[0].SyncStatus)
	got, err = models.DecodePayload[models.QueueEntry](rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.QueueSeen, got.Status)
}

func TestPerformQueueActionOffline_StaleTempIDResolves(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOffline()

	entry, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)

	h.goOnline()
	h.drain(t)

	// UI всё ещё держит временный id
	h.goOffline()
	seen, err := h.queue.PerformQueueActionOffline(h.ctx, entry.ID, models.ActionSeen, "dr. Mwangi")
	require.NoError(t, err)
	assert.Equal(t, models.RemoteID("q1"), seen.ID)

	items, err := h.storages.OutboxRepository.ListActive(h.ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/api/queue/q1/status", items[0].Endpoint)
	assert.Equal(t, models.RemoteID("q1"), items[0].EntityID)

	h.goOnline()
	h.drain(t)
	assert.Equal(t, string(models.QueueSeen), h.hospital.entries()[0]["status"])
}

func TestPerformQueueActionOffline_Remove(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOffline()

	entry, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)

	_, err = h.queue.PerformQueueActionOffline(h.ctx, entry.ID, models.ActionRemove, "nurse A")
	require.NoError(t, err)
	assert.Empty(t, h.queueRows(t), "soft-deleted entry is hidden")

	_, err = h.queue.PerformQueueActionOffline(h.ctx, entry.ID, models.ActionCall, "nurse A")
	assert.ErrorIs(t, err, ErrQueueEntryRemoved)

	h.goOnline()
	report := h.drain(t)
	assert.Equal(t, 2, report.Delivered)
	assert.Empty(t, h.hospital.entries())

	var deletes int
	for _, r := range h.hospital.requests() {
		if r == "DELETE /api/queue/q1" {
			deletes++
		}
	}
	assert.Equal(t, 1, deletes)
}

// ── Online paths ─────────────────────────────────────────────────────────────

func TestAddToQueue_Online(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOnline()

	entry, err := h.queue.AddToQueue(h.ctx, models.AddToQueueRequest{PatientID: "p001", Reason: "cough", Performer: "nurse A"})
	require.NoError(t, err)
	assert.Equal(t, models.RemoteID("q1"), entry.ID)
	assert.Equal(t, "Amina Yusuf", entry.FullName)

	rows := h.queueRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SyncSynced, rows[0].SyncStatus)

	counts, err := h.outbox.Counts(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Pending)

	called, err := h.queue.PerformQueueAction(h.ctx, entry.ID, models.ActionCall, "nurse B")
	require.NoError(t, err)
	assert.Equal(t, models.QueueCalled, called.Status)
	assert.Equal(t, string(models.QueueCalled), h.hospital.entries()[0]["status"])

	counts, err = h.outbox.Counts(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Pending)
}

func TestAddToQueue_NetworkDropFallsBackOffline(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOnline()
	h.hospital.down.Store(true)

	entry, err := h.queue.AddToQueue(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)
	assert.True(t, entry.ID.IsLocal())
	assert.False(t, h.connectivity.Online())

	counts, err := h.outbox.Counts(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Pending)
}

func TestAddToQueue_ServerErrorFallsBackOffline(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOnline()
	h.hospital.failWrites.Store(503)

	entry, err := h.queue.AddToQueue(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)
	assert.True(t, entry.ID.IsLocal())
	assert.True(t, h.connectivity.Online(), "5xx is not a connectivity loss")
}

func TestAddToQueue_UnauthorizedTerminatesSession(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOnline()
	h.hospital.failWrites.Store(401)

	_, err := h.queue.AddToQueue(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	assert.ErrorIs(t, err, ErrSessionRevoked)
	assert.Equal(t, 1, h.terminator.calls())
	assert.Empty(t, h.queueRows(t))
}

func TestAddToQueue_RejectedIsNotQueued(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOnline()
	h.hospital.failWrites.Store(422)

	_, err := h.queue.AddToQueue(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	assert.ErrorIs(t, err, ErrServerRejected)
	assert.Empty(t, h.queueRows(t))
}

func TestPerformQueueAction_PendingEntryGoesThroughOutbox(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOffline()

	entry, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)

	h.goOnline()
	_, err = h.queue.PerformQueueAction(h.ctx, entry.ID, models.ActionCall, "nurse B")
	require.NoError(t, err)

	// ничего не ушло мимо очереди
	assert.Empty(t, h.hospital.entries())
	counts, err := h.outbox.Counts(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Pending)
}

// ── Validation ───────────────────────────────────────────────────────────────

func TestAddToQueueOffline_Validation(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")

	tests := []struct {
		name string
		req  models.AddToQueueRequest
		want error
	}{
		{"no patient", models.AddToQueueRequest{Performer: "nurse A"}, ErrValidationNoPatientID},
		{"no performer", models.AddToQueueRequest{PatientID: "p001", Performer: "  "}, ErrValidationNoPerformer},
		{"patient not cached", models.AddToQueueRequest{PatientID: "p404", Performer: "nurse A"}, ErrPatientNotCached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.queue.AddToQueueOffline(h.ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, h.queueRows(t))
}

func TestPerformQueueActionOffline_Validation(t *testing.T) {
	h := newHarness(t)

	_, err := h.queue.PerformQueueActionOffline(h.ctx, models.RemoteID("q1"), models.ActionAdd, "nurse A")
	assert.ErrorIs(t, err, ErrValidationNoAction)

	_, err = h.queue.PerformQueueActionOffline(h.ctx, models.RemoteID("q1"), models.ActionCall, "")
	assert.ErrorIs(t, err, ErrValidationNoPerformer)

	_, err = h.queue.PerformQueueActionOffline(h.ctx, models.RemoteID("q1"), models.ActionCall, "nurse A")
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)

	_, err = h.queue.PerformQueueActionOffline(h.ctx, models.NewLocalID(), models.ActionCall, "nurse A")
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)
}

// ── Storage failures ─────────────────────────────────────────────────────────

type fixedConnectivity struct {
	online bool
}

func (c *fixedConnectivity) Online() bool { return c.online }
func (c *fixedConnectivity) SetOnline(_ context.Context, online bool) { c.online = online }
func (c *fixedConnectivity) Subscribe(ConnectivityListener) {}
func (c *fixedConnectivity) Probe(context.Context) bool { return c.online }
func (c *fixedConnectivity) Run(context.Context) {}
func (c *fixedConnectivity) Stop() {}

func newMockQueueService(t *testing.T) (*queueService, *mock.MockMirrorRepository, *mock.MockOutboxRepository, *mock.MockQueueActionRepository) {
	ctrl := gomock.NewController(t)
	mirror := mock.NewMockMirrorRepository(ctrl)
	outbox := mock.NewMockOutboxRepository(ctrl)
	actions := mock.NewMockQueueActionRepository(ctrl)

	svc := NewQueueService(&store.ClientStorages{
		MirrorRepository:      mirror,
		OutboxRepository:      outbox,
		QueueActionRepository: actions,
	}, mock.NewMockServerAdapter(ctrl), &fixedConnectivity{}, nil, logger.Nop()).(*queueService)

	return svc, mirror, outbox, actions
}

func patientRecord(id, first, last string) models.MirrorRecord {
	payload, _ := json.Marshal(models.Patient{ID: models.RemoteID(id), FirstName: first, LastName: last})
	return models.MirrorRecord{EntityType: models.EntityPatients, ID: models.RemoteID(id), Payload: payload, SyncStatus: models.SyncSynced}
}

func TestAddToQueueOffline_StorageFailureSurfaces(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		want     error
	}{
		{
			name:     "disk full",
			storeErr: errors.Join(store.ErrStorageUnavailable, sqlite3.Error{Code: sqlite3.ErrFull}),
			want:     ErrActionNotSaved,
		},
		{
			name:     "database locked",
			storeErr: errors.Join(store.ErrStorageBusy, sqlite3.Error{Code: sqlite3.ErrBusy}),
			want:     ErrActionNotSaved,
		},
		{
			name:     "invalid entity",
			storeErr: store.ErrInvalidEntityType,
			want:     store.ErrInvalidEntityType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mirror, _, _ := newMockQueueService(t)

			mirror.EXPECT().
				Get(gomock.Any(), models.EntityPatients, models.RemoteID("p001")).
				Return(patientRecord("p001", "Amina", "Yusuf"), nil)
			mirror.EXPECT().
				UpsertLocal(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, w models.LocalWrite) (models.MirrorRecord, error) {
					assert.Equal(t, models.EntityQueue, w.EntityType)
					require.NotNil(t, w.Item)
					require.NotNil(t, w.Action)
					assert.Equal(t, models.PriorityCritical, w.Item.Priority)
					assert.Equal(t, models.OpCreate, w.Item.Operation)
					return models.MirrorRecord{}, tt.storeErr
				})

			entry, err := svc.AddToQueueOffline(testContext(), models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, models.QueueEntry{}, entry)
		})
	}
}

func TestPerformQueueActionOffline_StorageFailureSurfaces(t *testing.T) {
	svc, mirror, _, _ := newMockQueueService(t)

	rec := models.MirrorRecord{
		EntityType: models.EntityQueue,
		ID:         models.RemoteID("q1"),
		Payload:    json.RawMessage(`{"id":"q1","status":"waiting"}`),
		SyncStatus: models.SyncSynced,
	}
	mirror.EXPECT().Get(gomock.Any(), models.EntityQueue, models.RemoteID("q1")).Return(rec, nil)
	mirror.EXPECT().PatchLocal(gomock.Any(), gomock.Any()).Return(models.MirrorRecord{}, store.ErrStorageUnavailable)

	_, err := svc.PerformQueueActionOffline(testContext(), models.RemoteID("q1"), models.ActionCall, "nurse A")
	assert.ErrorIs(t, err, ErrActionNotSaved)
}

// ── Complete ─────────────────────────────────────────────────────────────────

func TestComplete(t *testing.T) {
	temp := models.LocalID("t1")

	t.Run("create without echo", func(t *testing.T) {
		svc, _, _, _ := newMockQueueService(t)
		err := svc.Complete(testContext(), models.OutboxItem{ID: "o1", Operation: models.OpCreate, EntityType: models.EntityQueue, EntityID: temp, TempID: temp},
			models.SendResult{StatusCode: 201, Body: json.RawMessage(`{"ok":true}`)})
		assert.ErrorIs(t, err, ErrMissingServerID)
		assert.False(t, retryable(err))
	})

	t.Run("create reconciles", func(t *testing.T) {
		svc, mirror, _, _ := newMockQueueService(t)
		mirror.EXPECT().ReconcileID(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req models.ReconcileRequest) error {
			assert.Equal(t, temp, req.TempID)
			assert.Equal(t, models.RemoteID("q9"), req.ServerID)
			assert.Equal(t, "o1", req.DeliveredItemID)
			assert.Equal(t, "a1", req.ActionID)
			assert.Equal(t, "waiting", req.Patch["status"])
			return nil
		})

		err := svc.Complete(testContext(), models.OutboxItem{
			ID: "o1", ActionID: "a1", Operation: models.OpCreate, EntityType: models.EntityQueue, EntityID: temp, TempID: temp,
		}, models.SendResult{StatusCode: 201, Body: json.RawMessage(`{"data":{"id":"q9","status":"waiting"}}`)})
		require.NoError(t, err)
	})

	t.Run("replay after reconcile only acknowledges", func(t *testing.T) {
		svc, mirror, outbox, _ := newMockQueueService(t)
		mirror.EXPECT().ReconcileID(gomock.Any(), gomock.Any()).Return(store.ErrRecordNotFound)
		outbox.EXPECT().Acknowledge(gomock.Any(), models.Acknowledgement{ItemID: "o1", ActionID: "a1"}).Return(nil)

		err := svc.Complete(testContext(), models.OutboxItem{
			ID: "o1", ActionID: "a1", Operation: models.OpCreate, EntityType: models.EntityQueue, EntityID: temp, TempID: temp,
		}, models.SendResult{StatusCode: 409, Body: json.RawMessage(`{"data":{"id":"q9"}}`)})
		require.NoError(t, err)
	})

	t.Run("update attaches matching echo", func(t *testing.T) {
		svc, _, outbox, _ := newMockQueueService(t)
		outbox.EXPECT().Acknowledge(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ack models.Acknowledgement) error {
			require.NotNil(t, ack.Record)
			assert.Equal(t, models.RemoteID("q9"), ack.Record.ID)
			assert.Equal(t, temp, ack.Record.TempID)
			return nil
		})

		err := svc.Complete(testContext(), models.OutboxItem{
			ID: "o2", Operation: models.OpUpdate, EntityType: models.EntityQueue, EntityID: models.RemoteID("q9"), TempID: temp,
		}, models.SendResult{StatusCode: 200, Body: json.RawMessage(`{"data":{"id":"q9","status":"called"}}`)})
		require.NoError(t, err)
	})

	t.Run("update ignores foreign echo", func(t *testing.T) {
		svc, _, outbox, _ := newMockQueueService(t)
		outbox.EXPECT().Acknowledge(gomock.Any(), models.Acknowledgement{ItemID: "o3"}).Return(nil)

		err := svc.Complete(testContext(), models.OutboxItem{
			ID: "o3", Operation: models.OpUpdate, EntityType: models.EntityQueue, EntityID: models.RemoteID("q9"),
		}, models.SendResult{StatusCode: 200, Body: json.RawMessage(`{"data":{"id":"q1"}}`)})
		require.NoError(t, err)
	})
}

// ── DrainActions / RetryFailed ───────────────────────────────────────────────

func TestDrainActions_RequeuesLostItem(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOffline()

	_, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)

	items, err := h.storages.OutboxRepository.ListActive(h.ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NoError(t, h.storages.OutboxRepository.Remove(h.ctx, items[0].ID))

	n, err := h.queue.DrainActions(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	requeued, err := h.storages.OutboxRepository.ListActive(h.ctx)
	require.NoError(t, err)
	require.Len(t, requeued, 1)
	assert.Equal(t, items[0].Timestamp, requeued[0].Timestamp)
	assert.Equal(t, items[0].TempID, requeued[0].TempID)
	assert.Equal(t, models.OpCreate, requeued[0].Operation)

	h.goOnline()
	report := h.drain(t)
	assert.Equal(t, 1, report.Delivered)
	assert.Len(t, h.hospital.entries(), 1)

	// второй проход ничего не находит
	n, err = h.queue.DrainActions(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainActions_DeadItemMarksActionAndRetryFailedRevives(t *testing.T) {
	h := newHarness(t)
	h.seedPatient(t, "p001", "Amina", "Yusuf")
	h.goOffline()

	entry, err := h.queue.AddToQueueOffline(h.ctx, models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)

	h.goOnline()
	h.hospital.failWrites.Store(400)
	report := h.drain(t)
	assert.Equal(t, 1, report.Dead)

	_, err = h.queue.DrainActions(h.ctx)
	require.NoError(t, err)

	actions, err := h.storages.QueueActionRepository.ListUnprocessed(h.ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0].Error, "400")

	row, err := h.storages.MirrorRepository.Get(h.ctx, models.EntityQueue, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncError, row.SyncStatus)

	h.hospital.failWrites.Store(0)
	n, err := h.queue.RetryFailed(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	row, err = h.storages.MirrorRepository.Get(h.ctx, models.EntityQueue, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, row.SyncStatus)

	report = h.drain(t)
	assert.Equal(t, 1, report.Delivered)
	assert.Len(t, h.hospital.entries(), 1)
}

func TestRetryFailed_NothingDead(t *testing.T) {
	h := newHarness(t)
	n, err := h.queue.RetryFailed(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func TestPatchPayload(t *testing.T) {
	out, err := patchPayload(json.RawMessage(`{"id":"q1","status":"waiting","reason":"fever"}`), map[string]any{"status": "called"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"q1","status":"called","reason":"fever"}`, string(out))

	_, err = patchPayload(json.RawMessage(`[1,2]`), nil)
	assert.ErrorIs(t, err, adapter.ErrInvalidResponse)
}

func TestAddToQueue_UnresolvedNameIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	mirror := mock.NewMockMirrorRepository(ctrl)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	svc := NewQueueService(&store.ClientStorages{MirrorRepository: mirror}, serverAdapter,
		&fixedConnectivity{online: true}, nil, logger.Nop())

	mirror.EXPECT().
		Get(gomock.Any(), models.EntityPatients, models.RemoteID("p001")).
		Return(models.MirrorRecord{}, store.ErrStorageUnavailable)
	serverAdapter.EXPECT().
		CreateQueueEntry(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, body models.QueueCreateBody, _ string) (json.RawMessage, error) {
			assert.Empty(t, body.FullName)
			return json.RawMessage(`{"id":"q1","patient_id":"p001","status":"waiting"}`), nil
		})
	mirror.EXPECT().UpsertRemote(gomock.Any(), gomock.Any()).Return(nil)

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	entry, err := svc.AddToQueue(l.WithContext(context.Background()), models.AddToQueueRequest{PatientID: "p001", Performer: "nurse A"})
	require.NoError(t, err)
	assert.Equal(t, models.RemoteID("q1"), entry.ID)

	assert.Contains(t, buf.String(), `"func":"queueService.AddToQueue"`)
	assert.Contains(t, buf.String(), store.ErrStorageUnavailable.Error())
}

func TestDrainActions_MirrorStatusFailureIsLogged(t *testing.T) {
	svc, mirror, outbox, actions := newMockQueueService(t)

	action := models.QueueActionRecord{ID: "a-call", QueueID: models.RemoteID("q1"), Action: models.ActionCall, OutboxItemID: "o-call"}
	actions.EXPECT().ListUnprocessed(gomock.Any()).Return([]models.QueueActionRecord{action}, nil)
	outbox.EXPECT().Get(gomock.Any(), "o-call").Return(models.OutboxItem{ID: "o-call", Status: models.OutboxDead, Error: "422"}, nil)
	actions.EXPECT().MarkError(gomock.Any(), "a-call", "422").Return(nil)
	mirror.EXPECT().
		SetSyncStatus(gomock.Any(), models.EntityQueue, models.RemoteID("q1"), models.SyncError).
		Return(store.ErrStorageBusy)

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	n, err := svc.DrainActions(l.WithContext(context.Background()))
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"func":"queueService.DrainActions"`)
}

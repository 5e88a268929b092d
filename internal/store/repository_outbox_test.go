// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/models"
)

func outboxItem(id string, priority models.Priority, ts int64) models.OutboxItem {
	return models.OutboxItem{
		ID:         id,
		Method:     "PUT",
		Endpoint:   "/api/queue/q1/status",
		Body:       json.RawMessage(`{"status":"called"}`),
		EntityType: models.EntityQueue,
		EntityID:   models.RemoteID("q1"),
		Operation:  models.OpUpdate,
		Priority:   priority,
		Timestamp:  ts,
	}
}

func itemIDs(items []models.OutboxItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// ── Enqueue / ListActive ──────────────────────────────────────────────────────

// TestListActive_Ordering: приоритет, затем время постановки, затем порядок
// вставки при равных временах.
func TestListActive_Ordering(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).OutboxRepository

	for _, it := range []models.OutboxItem{
		outboxItem("bg", models.PriorityBackground, 1),
		outboxItem("n2", models.PriorityNormal, 20),
		outboxItem("n1b", models.PriorityNormal, 10),
		outboxItem("n1a", models.PriorityNormal, 10),
		outboxItem("crit", models.PriorityCritical, 99),
	} {
		stored, err := repo.Enqueue(ctx, it)
		require.NoError(t, err)
		assert.Positive(t, stored.Seq)
		assert.Equal(t, models.OutboxPending, stored.Status)
	}

	items, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"crit", "n1b", "n1a", "n2", "bg"}, itemIDs(items))
}

func TestEnqueue_DuplicateIDFails(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).OutboxRepository

	_, err := repo.Enqueue(ctx, outboxItem("o1", models.PriorityNormal, 1))
	require.NoError(t, err)

	_, err = repo.Enqueue(ctx, outboxItem("o1", models.PriorityNormal, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestEnqueue_FullDiskIsUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrFull})

	_, err := repo.Enqueue(testContext(), outboxItem("o1", models.PriorityNormal, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── MarkFailed / Resurrect / Counts ───────────────────────────────────────────

func TestMarkFailed_RetryThenDead(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).OutboxRepository

	_, err := repo.Enqueue(ctx, outboxItem("o1", models.PriorityNormal, 1))
	require.NoError(t, err)

	item, err := repo.MarkFailed(ctx, "o1", "503 service unavailable", 5000, false)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Retries)
	assert.Equal(t, int64(5000), item.NextAttemptAt)
	assert.Equal(t, "503 service unavailable", item.Error)
	assert.Equal(t, models.OutboxPending, item.Status)

	item, err = repo.MarkFailed(ctx, "o1", "422 unprocessable", 0, true)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Retries)
	assert.Equal(t, models.OutboxDead, item.Status)

	// мёртвые элементы остаются видимыми, чтобы блокировать свою полосу
	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, itemIDs(active))

	pending, err := repo.ListByStatus(ctx, models.OutboxPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OutboxCounts{Pending: 0, Dead: 1}, counts)
}

func TestMarkFailed_NotFound(t *testing.T) {
	repo := newTestStorages(t).OutboxRepository

	_, err := repo.MarkFailed(testContext(), "missing", "boom", 0, false)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestResurrect(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).OutboxRepository

	for _, id := range []string{"d1", "d2", "p1"} {
		_, err := repo.Enqueue(ctx, outboxItem(id, models.PriorityNormal, 1))
		require.NoError(t, err)
	}
	_, err := repo.MarkFailed(ctx, "d1", "gone", 0, true)
	require.NoError(t, err)
	_, err = repo.MarkFailed(ctx, "d2", "gone", 0, true)
	require.NoError(t, err)

	n, err := repo.Resurrect(ctx, "d1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	d1, err := repo.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.OutboxPending, d1.Status)
	assert.Zero(t, d1.Retries)
	assert.Empty(t, d1.Error)

	n, err = repo.Resurrect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OutboxCounts{Pending: 3}, counts)
}

func TestRemove(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).OutboxRepository

	_, err := repo.Enqueue(ctx, outboxItem("o1", models.PriorityNormal, 1))
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, "o1"))
	assert.ErrorIs(t, repo.Remove(ctx, "o1"), ErrRecordNotFound)
}

// ── Acknowledge ───────────────────────────────────────────────────────────────

func TestAcknowledge_OverwritesMirrorWhenLaneIsEmpty(t *testing.T) {
	ctx := testContext()
	s := newTestStorages(t)

	require.NoError(t, s.MirrorRepository.UpsertRemote(ctx,
		remoteRecord(t, models.EntityQueue, "q1", map[string]any{"status": "waiting"})))

	item := outboxItem("o1", models.PriorityNormal, 1)
	_, err := s.MirrorRepository.PatchLocal(ctx, models.LocalPatch{
		EntityType: models.EntityQueue,
		ID:         models.RemoteID("q1"),
		Patch:      map[string]any{"status": "called"},
		Action:     &models.QueueActionRecord{ID: "a1", Action: models.ActionCall},
		Item:       &item,
	})
	require.NoError(t, err)

	server := remoteRecord(t, models.EntityQueue, "q1", map[string]any{"status": "called", "updated_by": "server"})
	require.NoError(t, s.OutboxRepository.Acknowledge(ctx, models.Acknowledgement{
		ItemID: "o1", ActionID: "a1", Record: &server,
	}))

	rec, err := s.MirrorRepository.Get(ctx, models.EntityQueue, models.RemoteID("q1"))
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, rec.SyncStatus)
	assert.Equal(t, "server", payloadField(t, rec, "updated_by"))

	_, err = s.OutboxRepository.Get(ctx, "o1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	action, err := s.QueueActionRepository.Get(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, action.Processed)

	audit, err := s.AuditRepository.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.AuditDelivered, audit[0].Kind)
}

// TestAcknowledge_KeepsLocalWhenLaterItemsWait: более поздние локальные
// изменения не затираются ответом сервера на раннее изменение.
func TestAcknowledge_KeepsLocalWhenLaterItemsWait(t *testing.T) {
	ctx := testContext()
	s := newTestStorages(t)

	require.NoError(t, s.MirrorRepository.UpsertRemote(ctx,
		remoteRecord(t, models.EntityQueue, "q1", map[string]any{"status": "waiting"})))

	first := outboxItem("o1", models.PriorityNormal, 1)
	second := outboxItem("o2", models.PriorityNormal, 2)
	for _, step := range []struct {
		item   *models.OutboxItem
		status string
	}{{&first, "called"}, {&second, "seen"}} {
		_, err := s.MirrorRepository.PatchLocal(ctx, models.LocalPatch{
			EntityType: models.EntityQueue,
			ID:         models.RemoteID("q1"),
			Patch:      map[string]any{"status": step.status},
			Item:       step.item,
		})
		require.NoError(t, err)
	}

	server := remoteRecord(t, models.EntityQueue, "q1", map[string]any{"status": "called"})
	require.NoError(t, s.OutboxRepository.Acknowledge(ctx, models.Acknowledgement{ItemID: "o1", Record: &server}))

	rec, err := s.MirrorRepository.Get(ctx, models.EntityQueue, models.RemoteID("q1"))
	require.NoError(t, err)
	assert.Equal(t, "seen", payloadField(t, rec, "status"))
	assert.Equal(t, models.SyncPending, rec.SyncStatus)
}

func TestAcknowledge_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db, logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteOutboxItem)).WithArgs("o1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(markQueueActionProcessed)).WithArgs("a1").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})
	mock.ExpectRollback()

	err := repo.Acknowledge(testContext(), models.Acknowledgement{ItemID: "o1", ActionID: "a1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounts_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta(countOutboxByStatus)).WillReturnError(errors.New("no such table: outbox"))

	_, err := repo.Counts(testContext())
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

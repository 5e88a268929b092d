// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-clinic-sync/models"
)

func TestQueueActionRepository_Lifecycle(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).QueueActionRepository

	base := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, repo.Create(ctx, models.QueueActionRecord{
			ID:        id,
			Action:    models.ActionCall,
			QueueID:   models.RemoteID("q1"),
			Performer: "nurse A",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	require.NoError(t, repo.SetOutboxItem(ctx, "a1", "o1"))
	require.NoError(t, repo.MarkError(ctx, "a2", "server returned 500"))
	require.NoError(t, repo.MarkProcessed(ctx, "a3"))

	pending, err := repo.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a1", pending[0].ID)
	assert.Equal(t, "o1", pending[0].OutboxItemID)
	assert.Equal(t, "a2", pending[1].ID)
	assert.Equal(t, "server returned 500", pending[1].Error)

	a3, err := repo.Get(ctx, "a3")
	require.NoError(t, err)
	assert.True(t, a3.Processed)
	assert.Equal(t, models.RemoteID("q1"), a3.QueueID)
	assert.Equal(t, models.ActionCall, a3.Action)
	assert.True(t, a3.CreatedAt.Equal(base.Add(2*time.Minute)))
}

func TestQueueActionRepository_NotFound(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).QueueActionRepository

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, repo.MarkProcessed(ctx, "missing"), ErrRecordNotFound)
	assert.ErrorIs(t, repo.MarkError(ctx, "missing", "x"), ErrRecordNotFound)
	assert.ErrorIs(t, repo.SetOutboxItem(ctx, "missing", "o1"), ErrRecordNotFound)
}

func TestAuditRepository_NewestFirst(t *testing.T) {
	ctx := testContext()
	repo := newTestStorages(t).AuditRepository

	for _, kind := range []models.AuditKind{models.AuditDrainStarted, models.AuditDelivered, models.AuditDrainFinished} {
		require.NoError(t, repo.Append(ctx, models.AuditEntry{Kind: kind, EntityType: models.EntityQueue, Detail: string(kind)}))
	}

	entries, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditDrainFinished, entries[0].Kind)
	assert.Equal(t, models.AuditDelivered, entries[1].Kind)
	assert.False(t, entries[0].At.IsZero())

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

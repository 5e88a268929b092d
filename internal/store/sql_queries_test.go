// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-clinic-sync/models"
)

func Test_buildSelectMirrorQuery_SQLContainsParts(t *testing.T) {
	query, args, err := buildSelectMirrorQuery(models.EntityPatients, models.RemoteID("p001"))
	require.NoError(t, err)

	require.Len(t, args, 1)
	assert.Equal(t, "p001", args[0])

	q := strings.ToLower(query)
	assert.Contains(t, q, "from patients_cache")
	assert.Contains(t, q, "where id = ?")
	for _, col := range mirrorColumns {
		assert.Contains(t, q, col)
	}
	// placeholder format should be ? (SQLite)
	assert.NotContains(t, query, "$1")
}

func Test_buildReadCollectionQuery(t *testing.T) {
	tests := []struct {
		name         string
		filter       models.MirrorFilter
		wantContains []string
		wantMissing  []string
		wantArgs     []any
	}{
		{
			name:         "zero filter hides deleted",
			filter:       models.MirrorFilter{},
			wantContains: []string{"from queue_cache", "deleted = ?", "order by rowid"},
			wantMissing:  []string{"sync_status in", "json_extract"},
			wantArgs:     []any{0},
		},
		{
			name:         "include deleted drops the predicate",
			filter:       models.MirrorFilter{IncludeDeleted: true},
			wantMissing:  []string{"where"},
			wantContains: []string{"order by rowid"},
			wantArgs:     nil,
		},
		{
			name:         "statuses",
			filter:       models.MirrorFilter{Statuses: []models.SyncStatus{models.SyncPending, models.SyncError}},
			wantContains: []string{"sync_status in (?,?)"},
			wantArgs:     []any{0, "pending", "error"},
		},
		{
			name: "fields are sorted",
			filter: models.MirrorFilter{Fields: map[string]any{
				"status":     "waiting",
				"patient_id": "p001",
			}},
			wantContains: []string{"json_extract(payload, ?) = ?"},
			wantArgs:     []any{0, "$.patient_id", "p001", "$.status", "waiting"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildReadCollectionQuery(models.EntityQueue, tt.filter)
			require.NoError(t, err)

			q := strings.ToLower(query)
			for _, part := range tt.wantContains {
				assert.Contains(t, q, part)
			}
			for _, part := range tt.wantMissing {
				assert.NotContains(t, q, part)
			}
			if tt.wantArgs == nil {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func Test_buildReadCollectionQuery_RejectsUnsafeField(t *testing.T) {
	for _, field := range []string{"a') OR 1=1 --", "Patient", "nested.field", ""} {
		_, _, err := buildReadCollectionQuery(models.EntityPatients, models.MirrorFilter{
			Fields: map[string]any{field: "x"},
		})
		assert.ErrorIs(t, err, ErrInvalidFilterField, field)
	}
}

func Test_buildWriteMirrorQuery_ConflictClause(t *testing.T) {
	rec := models.MirrorRecord{
		EntityType: models.EntityReports,
		ID:         models.RemoteID("r1"),
		Payload:    []byte(`{"id":"r1"}`),
		SyncStatus: models.SyncSynced,
	}

	tests := []struct {
		conflict string
		prefix   string
	}{
		{"", "INSERT INTO reports_cache"},
		{"OR REPLACE", "INSERT OR REPLACE INTO reports_cache"},
		{"OR IGNORE", "INSERT OR IGNORE INTO reports_cache"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			query, args, err := buildWriteMirrorQuery(tt.conflict, rec)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(query, tt.prefix), query)
			require.Len(t, args, len(mirrorColumns))
			assert.Equal(t, `{"id":"r1"}`, args[2])
			assert.Equal(t, "synced", args[3])
		})
	}
}

func Test_buildUpdateMirrorQuery_SQLContainsParts(t *testing.T) {
	query, args, err := buildUpdateMirrorQuery(models.MirrorRecord{
		EntityType: models.EntityQueue,
		ID:         models.LocalID("abc"),
		Payload:    []byte(`{}`),
		SyncStatus: models.SyncPending,
	})
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.True(t, strings.HasPrefix(q, "update queue_cache set"))
	assert.Contains(t, q, "where id = ?")
	assert.Equal(t, "local:abc", args[len(args)-1])
}

func Test_buildInsertOutboxQuery_OmitsSeq(t *testing.T) {
	query, args, err := buildInsertOutboxQuery(models.OutboxItem{
		ID:         "o1",
		Method:     "POST",
		Endpoint:   "/api/queue",
		EntityType: models.EntityQueue,
		Priority:   models.PriorityCritical,
		Status:     models.OutboxPending,
	})
	require.NoError(t, err)

	assert.NotContains(t, query, "seq")
	assert.Len(t, args, len(outboxColumns)-1)
	assert.Equal(t, "o1", args[0])
}

func Test_buildSelectOutboxQuery_Ordering(t *testing.T) {
	query, args, err := buildSelectOutboxQuery(sq.Eq{"status": "pending"})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(query, "ORDER BY priority, timestamp, seq"), query)
	assert.Equal(t, []any{"pending"}, args)

	query, args, err = buildSelectOutboxQuery(nil)
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func Test_buildResurrectQuery(t *testing.T) {
	query, args, err := buildResurrectQuery(nil)
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE status = ?")
	assert.NotContains(t, query, "id IN")
	assert.Equal(t, "dead", args[len(args)-1])

	query, args, err = buildResurrectQuery([]string{"o1", "o2"})
	require.NoError(t, err)
	assert.Contains(t, query, "id IN (?,?)")
	assert.Equal(t, []any{"o1", "o2"}, args[len(args)-2:])
}

func Test_buildListAuditQuery(t *testing.T) {
	query, _, err := buildListAuditQuery(25)
	require.NoError(t, err)

	assert.Contains(t, query, "FROM sync_audit")
	assert.Contains(t, query, "ORDER BY id DESC")
	assert.Contains(t, query, "LIMIT 25")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/config"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// fakeHospital — минимальный сервер больницы: реестр пациентов и очередь
// приёма с поддержкой Idempotency-Key.
type fakeHospital struct {
	mu       sync.Mutex
	patients []map[string]any
	queue    map[string]map[string]any
	order    []string
	keys     map[string]string
	log      []string
	seq      int

	// down рвёт соединение на любом запросе (сеть недоступна).
	down atomic.Bool
	// failWrites — код ответа для всех изменяющих запросов, 0 = норма.
	failWrites atomic.Int32
	// failFetch — код ответа для чтения коллекций, 0 = норма.
	failFetch atomic.Int32
}

func newFakeHospital() *fakeHospital {
	return &fakeHospital{
		queue: make(map[string]map[string]any),
		keys:  make(map[string]string),
	}
}

func (f *fakeHospital) addPatient(id, first, last string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patients = append(f.patients, map[string]any{"id": id, "first_name": first, "last_name": last})
}

// entries returns the live queue in creation order.
func (f *fakeHospital) entries() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.order))
	for _, id := range f.order {
		if e, ok := f.queue[id]; ok && e["status"] != string(models.QueueRemoved) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeHospital) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

func (f *fakeHospital) router() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record, f.network)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/patients", f.collection(func() any { return f.patients }))
	r.Get("/api/next-of-kin", f.collection(func() any { return []any{} }))
	r.Get("/api/reports", f.collection(func() any { return map[string]any{"data": []any{}} }))
	r.Get("/api/queue", f.collection(func() any {
		out := make([]map[string]any, 0, len(f.order))
		for _, id := range f.order {
			if e := f.queue[id]; e["status"] != string(models.QueueRemoved) {
				out = append(out, e)
			}
		}
		return out
	}))

	r.Group(func(r chi.Router) {
		r.Use(f.writeFailures)
		r.Post("/api/queue", f.createEntry)
		r.Put("/api/queue/{id}/status", f.updateStatus)
		r.Delete("/api/queue/{id}", f.updateStatus)
	})

	return r
}

func (f *fakeHospital) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.log = append(f.log, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *fakeHospital) network(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeHospital) writeFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := int(f.failWrites.Load()); code != 0 {
			http.Error(w, http.StatusText(code), code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeHospital) collection(rows func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if code := int(f.failFetch.Load()); code != 0 {
			http.Error(w, http.StatusText(code), code)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, rows())
	}
}

func (f *fakeHospital) createEntry(w http.ResponseWriter, r *http.Request) {
	var body models.QueueCreateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Header.Get("Idempotency-Key")
	if id, ok := f.keys[key]; ok && key != "" {
		writeJSON(w, http.StatusConflict, map[string]any{"data": f.queue[id]})
		return
	}

	f.seq++
	id := fmt.Sprintf("q%d", f.seq)
	entry := map[string]any{
		"id":          id,
		"patient_id":  body.PatientID,
		"full_name":   body.FullName,
		"reason":      body.Reason,
		"status":      string(models.QueueWaiting),
		"queued_by":   body.Performer,
		"check_in_at": body.CheckInAt.Format(time.RFC3339Nano),
	}
	f.queue[id] = entry
	f.order = append(f.order, id)
	if key != "" {
		f.keys[key] = id
	}

	writeJSON(w, http.StatusCreated, map[string]any{"data": entry})
}

func (f *fakeHospital) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body models.QueueStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.queue[chi.URLParam(r, "id")]
	if !ok {
		http.Error(w, "queue entry not found", http.StatusNotFound)
		return
	}
	entry["status"] = string(body.Status)
	entry["updated_by"] = body.Performer

	writeJSON(w, http.StatusOK, map[string]any{"data": entry})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ── harness ──────────────────────────────────────────────────────────────────

// harness собирает сервисы агента поверх настоящей SQLite и fakeHospital.
// Монитор связи не подписан на синхронизацию, чтобы фоновые проходы не
// мешали явным вызовам SyncNow.
type harness struct {
	ctx      context.Context
	hospital *fakeHospital
	storages *store.ClientStorages
	adapter  adapter.ServerAdapter

	connectivity ConnectivityMonitor
	terminator   *spyTerminator
	outbox       *syncQueueService
	queue        *queueService
	mirror       MirrorService
	sync         SyncService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctx := testContext()
	hospital := newFakeHospital()
	srv := httptest.NewServer(hospital.router())
	t.Cleanup(srv.Close)

	storages, err := store.NewClientStorages(ctx, config.Storage{
		DB: config.DB{DSN: filepath.Join(t.TempDir(), "mirror.db")},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.Close() })

	serverAdapter, err := adapter.NewHTTPServerAdapter(config.Adapter{
		HTTPAddress:    srv.URL,
		RequestTimeout: 2 * time.Second,
	}, config.App{}, logger.Nop())
	require.NoError(t, err)

	connectivity := NewConnectivityMonitor(serverAdapter, time.Second, logger.Nop())
	t.Cleanup(connectivity.Stop)

	terminator := &spyTerminator{}
	outbox := newSyncQueueService(storages, RetryPolicy{MaxAttempts: 3, Concurrency: 4}, logger.Nop())
	queue := NewQueueService(storages, serverAdapter, connectivity, terminator, logger.Nop()).(*queueService)
	mirror := NewMirrorService(storages, serverAdapter, logger.Nop())
	appInfo, err := NewAppInfoService(config.App{Version: "1.2.3"}, logger.Nop())
	require.NoError(t, err)

	return &harness{
		ctx:          ctx,
		hospital:     hospital,
		storages:     storages,
		adapter:      serverAdapter,
		connectivity: connectivity,
		terminator:   terminator,
		outbox:       outbox,
		queue:        queue,
		mirror:       mirror,
		sync: NewSyncService(outbox, queue, mirror, storages.AuditRepository, appInfo,
			serverAdapter, connectivity, terminator, logger.Nop()),
	}
}

// seedPatient кладёт пациента и на сервер, и в локальное зеркало.
func (h *harness) seedPatient(t *testing.T, id, first, last string) {
	t.Helper()
	h.hospital.addPatient(id, first, last)
	payload, err := json.Marshal(map[string]any{"id": id, "first_name": first, "last_name": last})
	require.NoError(t, err)
	require.NoError(t, h.storages.MirrorRepository.UpsertRemote(h.ctx, models.MirrorRecord{
		EntityType: models.EntityPatients,
		ID:         models.RemoteID(id),
		Payload:    payload,
	}))
}

func (h *harness) goOffline() {
	h.hospital.down.Store(true)
	h.connectivity.SetOnline(h.ctx, false)
}

func (h *harness) goOnline() {
	h.hospital.down.Store(false)
	h.connectivity.SetOnline(h.ctx, true)
}

func (h *harness) drain(t *testing.T) models.DrainReport {
	t.Helper()
	report, err := h.outbox.Drain(h.ctx, h.adapter, h.queue)
	require.NoError(t, err)
	return report
}

func (h *harness) queueRows(t *testing.T) []models.MirrorRecord {
	t.Helper()
	rows, err := h.storages.MirrorRepository.ReadCollection(h.ctx, models.EntityQueue, models.MirrorFilter{})
	require.NoError(t, err)
	return rows
}

type spyTerminator struct {
	mu      sync.Mutex
	reasons []error
}

func (s *spyTerminator) Terminate(_ context.Context, reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons = append(s.reasons, reason)
}

func (s *spyTerminator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reasons)
}

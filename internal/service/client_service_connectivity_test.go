// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

// stubPinger отвечает заранее заданной ошибкой.
type stubPinger struct {
	mu    sync.Mutex
	err   error
	calls atomic.Int64
}

func (p *stubPinger) Ping(context.Context) error {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *stubPinger) set(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// recordingListener собирает переходы в канал.
type recordingListener struct {
	events chan string
}

func newRecordingListener() *recordingListener {
	return &recordingListener{events: make(chan string, 16)}
}

func (l *recordingListener) OnOnline(context.Context)  { l.events <- "online" }
func (l *recordingListener) OnOffline(context.Context) { l.events <- "offline" }

func (l *recordingListener) next(t *testing.T) string {
	t.Helper()
	select {
	case e := <-l.events:
		return e
	case <-time.After(time.Second):
		t.Fatal("listener was not notified")
		return ""
	}
}

func (l *recordingListener) none(t *testing.T) {
	t.Helper()
	select {
	case e := <-l.events:
		t.Fatalf("unexpected notification %q", e)
	case <-time.After(30 * time.Millisecond):
	}
}

// ── SetOnline ────────────────────────────────────────────────────────────────

func TestConnectivityMonitor_StartsOffline(t *testing.T) {
	m := NewConnectivityMonitor(&stubPinger{}, 0, logger.Nop())
	assert.False(t, m.Online())
	assert.Equal(t, 10*time.Second, m.(*connectivityMonitor).interval)
}

func TestConnectivityMonitor_NotifiesOnTransitionsOnly(t *testing.T) {
	m := NewConnectivityMonitor(&stubPinger{}, time.Second, logger.Nop())
	l := newRecordingListener()
	m.Subscribe(l)
	ctx := testContext()

	m.SetOnline(ctx, false)
	l.none(t)

	m.SetOnline(ctx, true)
	assert.Equal(t, "online", l.next(t))
	assert.True(t, m.Online())

	m.SetOnline(ctx, true)
	l.none(t)

	m.SetOnline(ctx, false)
	assert.Equal(t, "offline", l.next(t))
	assert.False(t, m.Online())

	m.Stop()
}

func TestConnectivityMonitor_ListenersOutliveCallerContext(t *testing.T) {
	m := NewConnectivityMonitor(&stubPinger{}, time.Second, logger.Nop())

	var canceled atomic.Bool
	done := make(chan struct{})
	m.Subscribe(listenerFuncs{online: func(ctx context.Context) {
		time.Sleep(10 * time.Millisecond)
		canceled.Store(ctx.Err() != nil)
		close(done)
	}})

	ctx, cancel := context.WithCancel(testContext())
	m.SetOnline(ctx, true)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not run")
	}
	assert.False(t, canceled.Load())
	m.Stop()
}

type listenerFuncs struct {
	online  func(ctx context.Context)
	offline func(ctx context.Context)
}

func (l listenerFuncs) OnOnline(ctx context.Context) {
	if l.online != nil {
		l.online(ctx)
	}
}

func (l listenerFuncs) OnOffline(ctx context.Context) {
	if l.offline != nil {
		l.offline(ctx)
	}
}

// ── Probe / Run ──────────────────────────────────────────────────────────────

func TestConnectivityMonitor_Probe(t *testing.T) {
	p := &stubPinger{}
	m := NewConnectivityMonitor(p, time.Second, logger.Nop())
	ctx := testContext()

	assert.True(t, m.Probe(ctx))
	assert.True(t, m.Online())

	p.set(errors.New("connection refused"))
	assert.False(t, m.Probe(ctx))
	assert.False(t, m.Online())
}

func TestConnectivityMonitor_ProbeCanceledKeepsState(t *testing.T) {
	p := &stubPinger{err: context.Canceled}
	m := NewConnectivityMonitor(p, time.Second, logger.Nop())
	m.SetOnline(testContext(), true)

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	assert.True(t, m.Probe(ctx))
	assert.True(t, m.Online())
	m.Stop()
}

func TestConnectivityMonitor_RunProbesImmediatelyAndPeriodically(t *testing.T) {
	p := &stubPinger{}
	m := NewConnectivityMonitor(p, 10*time.Millisecond, logger.Nop())
	l := newRecordingListener()
	m.Subscribe(l)

	m.Run(testContext())
	assert.Equal(t, "online", l.next(t))

	p.set(errors.New("down"))
	assert.Equal(t, "offline", l.next(t))

	p.set(nil)
	assert.Equal(t, "online", l.next(t))

	m.Stop()
	calls := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, p.calls.Load(), "no probes after Stop")
}

func TestConnectivityMonitor_StopWithoutRun(t *testing.T) {
	m := NewConnectivityMonitor(&stubPinger{}, time.Second, logger.Nop())
	require.NotPanics(t, func() {
		m.Stop()
		m.Stop()
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

// Pinger probes the hospital API.
type Pinger interface {
	Ping(ctx context.Context) error
}

type connectivityMonitor struct {
	pinger   Pinger
	interval time.Duration

	online atomic.Bool

	listenersMu sync.RWMutex
	listeners   []ConnectivityListener

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	notifyWG sync.WaitGroup

	logger *logger.Logger
}

// NewConnectivityMonitor creates a monitor that starts offline and probes
// pinger every interval once Run is called. If interval is zero or negative it
// defaults to 10 seconds.
func NewConnectivityMonitor(pinger Pinger, interval time.Duration, logger *logger.Logger) ConnectivityMonitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &connectivityMonitor{pinger: pinger, interval: interval, logger: logger}
}

// Online implements [ConnectivityMonitor].
func (c *connectivityMonitor) Online() bool {
	return c.online.Load()
}

// Subscribe implements [ConnectivityMonitor].
func (c *connectivityMonitor) Subscribe(l ConnectivityListener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// SetOnline implements [ConnectivityMonitor]. Listeners run in the
// background, detached from ctx cancellation.
func (c *connectivityMonitor) SetOnline(ctx context.Context, online bool) {
	if c.online.Swap(online) == online {
		return
	}

	logger.FromContext(ctx).Info().
		Str("func", "connectivityMonitor.SetOnline").
		Bool("online", online).
		Msg("connectivity changed")

	c.listenersMu.RLock()
	listeners := append([]ConnectivityListener(nil), c.listeners...)
	c.listenersMu.RUnlock()

	notifyCtx := context.WithoutCancel(ctx)
	for _, l := range listeners {
		c.notifyWG.Add(1)
		go func() {
			defer c.notifyWG.Done()
			if online {
				l.OnOnline(notifyCtx)
			} else {
				l.OnOffline(notifyCtx)
			}
		}()
	}
}

// Probe implements [ConnectivityMonitor].
func (c *connectivityMonitor) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.interval)
	defer cancel()

	err := c.pinger.Ping(probeCtx)
	if ctx.Err() != nil {
		return c.Online()
	}
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("func", "connectivityMonitor.Probe").Msg("server unreachable")
	}

	c.SetOnline(ctx, err == nil)
	return err == nil
}

// Run implements [ConnectivityMonitor]. It probes immediately, then every
// interval until ctx is cancelled or Stop is called.
func (c *connectivityMonitor) Run(ctx context.Context) {
	c.Stop()

	c.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		t := time.NewTicker(c.interval)
		defer t.Stop()

		c.Probe(runCtx)
		for {
			select {
			case <-runCtx.Done():
				return
			case <-t.C:
				c.Probe(runCtx)
			}
		}
	}()
}

// Stop implements [ConnectivityMonitor]. It blocks until the probe loop and
// any running listener callbacks have returned.
func (c *connectivityMonitor) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	c.notifyWG.Wait()
}

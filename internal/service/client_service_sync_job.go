// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

// Onliner reports whether the hospital server is reachable.
type Onliner interface {
	Online() bool
}

type clientSyncJob struct {
	syncService  SyncService
	connectivity Onliner
	interval     time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a clientSyncJob that calls syncService.SyncNow on a
// ticker while connectivity reports online. If interval is zero or negative
// it defaults to one minute. The job is idle until Run is called.
func NewClientSyncJob(syncService SyncService, connectivity Onliner, interval time.Duration) ClientSyncJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &clientSyncJob{syncService: syncService, connectivity: connectivity, interval: interval}
}

// Run implements ClientSyncJob. It stops any previously running job, then
// launches a background goroutine. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *clientSyncJob) Run(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if !j.connectivity.Online() {
					continue
				}
				_, err := j.syncService.SyncNow(jobCtx)
				if err != nil && !errors.Is(err, ErrSyncInProgress) {
					logger.FromContext(jobCtx).Warn().Err(err).Str("func", "clientSyncJob.Run").Msg("periodic sync failed")
				}
			}
		}
	}()
}

// Stop implements ClientSyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

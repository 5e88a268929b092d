// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

type Workers struct {
	workers []Worker
	logger  *logger.Logger
}

// NewWorkers aggregates ws. Nil workers are skipped, so optional loops (the
// push listener without a push address) can be passed unconditionally.
func NewWorkers(logger *logger.Logger, ws ...Worker) *Workers {
	workers := make([]Worker, 0, len(ws))
	for _, w := range ws {
		if w != nil {
			workers = append(workers, w)
		}
	}
	return &Workers{workers: workers, logger: logger}
}

// Run starts every worker in registration order.
func (w *Workers) Run(ctx context.Context) {
	w.logger.Info().Int("workers", len(w.workers)).Msg("starting background workers")
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}

// Stop stops the workers in reverse order, so loops that depend on earlier
// ones (the sync job on connectivity) go first.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
	w.logger.Info().Msg("background workers stopped")
}

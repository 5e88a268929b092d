// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the agent's background loops: the connectivity probe,
// the real-time push listener and the periodic sync job.
package workers

import "context"

// Worker is a background loop. Run must not block: implementations start
// their own goroutine and keep it until ctx is cancelled or Stop is called.
// Stop blocks until the goroutine has exited.
type Worker interface {
	Run(ctx context.Context)
	Stop()
}

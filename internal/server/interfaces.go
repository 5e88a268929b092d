// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server defines the lifecycle contract of the transport servers managed by
// this package.
type Server interface {
	// RunServer serves requests until ctx is done, then shuts down
	// gracefully. It returns early only when listening fails.
	RunServer(ctx context.Context) error

	// Shutdown stops the server and waits for in-flight requests, bounded
	// by ctx.
	Shutdown(ctx context.Context) error
}

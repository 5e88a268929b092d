// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the ward agent runtime.
//
// It wires the local mirror, the outbox, the hospital API adapter, the
// background workers and the localhost UI API into a single process
// lifecycle that ends on a stop signal or when the server revokes the
// session.
package client

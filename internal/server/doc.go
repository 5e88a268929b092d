// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the agent's localhost API.
//
// The server lives as long as the context it is started with: signal
// handling and session termination both end it by cancelling that context,
// after which in-flight requests are drained.
package server

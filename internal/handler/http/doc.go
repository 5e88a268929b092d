// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the localhost API the ward UI talks to.
//
// Every read is served from the local mirror, so the UI keeps working while
// the hospital server is unreachable. Writes go through the queue service,
// which picks the online or the offline path on its own. Request tracing,
// access logging, response compression and the optional body integrity
// check are handled here before requests reach the service layer.
package http

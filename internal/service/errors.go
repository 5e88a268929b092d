// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrSyncInProgress is returned by SyncNow while another pass runs.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrSessionRevoked means the server rejected the credentials (401/403)
	// or the token expired. The session must be re-established.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrActionNotSaved wraps a storage failure on a user-initiated write.
	// The action was neither applied nor queued.
	ErrActionNotSaved = errors.New("action was not saved")

	ErrPatientNotCached   = errors.New("patient is not in the local cache")
	ErrQueueEntryNotFound = errors.New("queue entry not found")
	ErrQueueEntryRemoved  = errors.New("queue entry was removed")
	ErrServerRejected     = errors.New("server rejected the request")
	ErrMissingServerID    = errors.New("server response carried no id")
	ErrInvalidOutboxItem  = errors.New("invalid outbox item")

	ErrValidationNoPatientID = errors.New("no patient id provided")
	ErrValidationNoPerformer = errors.New("no performer provided")
	ErrValidationNoAction    = errors.New("queue action must be call, seen or remove")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

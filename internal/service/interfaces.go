// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-clinic-sync/models"
)

// Sender performs the network call for one outbox item. The server adapter
// satisfies it.
type Sender interface {
	Send(ctx context.Context, item models.OutboxItem) (models.SendResult, error)
}

// Completer settles an outbox item the server accepted: it removes the item
// and applies the response to the mirror.
type Completer interface {
	Complete(ctx context.Context, item models.OutboxItem, result models.SendResult) error
}

// SyncQueueService is the outbox: durable intent to mutate the server.
type SyncQueueService interface {
	// Enqueue stores item and returns its opaque identifier. A storage
	// failure is always returned to the caller.
	Enqueue(ctx context.Context, item models.OutboxItem) (string, error)

	// Drain walks the pending items in priority order and hands each to
	// sender. Items touching the same entity are sent strictly in enqueue
	// order; different entities may be sent concurrently. Failed items stay
	// in the outbox with their retry counter incremented.
	//
	// Returns ErrSessionRevoked when the server rejects the credentials;
	// the drain stops at that point.
	Drain(ctx context.Context, sender Sender, completer Completer) (models.DrainReport, error)

	// Counts reports how many items are pending and dead.
	Counts(ctx context.Context) (models.OutboxCounts, error)

	// RetryDead moves dead items (all of them when ids is empty) back to
	// pending with a fresh retry budget.
	RetryDead(ctx context.Context, ids ...string) (int, error)
}

// MirrorService is the read side of the local mirror plus the paths that
// write server state into it.
type MirrorService interface {
	// ReadCollection never touches the network.
	ReadCollection(ctx context.Context, entity models.EntityType, filter models.MirrorFilter) ([]models.MirrorRecord, error)

	// Refresh fetches the full server collection and replaces the cached
	// copy. The queue keeps rows with unsent local changes.
	Refresh(ctx context.Context, entity models.EntityType) error

	// RefreshReplaceable refreshes every read-mostly collection. Failures
	// are logged and returned as warnings; they never abort the caller.
	RefreshReplaceable(ctx context.Context) (refreshed []string, warnings []string)

	// ApplyRemote writes an event from the real-time channel into the
	// mirror unless the row carries unsent local changes.
	ApplyRemote(ctx context.Context, event models.PushEvent) error

	// Sizes returns the number of live rows per collection.
	Sizes(ctx context.Context) map[models.EntityType]int
}

// QueueService is the visit-queue API used by the UI. The non-Offline
// variants pick the server or the offline path based on connectivity.
type QueueService interface {
	Completer

	AddToQueue(ctx context.Context, req models.AddToQueueRequest) (models.QueueEntry, error)
	// AddToQueueOffline records the entry locally under a temporary id and
	// queues its creation on the server.
	AddToQueueOffline(ctx context.Context, req models.AddToQueueRequest) (models.QueueEntry, error)

	PerformQueueAction(ctx context.Context, queueID models.ID, action models.QueueAction, performer string) (models.QueueEntry, error)
	// PerformQueueActionOffline patches the cached entry and queues the
	// status change behind any earlier change of the same entry.
	PerformQueueActionOffline(ctx context.Context, queueID models.ID, action models.QueueAction, performer string) (models.QueueEntry, error)

	// DrainActions settles queue actions whose outbox items are gone or
	// dead-lettered.
	DrainActions(ctx context.Context) (requeued int, err error)

	// RetryFailed puts every dead-lettered queue item back in line.
	RetryFailed(ctx context.Context) (int, error)
}

// ConnectivityMonitor tracks whether the hospital API is reachable.
type ConnectivityMonitor interface {
	Online() bool
	// SetOnline records an explicit connectivity signal. Listeners are
	// only notified on transitions.
	SetOnline(ctx context.Context, online bool)
	// Subscribe registers l for transition callbacks.
	Subscribe(l ConnectivityListener)
	// Probe checks reachability once and records the result.
	Probe(ctx context.Context) bool

	Run(ctx context.Context)
	Stop()
}

// ConnectivityListener is notified when connectivity changes.
type ConnectivityListener interface {
	OnOnline(ctx context.Context)
	OnOffline(ctx context.Context)
}

// SyncService runs full sync passes and reports sync state to the UI.
type SyncService interface {
	ConnectivityListener

	// SyncNow refreshes the read-mostly collections, drains the outbox and
	// settles pending queue actions, in that order. It is not reentrant:
	// a call made while a pass is running returns ErrSyncInProgress.
	SyncNow(ctx context.Context) (models.SyncReport, error)

	Status(ctx context.Context) (models.SyncStatusView, error)

	Audit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// SessionTerminator ends the local session after the server revoked the
// credentials.
type SessionTerminator interface {
	Terminate(ctx context.Context, reason error)
}

// ClientSyncJob runs SyncNow periodically while the agent is online.
type ClientSyncJob interface {
	Run(ctx context.Context)
	Stop()
}

// AppInfoService exposes build metadata.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

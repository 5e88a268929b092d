// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/config"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
)

// ClientServices groups the agent's services.
type ClientServices struct {
	Connectivity ConnectivityMonitor
	Outbox       SyncQueueService
	Mirror       MirrorService
	Queue        QueueService
	Sync         SyncService
	SyncJob      ClientSyncJob
	AppInfo      AppInfoService
	Terminator   SessionTerminator
}

// NewClientServices wires the services over storages and serverAdapter and
// subscribes the sync service to connectivity changes. cancel is invoked
// when the server revokes the session.
func NewClientServices(
	cfg *config.StructuredConfig,
	storages *store.ClientStorages,
	serverAdapter adapter.ServerAdapter,
	cancel context.CancelCauseFunc,
	logger *logger.Logger,
) (*ClientServices, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	connectivity := NewConnectivityMonitor(serverAdapter, cfg.Workers.ProbeInterval, logger)
	terminator := NewSessionTerminator(serverAdapter, cancel, logger)

	outbox := NewSyncQueueService(storages, NewRetryPolicy(cfg.Sync), logger)
	mirror := NewMirrorService(storages, serverAdapter, logger)
	queue := NewQueueService(storages, serverAdapter, connectivity, terminator, logger)

	syncSvc := NewSyncService(
		outbox,
		queue,
		mirror,
		storages.AuditRepository,
		appInfo,
		serverAdapter,
		connectivity,
		terminator,
		logger,
	)
	connectivity.Subscribe(syncSvc)

	return &ClientServices{
		Connectivity: connectivity,
		Outbox:       outbox,
		Mirror:       mirror,
		Queue:        queue,
		Sync:         syncSvc,
		SyncJob:      NewClientSyncJob(syncSvc, connectivity, cfg.Workers.SyncInterval),
		AppInfo:      appInfo,
		Terminator:   terminator,
	}, nil
}

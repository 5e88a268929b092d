// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/config"
	"github.com/MKhiriev/go-clinic-sync/internal/handler"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/server"
	"github.com/MKhiriev/go-clinic-sync/internal/service"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/internal/workers"
)

type App struct {
	storages *store.ClientStorages
	services *service.ClientServices
	server   server.Server
	workers  *workers.Workers

	// lifetime ends when the session is revoked or Run's ctx is done.
	lifetime context.Context
	cancel   context.CancelCauseFunc

	logger *logger.Logger
}

// NewApp builds the agent from cfg. Storages are opened (and migrated) here;
// nothing talks to the network until Run.
func NewApp(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	lifetime, cancel := context.WithCancelCause(context.Background())

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		cancel(err)
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	app, err := newApp(cfg, storages, lifetime, cancel, log)
	if err != nil {
		cancel(err)
		storages.Close()
		return nil, err
	}

	return app, nil
}

func newApp(
	cfg *config.StructuredConfig,
	storages *store.ClientStorages,
	lifetime context.Context,
	cancel context.CancelCauseFunc,
	log *logger.Logger,
) (*App, error) {
	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	services, err := service.NewClientServices(cfg, storages, serverAdapter, cancel, log)
	if err != nil {
		return nil, fmt.Errorf("create client services: %w", err)
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create handlers: %w", err)
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	var push workers.Worker
	if cfg.Adapter.PushAddress != "" {
		push = adapter.NewPushListener(cfg.Adapter.PushAddress, serverAdapter, services.Mirror, services.Connectivity, log)
	}

	// the connectivity probe goes first: its first transition triggers the
	// initial sync pass
	ws := workers.NewWorkers(log, services.Connectivity, push, services.SyncJob)

	return &App{
		storages: storages,
		services: services,
		server:   srv,
		workers:  ws,
		lifetime: lifetime,
		cancel:   cancel,
		logger:   log,
	}, nil
}

// Run starts the workers and serves the local API until ctx is done, a stop
// signal arrives or the server revokes the session. A revoked session is
// returned as an error wrapping [service.ErrSessionRevoked].
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	unlink := context.AfterFunc(ctx, func() {
		a.cancel(context.Cause(ctx))
	})
	defer unlink()

	runCtx := a.logger.WithContext(a.lifetime)

	a.workers.Run(runCtx)
	serveErr := a.server.RunServer(runCtx)
	a.cancel(serveErr)

	a.workers.Stop()
	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Msg("error closing local storage")
	}

	if cause := context.Cause(a.lifetime); errors.Is(cause, service.ErrSessionRevoked) {
		a.logger.Warn().Err(cause).Msg("agent stopped: session revoked")
		return cause
	}
	return serveErr
}

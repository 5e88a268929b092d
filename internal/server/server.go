// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"net"
	"time"

	"github.com/MKhiriev/go-clinic-sync/internal/config"
	"github.com/MKhiriev/go-clinic-sync/internal/handler"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// server was asked to stop. A running POST /api/sync is the longest one.
const shutdownTimeout = 15 * time.Second

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		logger:     logger,
	}, nil
}

func (s *server) RunServer(ctx context.Context) error {
	ln, err := s.httpServer.listen()
	if err != nil {
		s.logger.Err(err).Str("func", "*server.RunServer").Msg("error binding local API address")
		return err
	}

	s.logger.Info().Str("address", ln.Addr().String()).Msg("Launching HTTP server")

	served := make(chan error, 1)
	go func() {
		served <- s.httpServer.serve(ln)
	}()

	select {
	case err = <-served:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Err(context.Cause(ctx)).Msg("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err = s.Shutdown(shutdownCtx); err != nil {
		return err
	}

	<-served
	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address once RunServer is listening, nil before.
func (s *server) Addr() net.Addr {
	return s.httpServer.Addr()
}

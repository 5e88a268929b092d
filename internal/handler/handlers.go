// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import (
	"github.com/MKhiriev/go-clinic-sync/internal/config"
	"github.com/MKhiriev/go-clinic-sync/internal/handler/http"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.ClientServices, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, cfg.App.HashKey, logger),
	}, nil
}

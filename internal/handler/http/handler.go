// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/service"
)

type Handler struct {
	services *service.ClientServices

	// checkIntegrity enables the HashSHA256 body check on writes.
	checkIntegrity bool

	logger *logger.Logger
}

// NewHandler creates the local API handler. When hashKey is set, write
// requests carrying a HashSHA256 header are verified against it; the hasher
// pool itself is initialised by the server adapter from the same key.
func NewHandler(services *service.ClientServices, hashKey string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		checkIntegrity: hashKey != "",
		logger:         logger,
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging)

	router.Get("/api/version", h.getAppVersion)

	// reads never leave the device
	router.Group(func(r chi.Router) {
		r.Use(withGZip)
		r.Get("/api/mirror/{entity}", h.readCollection)
		r.Get("/api/sync/status", h.syncStatus)
		r.Get("/api/sync/audit", h.syncAudit)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.withPerformer)
		if h.checkIntegrity {
			r.Use(h.withIntegrityCheck)
		}
		r.Post("/api/queue", h.addToQueue)
		r.Post("/api/queue/{id}/actions", h.performQueueAction)
	})

	router.Post("/api/sync", h.syncNow)
	router.Post("/api/sync/retry", h.retryFailed)

	return router
}

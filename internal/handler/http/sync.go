// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
	"github.com/MKhiriev/go-clinic-sync/models"
)

const defaultAuditLimit = 100

// syncNow serves POST /api/sync. It blocks until the pass finishes; a pass
// already in flight answers 409.
func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	report, err := h.services.Sync.SyncNow(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.syncNow").Msg("sync pass failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, report, http.StatusOK)
}

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	status, err := h.services.Sync.Status(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.syncStatus").Msg("error reading sync status")
		http.Error(w, "error reading sync status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) syncAudit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Error().Str("func", "*Handler.syncAudit").Str("limit", v).Msg("invalid limit")
			http.Error(w, ErrInvalidQueryParam.Error()+": limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.services.Sync.Audit(r.Context(), limit)
	if err != nil {
		log.Err(err).Str("func", "*Handler.syncAudit").Msg("error reading sync audit")
		http.Error(w, "error reading sync audit", statusFromError(err))
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	utils.WriteJSON(w, entries, http.StatusOK)
}

// retryFailed serves POST /api/sync/retry. With an {"ids": [...]} body only
// the named outbox items are requeued; without one every dead item is.
func (h *Handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Err(err).Str("func", "*Handler.retryFailed").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	var requeued int
	if len(req.IDs) == 0 {
		// queue items first: they also flip their mirror rows back to pending
		n, err := h.services.Queue.RetryFailed(ctx)
		if err != nil {
			log.Err(err).Str("func", "*Handler.retryFailed").Msg("error requeueing queue items")
			http.Error(w, "error requeueing failed items", statusFromError(err))
			return
		}
		requeued += n
	}

	n, err := h.services.Outbox.RetryDead(ctx, req.IDs...)
	if err != nil {
		log.Err(err).Str("func", "*Handler.retryFailed").Msg("error requeueing dead items")
		http.Error(w, "error requeueing failed items", statusFromError(err))
		return
	}
	requeued += n

	utils.WriteJSON(w, models.RetryResponse{Requeued: requeued}, http.StatusOK)
}

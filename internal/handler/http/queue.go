// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
	"github.com/MKhiriev/go-clinic-sync/models"
)

// addToQueue serves POST /api/queue. The answer is the same whether the
// server or the offline path took the entry; a local id tells them apart.
func (h *Handler) addToQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.AddToQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.addToQueue").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	req.Performer = performerOf(r, req.Performer)

	entry, err := h.services.Queue.AddToQueue(ctx, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.addToQueue").Str("patient_id", req.PatientID).Msg("error adding patient to queue")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	status := http.StatusCreated
	if entry.ID.IsLocal() {
		status = http.StatusAccepted
	}
	utils.WriteJSON(w, entry, status)
}

// performQueueAction serves POST /api/queue/{id}/actions.
func (h *Handler) performQueueAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	queueID, err := models.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.performQueueAction").Msg("invalid queue entry id")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	var req models.QueueActionRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.performQueueAction").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	action, err := models.ParseQueueAction(req.Action)
	if err != nil {
		log.Err(err).Str("func", "*Handler.performQueueAction").Msg("unknown queue action")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	entry, err := h.services.Queue.PerformQueueAction(ctx, queueID, action, performerOf(r, req.Performer))
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.performQueueAction").
			Str("queue_id", queueID.String()).
			Str("action", string(action)).
			Msg("error performing queue action")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, entry, http.StatusOK)
}

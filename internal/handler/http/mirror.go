// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
	"github.com/MKhiriev/go-clinic-sync/models"
)

const fieldParamPrefix = "field."

// readCollection serves GET /api/mirror/{entity}.
//
// Query parameters:
//   - status: sync statuses to keep, repeated or comma separated
//   - deleted: "true" also returns soft-deleted rows
//   - field.<name>: equality match on a top-level payload field
func (h *Handler) readCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	entity, err := models.ParseEntityType(chi.URLParam(r, "entity"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.readCollection").Msg("unknown collection")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	filter, err := parseMirrorFilter(r.URL.Query())
	if err != nil {
		log.Err(err).Str("func", "*Handler.readCollection").Msg("invalid filter")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	records, err := h.services.Mirror.ReadCollection(ctx, entity, filter)
	if err != nil {
		log.Err(err).Str("func", "*Handler.readCollection").Msg("error reading local mirror")
		http.Error(w, "error reading local mirror", statusFromError(err))
		return
	}
	if records == nil {
		records = []models.MirrorRecord{}
	}

	utils.WriteJSON(w, models.CollectionResponse{
		EntityType: entity,
		Records:    records,
		Length:     len(records),
	}, http.StatusOK)
}

func parseMirrorFilter(q url.Values) (models.MirrorFilter, error) {
	var filter models.MirrorFilter

	if v := q.Get("deleted"); v != "" {
		deleted, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("%w: deleted=%q", ErrInvalidQueryParam, v)
		}
		filter.IncludeDeleted = deleted
	}

	for _, raw := range q["status"] {
		for _, s := range strings.Split(raw, ",") {
			status := models.SyncStatus(strings.TrimSpace(s))
			switch status {
			case models.SyncPending, models.SyncSyncing, models.SyncSynced, models.SyncError:
				filter.Statuses = append(filter.Statuses, status)
			default:
				return filter, fmt.Errorf("%w: status=%q", ErrInvalidQueryParam, s)
			}
		}
	}

	for key, values := range q {
		name, ok := strings.CutPrefix(key, fieldParamPrefix)
		if !ok || len(values) == 0 {
			continue
		}
		if filter.Fields == nil {
			filter.Fields = make(map[string]any)
		}
		filter.Fields[name] = values[0]
	}

	return filter, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-clinic-sync/internal/utils"
)

const performerHeader = "X-Performer"

// withPerformer stores the staff member named in X-Performer in the request
// context. The header is optional; a body may name the performer instead.
func (h *Handler) withPerformer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		performer := strings.TrimSpace(r.Header.Get(performerHeader))
		if performer == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), utils.PerformerCtxKey, performer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// performerOf prefers the explicit value, then the X-Performer header.
func performerOf(r *http.Request, explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	p, _ := utils.GetPerformerFromContext(r.Context())
	return p
}

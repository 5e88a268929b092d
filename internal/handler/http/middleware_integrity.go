// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"crypto/hmac"
	"io"
	"net/http"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
)

const hashHeader = "HashSHA256"

// withIntegrityCheck verifies the HMAC-SHA256 of the request body against
// the HashSHA256 header. Requests without the header pass unchecked.
func (h *Handler) withIntegrityCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := r.Header.Get(hashHeader)
		if want == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withIntegrityCheck").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		got := utils.Sign(body)
		if !hmac.Equal([]byte(got), []byte(want)) {
			log.Error().
				Str("func", "*Handler.withIntegrityCheck").
				Str("hash from request", want).
				Str("hashed body", got).
				Msg("hashes are not equal")
			http.Error(w, ErrIntegrityCheckFailed.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}

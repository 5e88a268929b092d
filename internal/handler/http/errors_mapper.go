// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-clinic-sync/internal/service"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
	"github.com/MKhiriev/go-clinic-sync/models"
)

var errorStatusMap = map[error]int{
	service.ErrSyncInProgress:        http.StatusConflict,
	service.ErrSessionRevoked:        http.StatusUnauthorized,
	service.ErrActionNotSaved:        http.StatusInternalServerError,
	service.ErrPatientNotCached:      http.StatusNotFound,
	service.ErrQueueEntryNotFound:    http.StatusNotFound,
	service.ErrQueueEntryRemoved:     http.StatusGone,
	service.ErrServerRejected:        http.StatusUnprocessableEntity,
	service.ErrValidationNoPatientID: http.StatusBadRequest,
	service.ErrValidationNoPerformer: http.StatusBadRequest,
	service.ErrValidationNoAction:    http.StatusBadRequest,

	models.ErrInvalidID:          http.StatusBadRequest,
	models.ErrUnknownEntityType:  http.StatusNotFound,
	models.ErrUnknownQueueAction: http.StatusBadRequest,

	store.ErrRecordNotFound:     http.StatusNotFound,
	store.ErrInvalidEntityType:  http.StatusNotFound,
	store.ErrInvalidFilterField: http.StatusBadRequest,
	store.ErrStorageBusy:        http.StatusServiceUnavailable,
	store.ErrStorageUnavailable: http.StatusServiceUnavailable,

	ErrInvalidQueryParam:    http.StatusBadRequest,
	ErrIntegrityCheckFailed: http.StatusBadRequest,
}

// statusFromError maps err to a response status. A storage failure wrapped in
// ErrActionNotSaved keeps the 500 of the outer error.
func statusFromError(err error) int {
	if errors.Is(err, service.ErrActionNotSaved) {
		return http.StatusInternalServerError
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

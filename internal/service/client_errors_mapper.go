// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-clinic-sync/internal/adapter"
	"github.com/MKhiriev/go-clinic-sync/internal/store"
)

// mapAdapterError translates the adapter's transport error into a service business error
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case adapter.IsAuth(err):
		return fmt.Errorf("%w: %w", ErrSessionRevoked, err)

	case errors.Is(err, adapter.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrQueueEntryNotFound, err)

	case errors.Is(err, adapter.ErrBadRequest),
		errors.Is(err, adapter.ErrConflict),
		errors.Is(err, adapter.ErrUnprocessable):
		return fmt.Errorf("%w: %w", ErrServerRejected, err)
	}

	return err
}

// mapStoreError marks storage failures on a user-initiated write so the
// caller is told the action was lost.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return ErrQueueEntryNotFound
	case errors.Is(err, store.ErrInvalidEntityType),
		errors.Is(err, store.ErrLocalIDRequired):
		return err
	}

	return fmt.Errorf("%w: %w", ErrActionNotSaved, err)
}

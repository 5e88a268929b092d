// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

func TestClassifySQLiteError(t *testing.T) {
	tests := []struct {
		code sqlite3.ErrNo
		want ErrorClassification
	}{
		{sqlite3.ErrBusy, Retryable},
		{sqlite3.ErrLocked, Retryable},
		{sqlite3.ErrFull, Unavailable},
		{sqlite3.ErrIoErr, Unavailable},
		{sqlite3.ErrReadonly, Unavailable},
		{sqlite3.ErrCorrupt, Unavailable},
		{sqlite3.ErrNotADB, Unavailable},
		{sqlite3.ErrCantOpen, Unavailable},
		{sqlite3.ErrConstraint, NonRetryable},
		{sqlite3.ErrMismatch, NonRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.code.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySQLiteError(sqlite3.Error{Code: tt.code}))
		})
	}
}

func TestSQLiteErrorClassifier_Classify(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	assert.Equal(t, NonRetryable, c.Classify(nil))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
	assert.Equal(t, Retryable, c.Classify(fmt.Errorf("wrapped: %w", sqlite3.Error{Code: sqlite3.ErrBusy})))
}

func TestDB_classify(t *testing.T) {
	db := &DB{errorClassificator: NewSQLiteErrorClassifier(), logger: logger.Nop()}

	busy := db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.ErrorIs(t, busy, ErrStorageBusy)
	assert.ErrorIs(t, busy, ErrExecutingStatement)

	full := db.classify(sqlite3.Error{Code: sqlite3.ErrFull})
	assert.ErrorIs(t, full, ErrStorageUnavailable)

	// повторная классификация не оборачивает ошибку ещё раз
	assert.Same(t, full, db.classify(full))

	plain := errors.New("constraint failed")
	assert.Equal(t, plain, db.classify(plain))
	assert.NoError(t, db.classify(nil))
}

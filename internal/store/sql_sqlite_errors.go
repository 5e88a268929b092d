// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrorClassification is the result type returned by [ErrorClassificator.Classify]
// and [SQLiteErrorClassifier.Classify]. It indicates whether a failed database
// operation should be retried or abandoned.
type ErrorClassification int

const (
	// NonRetryable indicates that the failed operation should not be retried.
	// This is the default classification for unrecognised errors and
	// constraint violations.
	NonRetryable ErrorClassification = iota

	// Retryable indicates that the failed operation may succeed if attempted
	// again (another connection held the lock).
	Retryable

	// Unavailable indicates the device storage itself failed: disk full,
	// IO error, read-only or corrupt file.
	Unavailable
)

// SQLiteErrorClassifier implements [ErrorClassificator] for mattn/go-sqlite3.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier constructs a [SQLiteErrorClassifier] ready for use.
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Errors that are not
// sqlite3.Error values are [NonRetryable].
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return ClassifySQLiteError(sqliteErr)
	}

	return NonRetryable
}

// ClassifySQLiteError maps a sqlite3.Error to an [ErrorClassification] based
// on its primary result code.
// See https://www.sqlite.org/rescode.html for the full list.
//
// Retryable codes:
//   - SQLITE_BUSY, SQLITE_LOCKED
//
// Unavailable codes:
//   - SQLITE_FULL, SQLITE_IOERR, SQLITE_READONLY, SQLITE_CORRUPT,
//     SQLITE_NOTADB, SQLITE_CANTOPEN
//
// Any code not listed above is classified as [NonRetryable].
func ClassifySQLiteError(sqliteErr sqlite3.Error) ErrorClassification {
	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return Retryable

	case sqlite3.ErrFull,
		sqlite3.ErrIoErr,
		sqlite3.ErrReadonly,
		sqlite3.ErrCorrupt,
		sqlite3.ErrNotADB,
		sqlite3.ErrCantOpen:
		return Unavailable
	}

	return NonRetryable
}

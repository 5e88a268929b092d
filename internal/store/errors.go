// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a mirror row, outbox item or queue
	// action addressed by id does not exist.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrInvalidEntityType is returned when a collection outside the mirrored
	// set is addressed.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidFilterField is returned when a payload filter names a field
	// that is not a plain identifier.
	ErrInvalidFilterField = errors.New("invalid filter field")

	// ErrLocalIDRequired is returned when a local write is given a server id.
	ErrLocalIDRequired = errors.New("local write requires a local id")

	// ErrStorageBusy wraps SQLite busy/locked errors. The operation may
	// succeed if attempted again.
	ErrStorageBusy = errors.New("storage is busy")

	// ErrStorageUnavailable wraps disk-full and IO errors.
	ErrStorageUnavailable = errors.New("storage is unavailable")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a result
	// row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrDecodingPayload is returned when a stored payload is not valid JSON.
	ErrDecodingPayload = errors.New("failed to decode payload")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// localIDPrefix marks the canonical string form of a client-minted identity.
// Server-issued identifiers are never allowed to carry it.
const localIDPrefix = "local:"

// ErrInvalidID is returned when an identifier cannot be parsed or is empty.
var ErrInvalidID = errors.New("invalid identifier")

type idKind uint8

const (
	idKindNone idKind = iota
	idKindRemote
	idKindLocal
)

// ID identifies a mirrored entity. It is either Local (a temporary identity
// minted on this device while offline) or Remote (assigned by the server).
//
// Call sites must branch on [ID.Local] / [ID.Remote] to get at the raw value,
// so a temporary identity can't leak into a request that expects a server id.
type ID struct {
	kind  idKind
	value string
}

// LocalID wraps a client-minted temporary identity.
func LocalID(value string) ID {
	return ID{kind: idKindLocal, value: value}
}

// RemoteID wraps a server-issued identity.
func RemoteID(value string) ID {
	return ID{kind: idKindRemote, value: value}
}

// NewLocalID mints a fresh temporary identity (UUIDv7, so temp ids created on
// the same device sort by creation time).
func NewLocalID() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		return LocalID(uuid.NewString())
	}
	return LocalID(v7.String())
}

// ParseID is the inverse of [ID.String].
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, ErrInvalidID
	}
	if v, ok := strings.CutPrefix(s, localIDPrefix); ok {
		if v == "" {
			return ID{}, fmt.Errorf("%w: empty local id", ErrInvalidID)
		}
		return LocalID(v), nil
	}
	return RemoteID(s), nil
}

// IsZero reports whether id was never set.
func (id ID) IsZero() bool { return id.kind == idKindNone || id.value == "" }

// IsLocal reports whether id is a temporary client identity.
func (id ID) IsLocal() bool { return id.kind == idKindLocal }

// IsRemote reports whether id was issued by the server.
func (id ID) IsRemote() bool { return id.kind == idKindRemote }

// Local returns the raw temporary value when id is local.
func (id ID) Local() (string, bool) {
	if id.kind != idKindLocal {
		return "", false
	}
	return id.value, true
}

// Remote returns the raw server value when id is remote.
func (id ID) Remote() (string, bool) {
	if id.kind != idKindRemote {
		return "", false
	}
	return id.value, true
}

// String returns the canonical form: remote ids verbatim, local ids with the
// "local:" prefix. This is the form stored in SQLite and sent over JSON.
func (id ID) String() string {
	switch id.kind {
	case idKindLocal:
		return localIDPrefix + id.value
	case idKindRemote:
		return id.value
	default:
		return ""
	}
}

// MarshalJSON implements [json.Marshaler].
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON implements [json.Unmarshaler]. Numeric server ids are
// accepted and kept in their decimal form.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ID{}
		return nil
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strings.TrimSpace(string(b))
	default:
		return fmt.Errorf("%w: unsupported json value %s", ErrInvalidID, string(b))
	}

	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements [driver.Valuer].
func (id ID) Value() (driver.Value, error) {
	if id.IsZero() {
		return nil, nil
	}
	return id.String(), nil
}

// Scan implements [sql.Scanner].
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ID{}
		return nil
	case string:
		parsed, err := ParseID(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		return id.Scan(string(v))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidID, src)
	}
}

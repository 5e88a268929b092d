// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// ErrUnknownEntityType is returned for an entity type outside the closed set.
var ErrUnknownEntityType = errors.New("unknown entity type")

// EntityType names a mirrored server collection.
type EntityType string

const (
	// EntityPatients is the patient registry.
	EntityPatients EntityType = "patients"
	// EntityNextOfKin holds next-of-kin contacts attached to patients.
	EntityNextOfKin EntityType = "next_of_kin"
	// EntityReports holds clinical reports (read-only in this subsystem).
	EntityReports EntityType = "reports"
	// EntityQueue is the visit queue.
	EntityQueue EntityType = "queue"
)

// EntityTypes lists every mirrored collection.
var EntityTypes = []EntityType{EntityPatients, EntityNextOfKin, EntityReports, EntityQueue}

// ParseEntityType validates s against the closed set of entity types.
func ParseEntityType(s string) (EntityType, error) {
	for _, t := range EntityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
}

// Valid reports whether e is one of the mirrored collections.
func (e EntityType) Valid() bool {
	_, err := ParseEntityType(string(e))
	return err == nil
}

// Table returns the cache table backing the collection.
func (e EntityType) Table() string {
	return string(e) + "_cache"
}

// Replaceable reports whether the collection tolerates wholesale replacement
// by a fresh server fetch. Only read-mostly collections do.
func (e EntityType) Replaceable() bool {
	switch e {
	case EntityPatients, EntityNextOfKin, EntityReports:
		return true
	default:
		return false
	}
}

// Endpoint is the server collection path used for full fetches.
func (e EntityType) Endpoint() string {
	switch e {
	case EntityNextOfKin:
		return "/api/next-of-kin"
	default:
		return "/api/" + string(e)
	}
}

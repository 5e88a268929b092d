// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// CollectionResponse is the local API answer to a mirror read.
type CollectionResponse struct {
	EntityType EntityType     `json:"entity_type"`
	Records    []MirrorRecord `json:"records"`

	// Length is len(Records).
	Length int `json:"length"`
}

// QueueActionRequest is the body of POST /api/queue/{id}/actions.
type QueueActionRequest struct {
	Action    string `json:"action"`
	Performer string `json:"performer,omitempty"`
}

// RetryResponse reports how many dead-lettered items went back in line.
type RetryResponse struct {
	Requeued int `json:"requeued"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"
)

// Patient is the cached patient registry entry.
type Patient struct {
	ID          ID         `json:"id"`
	FirstName   string     `json:"first_name"`
	MiddleName  string     `json:"middle_name,omitempty"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// FullName joins the non-empty name parts.
func (p Patient) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// NextOfKin is a contact person attached to a patient.
type NextOfKin struct {
	ID           ID     `json:"id"`
	PatientID    string `json:"patient_id"`
	FullName     string `json:"full_name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone,omitempty"`
}

// Report is a clinical report cached for offline viewing.
type Report struct {
	ID        ID         `json:"id"`
	PatientID string     `json:"patient_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// QueueStatus is the visit-queue state of an entry.
type QueueStatus string

const (
	QueueWaiting QueueStatus = "waiting"
	QueueCalled  QueueStatus = "called"
	QueueSeen    QueueStatus = "seen"
	QueueRemoved QueueStatus = "removed"
)

// QueueEntry is one patient waiting in the visit queue. Entries are
// self-describing so they can be rendered while offline.
type QueueEntry struct {
	ID        ID          `json:"id"`
	PatientID string      `json:"patient_id"`
	FullName  string      `json:"full_name"`
	Reason    string      `json:"reason"`
	Status    QueueStatus `json:"status"`
	QueuedBy  string      `json:"queued_by"`
	CheckInAt time.Time   `json:"check_in_at"`
	UpdatedBy string      `json:"updated_by,omitempty"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// AddToQueueRequest is what a receptionist submits to queue a patient.
type AddToQueueRequest struct {
	PatientID string `json:"patient_id"`
	Reason    string `json:"reason"`
	Performer string `json:"performer"`
}

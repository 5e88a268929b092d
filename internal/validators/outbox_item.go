// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-clinic-sync/models"
)

// Field names accepted by [OutboxItemValidator.Validate].
const (
	FieldMethod     = "method"
	FieldEndpoint   = "endpoint"
	FieldEntityType = "entity_type"
	FieldOperation  = "operation"
	FieldEntityID   = "entity_id"
	FieldBody       = "body"
	FieldPriority   = "priority"
)

var allOutboxItemFields = []string{
	FieldMethod,
	FieldEndpoint,
	FieldEntityType,
	FieldOperation,
	FieldEntityID,
	FieldBody,
	FieldPriority,
}

// OutboxItemValidator checks that an outbox item can be sent as-is.
type OutboxItemValidator struct{}

func NewOutboxItemValidator() Validator {
	return &OutboxItemValidator{}
}

// Validate validates a [models.OutboxItem]. Without fields every field is
// checked and all violations are returned joined.
func (v *OutboxItemValidator) Validate(_ context.Context, obj any, fields ...string) error {
	var item models.OutboxItem
	switch value := obj.(type) {
	case models.OutboxItem:
		item = value
	case *models.OutboxItem:
		if value == nil {
			return ErrUnsupportedType
		}
		item = *value
	default:
		return ErrUnsupportedType
	}

	if len(fields) == 0 {
		fields = allOutboxItemFields
	}

	var errs []error
	for _, field := range fields {
		if err := v.validateField(item, field); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *OutboxItemValidator) validateField(item models.OutboxItem, field string) error {
	switch field {
	case FieldMethod:
		switch item.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			return nil
		}
		return fmt.Errorf("%w: %q", ErrInvalidMethod, item.Method)

	case FieldEndpoint:
		if !strings.HasPrefix(item.Endpoint, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidEndpoint, item.Endpoint)
		}
		return nil

	case FieldEntityType:
		if !item.EntityType.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidEntityType, item.EntityType)
		}
		return nil

	case FieldOperation:
		switch item.Operation {
		case models.OpCreate, models.OpUpdate, models.OpDelete:
			return nil
		}
		return fmt.Errorf("%w: %q", ErrInvalidOperation, item.Operation)

	case FieldEntityID:
		if item.Operation != models.OpCreate && item.EntityID.IsZero() {
			return ErrMissingEntityID
		}
		return nil

	case FieldBody:
		if len(item.Body) > 0 && !json.Valid(item.Body) {
			return ErrInvalidBody
		}
		return nil

	case FieldPriority:
		if !item.Priority.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidPriority, item.Priority)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

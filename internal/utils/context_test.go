// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestPerformerCtxKey(t *testing.T) {
	if PerformerCtxKey.String() != "performer" {
		t.Errorf("expected 'performer', got '%s'", PerformerCtxKey.String())
	}
}

func TestGetPerformerFromContext_Success(t *testing.T) {
	ctx := context.WithValue(context.Background(), PerformerCtxKey, "nurse A")

	performer, ok := GetPerformerFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if performer != "nurse A" {
		t.Errorf("expected performer='nurse A', got %q", performer)
	}
}

func TestGetPerformerFromContext_Missing(t *testing.T) {
	performer, ok := GetPerformerFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if performer != "" {
		t.Errorf("expected empty performer, got %q", performer)
	}
}

func TestGetPerformerFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), PerformerCtxKey, 42)

	if _, ok := GetPerformerFromContext(ctx); ok {
		t.Fatal("expected ok=false for wrong type, got true")
	}
}

func TestGetPerformerFromContext_Empty(t *testing.T) {
	ctx := context.WithValue(context.Background(), PerformerCtxKey, "")

	if _, ok := GetPerformerFromContext(ctx); ok {
		t.Fatal("expected ok=false for empty performer, got true")
	}
}

func TestGetPerformerFromContext_DifferentKey(t *testing.T) {
	otherKey := contextKey("otherKey")
	ctx := context.WithValue(context.Background(), otherKey, "nurse A")

	if _, ok := GetPerformerFromContext(ctx); ok {
		t.Fatal("expected ok=false for different key, got true")
	}
}

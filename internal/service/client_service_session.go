// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
)

// TokenHolder is the part of the server adapter that owns the credentials.
type TokenHolder interface {
	SetToken(token string)
}

type sessionTerminator struct {
	tokens TokenHolder
	cancel context.CancelCauseFunc
	once   sync.Once

	logger *logger.Logger
}

// NewSessionTerminator returns a terminator that clears the bearer token and
// cancels the agent through cancel, so the shell restarts it after a fresh
// login. cancel may be nil.
func NewSessionTerminator(tokens TokenHolder, cancel context.CancelCauseFunc, logger *logger.Logger) SessionTerminator {
	return &sessionTerminator{tokens: tokens, cancel: cancel, logger: logger}
}

// Terminate implements [SessionTerminator]. Only the first call has an
// effect.
func (t *sessionTerminator) Terminate(ctx context.Context, reason error) {
	t.once.Do(func() {
		t.tokens.SetToken("")

		logger.FromContext(ctx).Warn().
			Err(reason).
			Str("func", "sessionTerminator.Terminate").
			Msg("credentials cleared, re-authentication required")

		if t.cancel != nil {
			t.cancel(fmt.Errorf("%w: %w", ErrSessionRevoked, reason))
		}
	})
}

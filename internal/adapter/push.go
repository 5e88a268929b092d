// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/models"
)

const (
	pushBaseDelay = time.Second
	pushMaxDelay  = time.Minute
	pushReadLimit = 1 << 20
)

// PushHandler consumes update events read from the real-time channel.
type PushHandler interface {
	ApplyRemote(ctx context.Context, event models.PushEvent) error
}

// ConnectivitySink is told when the real-time channel connects or drops.
type ConnectivitySink interface {
	SetOnline(ctx context.Context, online bool)
}

// PushListener subscribes to the hospital's websocket update channel and
// forwards every event to a [PushHandler]. The connection is re-established
// with capped exponential backoff until Stop is called.
type PushListener struct {
	url     string
	tokens  interface{ Token() string }
	handler PushHandler
	sink    ConnectivitySink

	baseDelay time.Duration
	maxDelay  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewPushListener builds a listener for url. tokens supplies the bearer token
// for each dial; sink may be nil.
func NewPushListener(url string, tokens interface{ Token() string }, handler PushHandler, sink ConnectivitySink, log *logger.Logger) *PushListener {
	return &PushListener{
		url:       url,
		tokens:    tokens,
		handler:   handler,
		sink:      sink,
		baseDelay: pushBaseDelay,
		maxDelay:  pushMaxDelay,
		logger:    log,
	}
}

// Run starts the listener in the background. A running listener is stopped
// first.
func (p *PushListener) Run(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	listenCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.listen(listenCtx)
	}()
}

// Stop closes the connection and waits for the listener goroutine to exit.
func (p *PushListener) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *PushListener) listen(ctx context.Context) {
	backoff := p.newBackoff()

	for {
		connected, err := p.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = p.newBackoff()
			p.setOnline(ctx, false)
		}

		delay, stop := backoff.Next()
		if stop {
			delay = p.maxDelay
		}

		p.logger.Debug().Err(err).
			Str("func", "PushListener.listen").
			Dur("retry_in", delay).
			Msg("push channel disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// session dials once and reads until the connection fails. connected reports
// whether the dial succeeded.
func (p *PushListener) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if token := p.tokens.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.Dial(ctx, p.url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return false, fmt.Errorf("%w: dial push channel: %w", ErrNetwork, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(pushReadLimit)

	p.logger.Info().Str("url", p.url).Msg("push channel connected")
	p.setOnline(ctx, true)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return true, err
		}
		if typ != websocket.MessageText {
			continue
		}

		var event models.PushEvent
		if err = json.Unmarshal(data, &event); err != nil {
			p.logger.Warn().Err(err).
				Str("func", "PushListener.session").
				Msg("skipping malformed push frame")
			continue
		}

		if err = p.handler.ApplyRemote(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Err(err).
				Str("func", "PushListener.session").
				Str("entity_type", string(event.EntityType)).
				Str("entity_id", event.ID.String()).
				Msg("push event not applied")
		}
	}
}

func (p *PushListener) setOnline(ctx context.Context, online bool) {
	if p.sink != nil {
		p.sink.SetOnline(ctx, online)
	}
}

func (p *PushListener) newBackoff() retry.Backoff {
	b := retry.NewExponential(p.baseDelay)
	b = retry.WithJitterPercent(20, b)
	return retry.WithCappedDuration(p.maxDelay, b)
}

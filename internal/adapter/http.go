// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-clinic-sync/internal/config"
	"github.com/MKhiriev/go-clinic-sync/internal/logger"
	"github.com/MKhiriev/go-clinic-sync/internal/utils"
	"github.com/MKhiriev/go-clinic-sync/models"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerHash           = "HashSHA256"

	healthEndpoint = "/api/health"
	queueEndpoint  = "/api/queue"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	hashKey string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress,
// configures the underlying HTTP client with the resolved base URL and request
// timeout, seeds the bearer token from adapterCfg.Token and initialises the
// shared HMAC hasher pool used for the HashSHA256 header.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.Adapter, appCfg config.App, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	a := &httpServerAdapter{client: client, hashKey: appCfg.HashKey, logger: logger}
	a.SetToken(adapterCfg.Token)
	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter].
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Ping implements [ServerAdapter]. Any answer below 500 counts as reachable.
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(healthEndpoint)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrNetwork, err)
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		return mapHTTPError(resp)
	}

	return nil
}

// Send implements [ServerAdapter].
func (h *httpServerAdapter) Send(ctx context.Context, item models.OutboxItem) (models.SendResult, error) {
	resp, err := h.do(ctx, item.Method, item.Endpoint, item.Body, item.ID)
	if err != nil {
		logger.FromContext(ctx).Debug().
			Err(err).
			Str("func", "httpServerAdapter.Send").
			Str("outbox_id", item.ID).
			Msg("outbox item not delivered")
		return models.SendResult{}, err
	}

	result := models.SendResult{StatusCode: resp.StatusCode()}
	if body := bytes.TrimSpace(resp.Body()); len(body) > 0 {
		result.Body = json.RawMessage(body)
	}

	return result, mapHTTPError(resp)
}

// FetchCollection implements [ServerAdapter]. The response may be a bare JSON
// array or an object wrapping it under "data".
func (h *httpServerAdapter) FetchCollection(ctx context.Context, entity models.EntityType) ([]json.RawMessage, error) {
	resp, err := h.do(ctx, http.MethodGet, entity.Endpoint(), nil, "")
	if err != nil {
		return nil, err
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	records, err := decodeCollection(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %s collection: %w", ErrInvalidResponse, entity, err)
	}

	return records, nil
}

// CreateQueueEntry implements [ServerAdapter].
func (h *httpServerAdapter) CreateQueueEntry(ctx context.Context, body models.QueueCreateBody, idempotencyKey string) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode queue entry: %w", err)
	}

	return h.exchange(ctx, http.MethodPost, queueEndpoint, payload, idempotencyKey)
}

// UpdateQueueStatus implements [ServerAdapter].
func (h *httpServerAdapter) UpdateQueueStatus(ctx context.Context, queueID string, body models.QueueStatusBody, idempotencyKey string) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode queue status: %w", err)
	}

	method, endpoint := QueueStatusRequest(queueID, body.Status)
	return h.exchange(ctx, method, endpoint, payload, idempotencyKey)
}

// QueueStatusRequest returns the method and endpoint used to move queueID to
// status: removal deletes the entry, every other status is a PUT.
func QueueStatusRequest(queueID string, status models.QueueStatus) (string, string) {
	path := queueEndpoint + "/" + url.PathEscape(queueID)
	if status == models.QueueRemoved {
		return http.MethodDelete, path
	}
	return http.MethodPut, path + "/status"
}

func (h *httpServerAdapter) exchange(ctx context.Context, method, endpoint string, body []byte, idempotencyKey string) (json.RawMessage, error) {
	resp, err := h.do(ctx, method, endpoint, body, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(bytes.TrimSpace(resp.Body())), nil
}

func (h *httpServerAdapter) do(ctx context.Context, method, endpoint string, body []byte, idempotencyKey string) (*resty.Response, error) {
	req := h.authedRequest(ctx).SetHeader("Accept", "application/json")

	if len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
		if h.hashKey != "" {
			req.SetHeader(headerHash, utils.Sign(body))
		}
	}
	if idempotencyKey != "" {
		req.SetHeader(headerIdempotencyKey, idempotencyKey)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, endpoint, err)
	}

	return resp, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func decodeCollection(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []json.RawMessage{}, nil
	}

	var records []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data == nil {
		return []json.RawMessage{}, nil
	}

	return wrapped.Data, nil
}

// DecodeRecord extracts the echoed record from a response body, unwrapping
// {"data": {...}} when present, and returns it with its "id". ok is false
// when the body carries no record with an id.
func DecodeRecord(body []byte) (record json.RawMessage, id models.ID, ok bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, models.ID{}, false
	}

	var probe struct {
		ID   *models.ID      `json:"id"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, models.ID{}, false
	}

	if probe.ID == nil && len(probe.Data) > 0 {
		return DecodeRecord(probe.Data)
	}
	if probe.ID == nil || !probe.ID.IsRemote() {
		return nil, models.ID{}, false
	}

	return json.RawMessage(body), *probe.ID, true
}

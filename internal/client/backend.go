package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/polkiloo/webpot/internal/server/http/dto"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 4 << 20
)

// Backend exchanges action payloads with the webpot server. Implementations
// decode a success envelope into out and return StatusError otherwise.
type Backend interface {
	Post(ctx context.Context, token string, payload any, out any) error
	Get(ctx context.Context, token string, query url.Values, out any) error
}

// HTTPBackend talks to the action endpoint over HTTP.
type HTTPBackend struct {
	endpoint string
	client   *http.Client
}

// NewHTTPBackend builds backend for endpoint such as https://webpot.in/exec.
// A nil client gets a 10 second timeout.
func NewHTTPBackend(endpoint string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPBackend{endpoint: strings.TrimRight(endpoint, "/"), client: client}
}

func (b *HTTPBackend) Post(ctx context.Context, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, token, out)
}

func (b *HTTPBackend) Get(ctx context.Context, token string, query url.Values, out any) error {
	target := b.endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return b.do(req, token, out)
}

func (b *HTTPBackend) do(req *http.Request, token string, out any) error {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}
	return decodeEnvelope(raw, out)
}

// decodeEnvelope interprets the status field regardless of HTTP code.
func decodeEnvelope(raw []byte, out any) error {
	var envelope dto.Response
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Status == "" {
		return fmt.Errorf("%w: unexpected response", ErrNetwork)
	}
	if envelope.Status != dto.StatusSuccess {
		return &StatusError{Status: envelope.Status, Message: envelope.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}

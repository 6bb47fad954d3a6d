// Package client talks to the lore-keeper HTTP API. It implements the persistence gateway
// and the AI collaborator so the CLI can drive the same store and orchestrators as the server.
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

	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/orchestrator"
	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

var (
	_ gateway.Gateway           = (*Client)(nil)
	_ orchestrator.Collaborator = (*Client)(nil)
)

// Client handles communication with the lore-keeper API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// apiError is the error body every non-2xx API response carries
type apiError struct {
	Error string              `json:"error"`
	Kind  apperrors.ErrorType `json:"kind"`
}

// New creates a client for baseURL. token is sent unless the caller carries its own.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Get(),
	}
}

// Health returns the server version
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := c.do(ctx, gateway.Caller{}, "health", http.MethodGet, "/api/health", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

// do sends one request and decodes a 2xx body into out (if non-nil).
// There are no retries; every failure surfaces as a typed error.
func (c *Client) do(ctx context.Context, caller gateway.Caller, op, method, path string, query url.Values, body, out any) error {
	raw, err := c.send(ctx, caller, op, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("Failed to decode API response",
			zap.String("operation", op),
			zap.Error(err),
			zap.String("response_body", string(raw)),
		)
		return apperrors.NewMalformedResponse(op, "undecodable body", err)
	}
	return nil
}

// send returns the raw 2xx body
func (c *Client) send(ctx context.Context, caller gateway.Caller, op, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.WrapValidation("request", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, apperrors.NewTransport(op, 0, fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.tokenFor(caller); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("Calling lore-keeper API",
		zap.String("operation", op),
		zap.String("method", method),
		zap.String("url", endpoint),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransport(op, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransport(op, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("lore-keeper API error",
			zap.String("operation", op),
			zap.Int("status_code", resp.StatusCode),
			zap.String("kind", string(apiErr.Kind)),
			zap.String("error", apiErr.Error),
		)
		return nil, apperrors.FromResponse(op, resp.StatusCode, apiErr.Kind, apiErr.Error)
	}

	return respBody, nil
}

func (c *Client) tokenFor(caller gateway.Caller) string {
	if caller.Token != "" {
		return caller.Token
	}
	return c.token
}

func campaignQuery(campaignID string) url.Values {
	return url.Values{"campaign_id": []string{campaignID}}
}

func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}

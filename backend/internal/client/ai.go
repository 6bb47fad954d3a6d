package client

import (
	"context"
	"encoding/json"
	"net/http"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/orchestrator"
	apperrors "lore-keeper/backend/pkg/errors"
)

// DeepDive posts the fragment and returns the answer untouched; the orchestrator checks its shape
func (c *Client) DeepDive(ctx context.Context, caller gateway.Caller, fragment orchestrator.Fragment) (json.RawMessage, error) {
	return c.rawJSON(ctx, caller, "deep dive", "/api/ai/deep-dive", map[string]any{"input": fragment})
}

// ConsistencyCheck posts the proposed text for the campaign and returns the raw verdict
func (c *Client) ConsistencyCheck(ctx context.Context, caller gateway.Caller, campaignID, newContent string) (json.RawMessage, error) {
	return c.rawJSON(ctx, caller, "consistency check", "/api/ai/consistency-check", map[string]any{
		"campaign_id": campaignID,
		"new_content": newContent,
	})
}

func (c *Client) rawJSON(ctx context.Context, caller gateway.Caller, op, path string, body any) (json.RawMessage, error) {
	raw, err := c.send(ctx, caller, op, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, apperrors.NewMalformedResponse(op, "body is not JSON", nil)
	}
	return json.RawMessage(raw), nil
}

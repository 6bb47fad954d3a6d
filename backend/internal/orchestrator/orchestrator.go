// Package orchestrator drives the two AI-assisted workflows: lore consistency checks and
// character deep-dives.
//
// Both orchestrators validate input before any collaborator call and validate the
// collaborator's answer before returning it. A failure is always an error; it is never
// turned into a "consistent" verdict or an empty suggestion list.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"lore-keeper/backend/internal/gateway"
	apperrors "lore-keeper/backend/pkg/errors"
)

// Collaborator is the AI service behind a fixed request/response contract. It returns the
// raw response body; shape checks belong to the orchestrators.
type Collaborator interface {
	// DeepDive answers {"suggestions": [string]}
	DeepDive(ctx context.Context, caller gateway.Caller, fragment Fragment) (json.RawMessage, error)
	// ConsistencyCheck answers {"is_consistent": bool, "warnings": [string]}
	ConsistencyCheck(ctx context.Context, caller gateway.Caller, campaignID, newContent string) (json.RawMessage, error)
}

// asTransport keeps typed collaborator errors and wraps anything else as a TransportError
func asTransport(operation string, err error) error {
	if apperrors.Kind(err) != "" {
		return err
	}
	return apperrors.NewTransport(operation, 0, err)
}

// decodeObject parses a collaborator body into its top-level fields
func decodeObject(operation string, raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.NewMalformedResponse(operation, "body is not a JSON object", err)
	}
	if fields == nil {
		return nil, apperrors.NewMalformedResponse(operation, "body is null", nil)
	}
	return fields, nil
}

// decodeStrings reads a JSON array whose every element is a string. Order and duplicates
// are kept.
func decodeStrings(operation, field string, raw json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, apperrors.NewMalformedResponse(operation, field+" is not an array", err)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '"' {
			return nil, apperrors.NewMalformedResponse(operation, fmt.Sprintf("%s[%d] is not a string", field, i), nil)
		}
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, apperrors.NewMalformedResponse(operation, fmt.Sprintf("%s[%d] is not a string", field, i), err)
		}
		out = append(out, s)
	}
	return out, nil
}

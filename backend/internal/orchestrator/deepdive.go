package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

const deepDiveOperation = "deep dive"

// Fragment is a sparse character description, e.g. {"name": "Aria", "class": "ranger"}
type Fragment map[string]any

// Validate checks that the fragment is a non-empty mapping of JSON-compatible values
func (f Fragment) Validate() error {
	if len(f) == 0 {
		return apperrors.NewValidation("fragment", "must contain at least one field")
	}
	if err := models.Attributes(f).Validate(); err != nil {
		return apperrors.WrapValidation("fragment", err)
	}
	return nil
}

// ParseFragment reads a fragment from its text form. Anything other than a single JSON
// object is a ValidationError.
func ParseFragment(raw string) (Fragment, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var f Fragment
	if err := dec.Decode(&f); err != nil {
		return nil, apperrors.WrapValidation("fragment", err)
	}
	if f == nil {
		return nil, apperrors.NewValidation("fragment", "must be a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperrors.NewValidation("fragment", "unexpected data after the JSON object")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// DeepDiveResult holds candidate expansions. They are suggestions only; promoting one
// into a character goes through the ordinary create/update path.
type DeepDiveResult struct {
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// DeepDiveExpander asks the collaborator to flesh out character fragments
type DeepDiveExpander struct {
	collaborator Collaborator
	logger       *zap.Logger
}

// NewDeepDiveExpander creates an expander that delegates to collaborator
func NewDeepDiveExpander(collaborator Collaborator) *DeepDiveExpander {
	return &DeepDiveExpander{
		collaborator: collaborator,
		logger:       logger.Get(),
	}
}

// Expand submits an already structured fragment
func (d *DeepDiveExpander) Expand(ctx context.Context, caller gateway.Caller, fragment Fragment) (*DeepDiveResult, error) {
	if err := fragment.Validate(); err != nil {
		return nil, err
	}

	raw, err := d.collaborator.DeepDive(ctx, caller, fragment)
	if err != nil {
		d.logger.Error("Deep dive failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, asTransport(deepDiveOperation, err)
	}

	result, err := parseDeepDive(raw)
	if err != nil {
		d.logger.Warn("Deep dive returned a malformed response", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	d.logger.Debug("Deep dive complete",
		zap.String("user_id", caller.UserID),
		zap.Int("suggestions", len(result.Suggestions)),
	)
	return result, nil
}

// ExpandRaw parses raw as a fragment and expands it
func (d *DeepDiveExpander) ExpandRaw(ctx context.Context, caller gateway.Caller, raw string) (*DeepDiveResult, error) {
	fragment, err := ParseFragment(raw)
	if err != nil {
		return nil, err
	}
	return d.Expand(ctx, caller, fragment)
}

// parseDeepDive requires a suggestions array of strings; an empty array is a valid answer
func parseDeepDive(raw []byte) (*DeepDiveResult, error) {
	fields, err := decodeObject(deepDiveOperation, raw)
	if err != nil {
		return nil, err
	}
	s, ok := fields["suggestions"]
	if !ok {
		return nil, apperrors.NewMalformedResponse(deepDiveOperation, "suggestions is missing", nil)
	}
	suggestions, err := decodeStrings(deepDiveOperation, "suggestions", s)
	if err != nil {
		return nil, err
	}
	return &DeepDiveResult{Suggestions: suggestions}, nil
}

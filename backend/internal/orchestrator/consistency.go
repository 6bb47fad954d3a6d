package orchestrator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

const consistencyOperation = "consistency check"

// ConsistencyResult is the collaborator's verdict on a proposed piece of lore
type ConsistencyResult struct {
	IsConsistent bool     `json:"is_consistent" yaml:"is_consistent"`
	Warnings     []string `json:"warnings" yaml:"warnings"`
}

// ConsistencyChecker checks new lore against a campaign's consistency corpus
type ConsistencyChecker struct {
	collaborator Collaborator
	logger       *zap.Logger
}

// NewConsistencyChecker creates a checker that delegates to collaborator
func NewConsistencyChecker(collaborator Collaborator) *ConsistencyChecker {
	return &ConsistencyChecker{
		collaborator: collaborator,
		logger:       logger.Get(),
	}
}

// Check submits proposedText for campaignID. Warnings come back in the collaborator's order,
// duplicates included.
func (c *ConsistencyChecker) Check(ctx context.Context, caller gateway.Caller, campaignID, proposedText string) (*ConsistencyResult, error) {
	if strings.TrimSpace(campaignID) == "" {
		return nil, apperrors.NewValidation("campaign_id", "is required")
	}
	if strings.TrimSpace(proposedText) == "" {
		return nil, apperrors.NewValidation("new_content", "cannot be blank")
	}

	raw, err := c.collaborator.ConsistencyCheck(ctx, caller, campaignID, proposedText)
	if err != nil {
		c.logger.Error("Consistency check failed",
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
		return nil, asTransport(consistencyOperation, err)
	}

	result, err := parseConsistency(raw)
	if err != nil {
		c.logger.Warn("Consistency check returned a malformed response",
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("Consistency check complete",
		zap.String("campaign_id", campaignID),
		zap.Bool("is_consistent", result.IsConsistent),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// parseConsistency requires a boolean is_consistent. An absent warnings field reads as no
// warnings; anything other than an array of strings is malformed.
func parseConsistency(raw []byte) (*ConsistencyResult, error) {
	fields, err := decodeObject(consistencyOperation, raw)
	if err != nil {
		return nil, err
	}

	verdict, ok := fields["is_consistent"]
	if !ok {
		return nil, apperrors.NewMalformedResponse(consistencyOperation, "is_consistent is missing", nil)
	}
	result := &ConsistencyResult{Warnings: []string{}}
	switch strings.TrimSpace(string(verdict)) {
	case "true":
		result.IsConsistent = true
	case "false":
		result.IsConsistent = false
	default:
		return nil, apperrors.NewMalformedResponse(consistencyOperation, "is_consistent is not a boolean", nil)
	}

	if w, ok := fields["warnings"]; ok {
		warnings, err := decodeStrings(consistencyOperation, "warnings", w)
		if err != nil {
			return nil, err
		}
		result.Warnings = warnings
	}
	return result, nil
}

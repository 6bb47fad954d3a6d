// Package assistant is the server-side AI collaborator. It builds prompts from the
// campaign's lore corpus and returns the model's JSON answer untouched apart from
// light normalisation; the orchestrators validate its shape.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"lore-keeper/backend/internal/constants"
	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/orchestrator"
	"lore-keeper/backend/pkg/logger"
)

var _ orchestrator.Collaborator = (*Assistant)(nil)

// Completer is the LLM call the assistant needs
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userMsg string) (json.RawMessage, error)
}

// Assistant answers deep-dive and consistency requests with an LLM
type Assistant struct {
	llm    Completer
	lore   gateway.LoreEntries
	logger *zap.Logger
}

// New creates an assistant reading the consistency corpus from lore
func New(llm Completer, lore gateway.LoreEntries) *Assistant {
	return &Assistant{
		llm:    llm,
		lore:   lore,
		logger: logger.Get(),
	}
}

// DeepDive asks the model for suggestions expanding fragment
func (a *Assistant) DeepDive(ctx context.Context, caller gateway.Caller, fragment orchestrator.Fragment) (json.RawMessage, error) {
	prompt, err := buildDeepDivePrompt(fragment)
	if err != nil {
		return nil, err
	}

	raw, err := a.llm.CompleteJSON(ctx, deepDiveSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	// Models sometimes answer with the bare list
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		wrapped, err := json.Marshal(map[string]json.RawMessage{"suggestions": trimmed})
		if err != nil {
			return nil, err
		}
		raw = wrapped
	}
	return raw, nil
}

// ConsistencyCheck loads the campaign's lore through the gateway and asks the model
// whether newContent contradicts it. A foreign campaign fails with NotFound before any
// model call. When the corpus does not fit the prompt the verdict is forced to
// inconsistent and a warning lists how many entries went unchecked.
func (a *Assistant) ConsistencyCheck(ctx context.Context, caller gateway.Caller, campaignID, newContent string) (json.RawMessage, error) {
	corpus, err := a.lore.ListLoreEntries(ctx, caller, campaignID)
	if err != nil {
		return nil, err
	}

	prompt, included := buildConsistencyPrompt(corpus, newContent)

	a.logger.Debug("Running consistency check",
		zap.String("campaign_id", campaignID),
		zap.Int("corpus_entries", included),
	)
	raw, err := a.llm.CompleteJSON(ctx, consistencySystemPrompt, prompt)
	if err != nil || included == len(corpus) {
		return raw, err
	}

	logger.ForCampaign(campaignID, caller.UserID).Warn("Lore corpus truncated for consistency check",
		zap.Int("entries", len(corpus)),
		zap.Int("included", included),
	)
	return markIncomplete(raw, len(corpus)-included, len(corpus)), nil
}

// markIncomplete turns a verdict over a truncated corpus into an inconsistent one with a
// warning naming the unchecked entries. Answers that are not a well-formed verdict are
// returned as is so the orchestrator rejects them.
func markIncomplete(raw json.RawMessage, skipped, total int) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return raw
	}
	var verdict bool
	if err := json.Unmarshal(fields["is_consistent"], &verdict); err != nil {
		return raw
	}
	var warnings []json.RawMessage
	if w, ok := fields["warnings"]; ok {
		if err := json.Unmarshal(w, &warnings); err != nil {
			return raw
		}
	}

	note, _ := json.Marshal(fmt.Sprintf(
		"%d of %d lore entries were not checked: the corpus exceeds %d characters",
		skipped, total, constants.MaxCorpusChars))
	warnings = append(warnings, note)

	fields["is_consistent"] = json.RawMessage("false")
	encoded, err := json.Marshal(warnings)
	if err != nil {
		return raw
	}
	fields["warnings"] = encoded
	out, err := json.Marshal(fields)
	if err != nil {
		return raw
	}
	return out
}

package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"lore-keeper/backend/internal/constants"
	"lore-keeper/backend/internal/models"
)

const deepDiveSystemPrompt = `You are a creative assistant for tabletop RPG game masters and fiction writers.
You expand sparse character notes into background, personality and story hooks.
Answer with JSON only, no prose and no code fences.`

const consistencySystemPrompt = `You are a consistency checker for world-building.
You compare new content against a campaign's existing lore and identify contradictions.
Answer with JSON only, no prose and no code fences.`

// buildDeepDivePrompt renders the user message for a deep dive
func buildDeepDivePrompt(fragment map[string]any) (string, error) {
	fragmentJSON, err := json.MarshalIndent(fragment, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal fragment: %w", err)
	}

	return fmt.Sprintf(`Given the following character information, generate %d-%d detailed suggestions to expand their background, personality, and story hooks.

## Character
%s

Respond in this JSON format: {"suggestions": ["suggestion1", "suggestion2", ...]}`,
		constants.MinDeepDiveSuggestions, constants.MaxDeepDiveSuggestions, string(fragmentJSON)), nil
}

// buildConsistencyPrompt renders the user message for a consistency check. Entries are
// added oldest first until the corpus cap is reached.
func buildConsistencyPrompt(corpus []models.LoreEntry, newContent string) (prompt string, included int) {
	var lore strings.Builder
	for _, entry := range corpus {
		block := formatLoreEntry(entry)
		if lore.Len()+len(block) > constants.MaxCorpusChars {
			break
		}
		lore.WriteString(block)
		included++
	}
	if included == 0 {
		lore.WriteString("(no existing lore)\n\n")
	}

	prompt = fmt.Sprintf(`Compare the new content against the existing lore and identify any contradictions.

## Existing Lore
%s## New Content
%s

Respond in this JSON format: {"is_consistent": true/false, "warnings": ["warning1", "warning2"]}`,
		lore.String(), newContent)
	return prompt, included
}

func formatLoreEntry(entry models.LoreEntry) string {
	var b strings.Builder
	b.WriteString("### ")
	b.WriteString(entry.Title)
	if entry.Category != "" {
		b.WriteString(" [")
		b.WriteString(entry.Category)
		b.WriteString("]")
	}
	b.WriteString("\n")
	b.WriteString(entry.Content)
	b.WriteString("\n\n")
	return b.String()
}

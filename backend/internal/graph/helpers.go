package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getBoolFromRecord(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

func getPropsFromRecord(record *neo4j.Record, key string) (map[string]any, bool) {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil, false
	}
	switch v := val.(type) {
	case neo4j.Node:
		return v.Props, true
	case neo4j.Relationship:
		return v.Props, true
	case map[string]any:
		return v, true
	}
	return nil, false
}

func getStringFromMap(m map[string]any, key, defaultValue string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

// getTimeFromMap reads a datetime property; the driver hands DateTime values over as time.Time
func getTimeFromMap(m map[string]any, key string) time.Time {
	val, ok := m[key]
	if !ok || val == nil {
		return time.Time{}
	}
	switch t := val.(type) {
	case time.Time:
		return t.UTC()
	case neo4j.LocalDateTime:
		return t.Time().UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// encodeAttributes serialises attributes for the string property
func encodeAttributes(attrs models.Attributes) (string, error) {
	if attrs == nil {
		attrs = models.Attributes{}
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", apperrors.WrapValidation("attributes", err)
	}
	return string(b), nil
}

// decodeAttributes keeps numbers as json.Number so integers survive the round trip
func decodeAttributes(raw string) (models.Attributes, error) {
	attrs := models.Attributes{}
	if raw == "" {
		return attrs, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// ============================================================================
// Record mapping
// ============================================================================

func campaignFromRecord(record *neo4j.Record, key string) (models.Campaign, error) {
	props, ok := getPropsFromRecord(record, key)
	if !ok {
		return models.Campaign{}, apperrors.NewMalformedResponse("neo4j", fmt.Sprintf("record has no %s node", key), nil)
	}
	return models.Campaign{
		ID:          getStringFromMap(props, "id", ""),
		UserID:      getStringFromMap(props, "user_id", ""),
		Title:       getStringFromMap(props, "title", ""),
		Description: getStringFromMap(props, "description", ""),
		CreatedAt:   getTimeFromMap(props, "created_at"),
		UpdatedAt:   getTimeFromMap(props, "updated_at"),
	}, nil
}

func characterFromRecord(record *neo4j.Record, key string) (models.Character, error) {
	props, ok := getPropsFromRecord(record, key)
	if !ok {
		return models.Character{}, apperrors.NewMalformedResponse("neo4j", fmt.Sprintf("record has no %s node", key), nil)
	}
	id := getStringFromMap(props, "id", "")
	attrs, err := decodeAttributes(getStringFromMap(props, "attributes", ""))
	if err != nil {
		return models.Character{}, apperrors.NewMalformedResponse("neo4j", fmt.Sprintf("character %s has unreadable attributes", id), err)
	}
	return models.Character{
		ID:         id,
		CampaignID: getStringFromMap(props, "campaign_id", ""),
		Name:       getStringFromMap(props, "name", ""),
		Role:       models.Role(getStringFromMap(props, "role", string(models.DefaultRole))),
		Attributes: attrs,
		Background: getStringFromMap(props, "background", ""),
		CreatedAt:  getTimeFromMap(props, "created_at"),
		UpdatedAt:  getTimeFromMap(props, "updated_at"),
	}, nil
}

// relationshipFromRecord expects the edge under key plus source_id and target_id columns
func relationshipFromRecord(record *neo4j.Record, key string) (models.Relationship, error) {
	props, ok := getPropsFromRecord(record, key)
	if !ok {
		return models.Relationship{}, apperrors.NewMalformedResponse("neo4j", fmt.Sprintf("record has no %s relationship", key), nil)
	}
	return models.Relationship{
		ID:                getStringFromMap(props, "id", ""),
		CampaignID:        getStringFromMap(props, "campaign_id", ""),
		SourceCharacterID: getStringFromRecord(record, "source_id"),
		TargetCharacterID: getStringFromRecord(record, "target_id"),
		RelationType:      getStringFromMap(props, "relation_type", ""),
		Description:       getStringFromMap(props, "description", ""),
		CreatedAt:         getTimeFromMap(props, "created_at"),
	}, nil
}

func loreEntryFromRecord(record *neo4j.Record, key string) (models.LoreEntry, error) {
	props, ok := getPropsFromRecord(record, key)
	if !ok {
		return models.LoreEntry{}, apperrors.NewMalformedResponse("neo4j", fmt.Sprintf("record has no %s node", key), nil)
	}
	return models.LoreEntry{
		ID:         getStringFromMap(props, "id", ""),
		CampaignID: getStringFromMap(props, "campaign_id", ""),
		Title:      getStringFromMap(props, "title", ""),
		Category:   getStringFromMap(props, "category", ""),
		Content:    getStringFromMap(props, "content", ""),
		CreatedAt:  getTimeFromMap(props, "created_at"),
		UpdatedAt:  getTimeFromMap(props, "updated_at"),
	}, nil
}

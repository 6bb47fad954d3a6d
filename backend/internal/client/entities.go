package client

import (
	"context"
	"net/http"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
)

// Campaigns

func (c *Client) ListCampaigns(ctx context.Context, caller gateway.Caller) ([]models.Campaign, error) {
	var out []models.Campaign
	if err := c.do(ctx, caller, "list campaigns", http.MethodGet, "/api/campaigns", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCampaign(ctx context.Context, caller gateway.Caller, id string) (*models.Campaign, error) {
	var out models.Campaign
	if err := c.do(ctx, caller, "campaign", http.MethodGet, idPath("/api/campaigns", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCampaign(ctx context.Context, caller gateway.Caller, in models.CampaignInput) (*models.Campaign, error) {
	var out models.Campaign
	if err := c.do(ctx, caller, "create campaign", http.MethodPost, "/api/campaigns", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCampaign(ctx context.Context, caller gateway.Caller, id string, in models.CampaignInput) (*models.Campaign, error) {
	var out models.Campaign
	if err := c.do(ctx, caller, "campaign", http.MethodPut, idPath("/api/campaigns", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCampaign(ctx context.Context, caller gateway.Caller, id string) error {
	return c.do(ctx, caller, "campaign", http.MethodDelete, idPath("/api/campaigns", id), nil, nil, nil)
}

// Characters

func (c *Client) ListCharacters(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.Character, error) {
	var out []models.Character
	if err := c.do(ctx, caller, "campaign", http.MethodGet, "/api/characters", campaignQuery(campaignID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCharacter(ctx context.Context, caller gateway.Caller, id string) (*models.Character, error) {
	var out models.Character
	if err := c.do(ctx, caller, "character", http.MethodGet, idPath("/api/characters", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCharacter(ctx context.Context, caller gateway.Caller, in models.CharacterInput) (*models.Character, error) {
	var out models.Character
	if err := c.do(ctx, caller, "create character", http.MethodPost, "/api/characters", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCharacter(ctx context.Context, caller gateway.Caller, id string, in models.CharacterInput) (*models.Character, error) {
	var out models.Character
	if err := c.do(ctx, caller, "character", http.MethodPut, idPath("/api/characters", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCharacter(ctx context.Context, caller gateway.Caller, id string) error {
	return c.do(ctx, caller, "character", http.MethodDelete, idPath("/api/characters", id), nil, nil, nil)
}

// Relationships

func (c *Client) ListRelationships(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.Relationship, error) {
	var out []models.Relationship
	if err := c.do(ctx, caller, "campaign", http.MethodGet, "/api/relationships", campaignQuery(campaignID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRelationship(ctx context.Context, caller gateway.Caller, in models.RelationshipInput) (*models.Relationship, error) {
	var out models.Relationship
	if err := c.do(ctx, caller, "create relationship", http.MethodPost, "/api/relationships", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRelationship(ctx context.Context, caller gateway.Caller, id string, in models.RelationshipInput) (*models.Relationship, error) {
	var out models.Relationship
	if err := c.do(ctx, caller, "relationship", http.MethodPut, idPath("/api/relationships", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRelationship(ctx context.Context, caller gateway.Caller, id string) error {
	return c.do(ctx, caller, "relationship", http.MethodDelete, idPath("/api/relationships", id), nil, nil, nil)
}

// Lore entries

func (c *Client) ListLoreEntries(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.LoreEntry, error) {
	var out []models.LoreEntry
	if err := c.do(ctx, caller, "campaign", http.MethodGet, "/api/lore-entries", campaignQuery(campaignID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLoreEntry(ctx context.Context, caller gateway.Caller, id string) (*models.LoreEntry, error) {
	var out models.LoreEntry
	if err := c.do(ctx, caller, "lore_entry", http.MethodGet, idPath("/api/lore-entries", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLoreEntry(ctx context.Context, caller gateway.Caller, in models.LoreEntryInput) (*models.LoreEntry, error) {
	var out models.LoreEntry
	if err := c.do(ctx, caller, "create lore entry", http.MethodPost, "/api/lore-entries", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLoreEntry(ctx context.Context, caller gateway.Caller, id string, in models.LoreEntryInput) (*models.LoreEntry, error) {
	var out models.LoreEntry
	if err := c.do(ctx, caller, "lore_entry", http.MethodPut, idPath("/api/lore-entries", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLoreEntry(ctx context.Context, caller gateway.Caller, id string) error {
	return c.do(ctx, caller, "lore_entry", http.MethodDelete, idPath("/api/lore-entries", id), nil, nil, nil)
}

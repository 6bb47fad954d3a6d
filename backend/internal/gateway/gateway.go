// Package gateway defines the persistence gateway contract backing the entity store.
//
// Every call carries an explicit Caller; implementations never read identity from
// process-wide state. A campaign that exists but belongs to someone else is reported
// as NotFound, exactly like a missing one.
package gateway

import (
	"context"

	"lore-keeper/backend/internal/models"
)

// Caller identifies the user on whose behalf a call is made
type Caller struct {
	UserID string
	// Token is forwarded by remote gateways; local gateways ignore it
	Token string
}

// Campaigns covers campaign CRUD
type Campaigns interface {
	ListCampaigns(ctx context.Context, caller Caller) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, caller Caller, id string) (*models.Campaign, error)
	CreateCampaign(ctx context.Context, caller Caller, in models.CampaignInput) (*models.Campaign, error)
	UpdateCampaign(ctx context.Context, caller Caller, id string, in models.CampaignInput) (*models.Campaign, error)
	// DeleteCampaign cascades to every character, relationship and lore entry of the campaign
	DeleteCampaign(ctx context.Context, caller Caller, id string) error
}

// Characters covers character CRUD
type Characters interface {
	ListCharacters(ctx context.Context, caller Caller, campaignID string) ([]models.Character, error)
	GetCharacter(ctx context.Context, caller Caller, id string) (*models.Character, error)
	CreateCharacter(ctx context.Context, caller Caller, in models.CharacterInput) (*models.Character, error)
	UpdateCharacter(ctx context.Context, caller Caller, id string, in models.CharacterInput) (*models.Character, error)
	// DeleteCharacter also removes relationships that reference the character
	DeleteCharacter(ctx context.Context, caller Caller, id string) error
}

// Relationships covers relationship CRUD
type Relationships interface {
	ListRelationships(ctx context.Context, caller Caller, campaignID string) ([]models.Relationship, error)
	CreateRelationship(ctx context.Context, caller Caller, in models.RelationshipInput) (*models.Relationship, error)
	UpdateRelationship(ctx context.Context, caller Caller, id string, in models.RelationshipInput) (*models.Relationship, error)
	DeleteRelationship(ctx context.Context, caller Caller, id string) error
}

// LoreEntries covers lore entry CRUD
type LoreEntries interface {
	ListLoreEntries(ctx context.Context, caller Caller, campaignID string) ([]models.LoreEntry, error)
	GetLoreEntry(ctx context.Context, caller Caller, id string) (*models.LoreEntry, error)
	CreateLoreEntry(ctx context.Context, caller Caller, in models.LoreEntryInput) (*models.LoreEntry, error)
	UpdateLoreEntry(ctx context.Context, caller Caller, id string, in models.LoreEntryInput) (*models.LoreEntry, error)
	DeleteLoreEntry(ctx context.Context, caller Caller, id string) error
}

// Gateway is the full persistence contract
type Gateway interface {
	Campaigns
	Characters
	Relationships
	LoreEntries
}

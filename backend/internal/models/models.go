// Package models holds the campaign knowledge model: campaigns and the characters,
// relationships and lore entries that live inside them.
package models

import (
	"strings"
	"time"
)

// Kind names an entity kind. It is used by the entity store and in error messages.
type Kind string

const (
	KindCampaign     Kind = "campaign"
	KindCharacter    Kind = "character"
	KindRelationship Kind = "relationship"
	KindLoreEntry    Kind = "lore_entry"
)

// Entity is implemented by every campaign-scoped record
type Entity interface {
	EntityID() string
	EntityKind() Kind
	OwningCampaign() string
}

// Campaign is a namespace owned by exactly one user
type Campaign struct {
	ID          string    `json:"id" yaml:"id"`
	UserID      string    `json:"user_id" yaml:"user_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

func (c Campaign) EntityID() string       { return c.ID }
func (c Campaign) EntityKind() Kind       { return KindCampaign }
func (c Campaign) OwningCampaign() string { return c.ID }

// Role classifies a character. The set is open: unknown roles are kept as-is.
type Role string

const (
	RolePlayerCharacter    Role = "pc"
	RoleNonPlayerCharacter Role = "npc"
	RoleVillain            Role = "villain"
	RoleAlly               Role = "ally"
)

// DefaultRole is assigned when a character is created without one
const DefaultRole = RoleNonPlayerCharacter

// KnownRoles lists the roles the UI offers
var KnownRoles = []Role{RolePlayerCharacter, RoleNonPlayerCharacter, RoleVillain, RoleAlly}

// Known reports whether r is one of the preset roles
func (r Role) Known() bool {
	for _, k := range KnownRoles {
		if r == k {
			return true
		}
	}
	return false
}

// NormalizeRole trims r and falls back to DefaultRole when empty
func NormalizeRole(r Role) Role {
	r = Role(strings.TrimSpace(string(r)))
	if r == "" {
		return DefaultRole
	}
	return r
}

// Character is a person in a campaign
type Character struct {
	ID         string     `json:"id" yaml:"id"`
	CampaignID string     `json:"campaign_id" yaml:"campaign_id"`
	Name       string     `json:"name" yaml:"name"`
	Role       Role       `json:"role" yaml:"role"`
	Attributes Attributes `json:"attributes" yaml:"attributes"`
	Background string     `json:"background,omitempty" yaml:"background,omitempty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" yaml:"updated_at"`
}

func (c Character) EntityID() string       { return c.ID }
func (c Character) EntityKind() Kind       { return KindCharacter }
func (c Character) OwningCampaign() string { return c.CampaignID }

// Preset relation types offered by the UI. Any other non-empty label is accepted.
const (
	RelationFriend = "friend"
	RelationRival  = "rival"
	RelationFamily = "family"
	RelationEnemy  = "enemy"
	RelationMentor = "mentor"
	RelationLover  = "lover"
)

// PresetRelationTypes lists the labels the UI offers
var PresetRelationTypes = []string{
	RelationFriend, RelationRival, RelationFamily, RelationEnemy, RelationMentor, RelationLover,
}

// IsPresetRelationType reports whether t is one of the UI presets
func IsPresetRelationType(t string) bool {
	for _, p := range PresetRelationTypes {
		if t == p {
			return true
		}
	}
	return false
}

// Relationship is a directed link between two characters of the same campaign
type Relationship struct {
	ID                string    `json:"id" yaml:"id"`
	CampaignID        string    `json:"campaign_id" yaml:"campaign_id"`
	SourceCharacterID string    `json:"source_character_id" yaml:"source_character_id"`
	TargetCharacterID string    `json:"target_character_id" yaml:"target_character_id"`
	RelationType      string    `json:"relation_type" yaml:"relation_type"`
	Description       string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
}

func (r Relationship) EntityID() string       { return r.ID }
func (r Relationship) EntityKind() Kind       { return KindRelationship }
func (r Relationship) OwningCampaign() string { return r.CampaignID }

// SelfLoop reports whether the relationship points back at its source
func (r Relationship) SelfLoop() bool {
	return r.SourceCharacterID == r.TargetCharacterID
}

// Suggested lore categories
const (
	CategoryHistory   = "History"
	CategoryGeography = "Geography"
	CategoryMagic     = "Magic"
	CategoryItem      = "Item"
	CategoryCulture   = "Culture"
	CategoryOther     = "Other"
)

// LoreEntry is one piece of world lore; a campaign's entries form its consistency corpus
type LoreEntry struct {
	ID         string    `json:"id" yaml:"id"`
	CampaignID string    `json:"campaign_id" yaml:"campaign_id"`
	Title      string    `json:"title" yaml:"title"`
	Category   string    `json:"category,omitempty" yaml:"category,omitempty"`
	Content    string    `json:"content" yaml:"content"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

func (l LoreEntry) EntityID() string       { return l.ID }
func (l LoreEntry) EntityKind() Kind       { return KindLoreEntry }
func (l LoreEntry) OwningCampaign() string { return l.CampaignID }

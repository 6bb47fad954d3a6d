package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "lore-keeper/backend/pkg/errors"
)

// notBlank rejects strings that are empty after trimming
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
})

// CampaignInput carries the editable fields of a campaign
type CampaignInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (in CampaignInput) Validate() error {
	return wrap(KindCampaign, validation.ValidateStruct(&in,
		validation.Field(&in.Title, notBlank, validation.Length(0, 200)),
	))
}

// CharacterInput carries the editable fields of a character.
// CampaignID is only honoured on create.
type CharacterInput struct {
	CampaignID string     `json:"campaign_id"`
	Name       string     `json:"name" binding:"required"`
	Role       Role       `json:"role"`
	Attributes Attributes `json:"attributes"`
	Background string     `json:"background"`
}

func (in CharacterInput) Validate() error {
	return wrap(KindCharacter, validation.ValidateStruct(&in,
		validation.Field(&in.CampaignID, validation.Required),
		validation.Field(&in.Name, notBlank),
		validation.Field(&in.Attributes),
	))
}

// ValidateUpdate checks the fields an update may change; the campaign is fixed at creation
func (in CharacterInput) ValidateUpdate() error {
	return wrap(KindCharacter, validation.ValidateStruct(&in,
		validation.Field(&in.Name, notBlank),
		validation.Field(&in.Attributes),
	))
}

// Normalized fills defaults: trimmed name, default role, non-nil attributes
func (in CharacterInput) Normalized() CharacterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = NormalizeRole(in.Role)
	if in.Attributes == nil {
		in.Attributes = Attributes{}
	}
	return in
}

// RelationshipInput carries the fields of a relationship. Only RelationType and
// Description are honoured on update.
type RelationshipInput struct {
	CampaignID        string `json:"campaign_id"`
	SourceCharacterID string `json:"source_character_id"`
	TargetCharacterID string `json:"target_character_id"`
	RelationType      string `json:"relation_type" binding:"required"`
	Description       string `json:"description"`
}

func (in RelationshipInput) Validate() error {
	return wrap(KindRelationship, validation.ValidateStruct(&in,
		validation.Field(&in.CampaignID, validation.Required),
		validation.Field(&in.SourceCharacterID, validation.Required),
		validation.Field(&in.TargetCharacterID, validation.Required),
		validation.Field(&in.RelationType, notBlank, validation.Length(0, 64)),
	))
}

// ValidateUpdate checks only the fields an update may change
func (in RelationshipInput) ValidateUpdate() error {
	return wrap(KindRelationship, validation.ValidateStruct(&in,
		validation.Field(&in.RelationType, notBlank, validation.Length(0, 64)),
	))
}

// LoreEntryInput carries the editable fields of a lore entry
type LoreEntryInput struct {
	CampaignID string `json:"campaign_id"`
	Title      string `json:"title" binding:"required"`
	Category   string `json:"category"`
	Content    string `json:"content" binding:"required"`
}

func (in LoreEntryInput) Validate() error {
	return wrap(KindLoreEntry, validation.ValidateStruct(&in,
		validation.Field(&in.CampaignID, validation.Required),
		validation.Field(&in.Title, notBlank),
		validation.Field(&in.Content, notBlank),
	))
}

func (in LoreEntryInput) ValidateUpdate() error {
	return wrap(KindLoreEntry, validation.ValidateStruct(&in,
		validation.Field(&in.Title, notBlank),
		validation.Field(&in.Content, notBlank),
	))
}

func wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return apperrors.WrapValidation(string(kind), err)
}

package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
)

// ============================================================================
// Character Operations
// ============================================================================

// ListCharacters returns the characters of a campaign, oldest first
func (r *Repository) ListCharacters(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.Character, error) {
	query := `
		MATCH (c:Campaign {id: $campaignID, user_id: $userID})
		OPTIONAL MATCH (c)-[:HAS_CHARACTER]->(ch:Character)
		RETURN c, ch
		ORDER BY ch.created_at, ch.id
	`
	records, err := r.run(ctx, neo4j.AccessModeRead, "list characters", query, map[string]any{
		"campaignID": campaignID,
		"userID":     caller.UserID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindCampaign), campaignID)
	}

	out := make([]models.Character, 0, len(records))
	for _, rec := range records {
		if _, ok := getPropsFromRecord(rec, "ch"); !ok {
			continue // campaign without characters
		}
		ch, err := characterFromRecord(rec, "ch")
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// GetCharacter returns one character of a campaign owned by the caller
func (r *Repository) GetCharacter(ctx context.Context, caller gateway.Caller, id string) (*models.Character, error) {
	query := `
		MATCH (:Campaign {user_id: $userID})-[:HAS_CHARACTER]->(ch:Character {id: $id})
		RETURN ch
	`
	records, err := r.run(ctx, neo4j.AccessModeRead, "get character", query, map[string]any{
		"id":     id,
		"userID": caller.UserID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindCharacter), id)
	}
	ch, err := characterFromRecord(records[0], "ch")
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// CreateCharacter stores a character under its campaign
func (r *Repository) CreateCharacter(ctx context.Context, caller gateway.Caller, in models.CharacterInput) (*models.Character, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in = in.Normalized()
	attrs, err := encodeAttributes(in.Attributes)
	if err != nil {
		return nil, err
	}

	_, now := r.timestamp()
	query := `
		MATCH (c:Campaign {id: $campaignID, user_id: $userID})
		CREATE (c)-[:HAS_CHARACTER]->(ch:Character {
			id: $id,
			campaign_id: $campaignID,
			name: $name,
			role: $role,
			attributes: $attributes,
			background: $background,
			created_at: datetime($now),
			updated_at: datetime($now)
		})
		RETURN ch
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "create character", query, map[string]any{
		"campaignID": in.CampaignID,
		"userID":     caller.UserID,
		"id":         r.newID(),
		"name":       in.Name,
		"role":       string(in.Role),
		"attributes": attrs,
		"background": in.Background,
		"now":        now,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindCampaign), in.CampaignID)
	}
	ch, err := characterFromRecord(records[0], "ch")
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// UpdateCharacter replaces the editable fields. The campaign cannot change.
func (r *Repository) UpdateCharacter(ctx context.Context, caller gateway.Caller, id string, in models.CharacterInput) (*models.Character, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	in = in.Normalized()
	attrs, err := encodeAttributes(in.Attributes)
	if err != nil {
		return nil, err
	}

	_, now := r.timestamp()
	out, err := r.runWrite(ctx, "update character", func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (:Campaign {user_id: $userID})-[:HAS_CHARACTER]->(ch:Character {id: $id})
			RETURN ch.campaign_id AS campaign_id
		`, map[string]any{"id": id, "userID": caller.UserID})
		if err != nil {
			return nil, err
		}
		existing, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			return nil, apperrors.NewNotFound(string(models.KindCharacter), id)
		}
		if in.CampaignID != "" && in.CampaignID != getStringFromRecord(existing[0], "campaign_id") {
			return nil, apperrors.NewValidation("campaign_id", "cannot be changed after creation")
		}

		res, err = tx.Run(ctx, `
			MATCH (ch:Character {id: $id})
			SET ch.name = $name,
			    ch.role = $role,
			    ch.attributes = $attributes,
			    ch.background = $background,
			    ch.updated_at = datetime($now)
			RETURN ch
		`, map[string]any{
			"id":         id,
			"name":       in.Name,
			"role":       string(in.Role),
			"attributes": attrs,
			"background": in.Background,
			"now":        now,
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return characterFromRecord(rec, "ch")
	})
	if err != nil {
		return nil, err
	}
	ch := out.(models.Character)
	return &ch, nil
}

// DeleteCharacter removes the character; DETACH DELETE drops its relationships with it
func (r *Repository) DeleteCharacter(ctx context.Context, caller gateway.Caller, id string) error {
	query := `
		MATCH (:Campaign {user_id: $userID})-[:HAS_CHARACTER]->(ch:Character {id: $id})
		WITH ch, ch.id AS id
		DETACH DELETE ch
		RETURN id
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "delete character", query, map[string]any{
		"id":     id,
		"userID": caller.UserID,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return apperrors.NewNotFound(string(models.KindCharacter), id)
	}
	return nil
}

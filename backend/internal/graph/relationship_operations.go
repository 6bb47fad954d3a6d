package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
)

// ============================================================================
// Character-to-Character Relationship Operations
// ============================================================================

// ListRelationships returns the RELATES edges between characters of a campaign, oldest first
func (r *Repository) ListRelationships(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.Relationship, error) {
	if _, err := r.GetCampaign(ctx, caller, campaignID); err != nil {
		return nil, err
	}

	query := `
		MATCH (:Campaign {id: $campaignID, user_id: $userID})-[:HAS_CHARACTER]->(s:Character)-[rel:RELATES]->(t:Character)
		RETURN rel, s.id AS source_id, t.id AS target_id
		ORDER BY rel.created_at, rel.id
	`
	records, err := r.run(ctx, neo4j.AccessModeRead, "list relationships", query, map[string]any{
		"campaignID": campaignID,
		"userID":     caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Relationship, 0, len(records))
	for _, rec := range records {
		rel, err := relationshipFromRecord(rec, "rel")
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// CreateRelationship links two characters of the same campaign. Both endpoints are checked
// in the same transaction as the write.
func (r *Repository) CreateRelationship(ctx context.Context, caller gateway.Caller, in models.RelationshipInput) (*models.Relationship, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	_, now := r.timestamp()
	params := map[string]any{
		"campaignID":   in.CampaignID,
		"userID":       caller.UserID,
		"sourceID":     in.SourceCharacterID,
		"targetID":     in.TargetCharacterID,
		"id":           r.newID(),
		"relationType": in.RelationType,
		"description":  in.Description,
		"now":          now,
	}

	out, err := r.runWrite(ctx, "create relationship", func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Campaign {id: $campaignID, user_id: $userID})
			OPTIONAL MATCH (c)-[:HAS_CHARACTER]->(s:Character {id: $sourceID})
			OPTIONAL MATCH (c)-[:HAS_CHARACTER]->(t:Character {id: $targetID})
			RETURN s IS NOT NULL AS has_source, t IS NOT NULL AS has_target
		`, params)
		if err != nil {
			return nil, err
		}
		checks, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(checks) == 0 {
			return nil, apperrors.NewNotFound(string(models.KindCampaign), in.CampaignID)
		}
		if !getBoolFromRecord(checks[0], "has_source") {
			return nil, apperrors.NewValidation("source_character_id", "character does not belong to the campaign")
		}
		if !getBoolFromRecord(checks[0], "has_target") {
			return nil, apperrors.NewValidation("target_character_id", "character does not belong to the campaign")
		}

		res, err = tx.Run(ctx, `
			MATCH (s:Character {id: $sourceID}), (t:Character {id: $targetID})
			CREATE (s)-[rel:RELATES {
				id: $id,
				campaign_id: $campaignID,
				relation_type: $relationType,
				description: $description,
				created_at: datetime($now)
			}]->(t)
			RETURN rel, s.id AS source_id, t.id AS target_id
		`, params)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return relationshipFromRecord(rec, "rel")
	})
	if err != nil {
		return nil, err
	}

	rel := out.(models.Relationship)
	if rel.SelfLoop() {
		r.logger.Warn("Self-referencing relationship stored",
			zap.String("relationship_id", rel.ID),
			zap.String("character_id", rel.SourceCharacterID),
		)
	}
	return &rel, nil
}

// UpdateRelationship changes relation type and description; endpoints are fixed
func (r *Repository) UpdateRelationship(ctx context.Context, caller gateway.Caller, id string, in models.RelationshipInput) (*models.Relationship, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}

	query := `
		MATCH (:Campaign {user_id: $userID})-[:HAS_CHARACTER]->(s:Character)-[rel:RELATES {id: $id}]->(t:Character)
		SET rel.relation_type = $relationType,
		    rel.description = $description
		RETURN rel, s.id AS source_id, t.id AS target_id
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "update relationship", query, map[string]any{
		"id":           id,
		"userID":       caller.UserID,
		"relationType": in.RelationType,
		"description":  in.Description,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindRelationship), id)
	}
	rel, err := relationshipFromRecord(records[0], "rel")
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// DeleteRelationship removes one RELATES edge
func (r *Repository) DeleteRelationship(ctx context.Context, caller gateway.Caller, id string) error {
	query := `
		MATCH (:Campaign {user_id: $userID})-[:HAS_CHARACTER]->(:Character)-[rel:RELATES {id: $id}]->(:Character)
		WITH rel, rel.id AS id
		DELETE rel
		RETURN id
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "delete relationship", query, map[string]any{
		"id":     id,
		"userID": caller.UserID,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return apperrors.NewNotFound(string(models.KindRelationship), id)
	}
	return nil
}

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
// Campaign Operations
// ============================================================================

// ListCampaigns returns the caller's campaigns, newest first
func (r *Repository) ListCampaigns(ctx context.Context, caller gateway.Caller) ([]models.Campaign, error) {
	query := `
		MATCH (c:Campaign {user_id: $userID})
		RETURN c
		ORDER BY c.created_at DESC, c.id
	`
	records, err := r.run(ctx, neo4j.AccessModeRead, "list campaigns", query, map[string]any{
		"userID": caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Campaign, 0, len(records))
	for _, rec := range records {
		c, err := campaignFromRecord(rec, "c")
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// GetCampaign returns one campaign owned by the caller
func (r *Repository) GetCampaign(ctx context.Context, caller gateway.Caller, id string) (*models.Campaign, error) {
	query := `
		MATCH (c:Campaign {id: $id, user_id: $userID})
		RETURN c
	`
	records, err := r.run(ctx, neo4j.AccessModeRead, "get campaign", query, map[string]any{
		"id":     id,
		"userID": caller.UserID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindCampaign), id)
	}
	c, err := campaignFromRecord(records[0], "c")
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCampaign stores a new campaign owned by the caller
func (r *Repository) CreateCampaign(ctx context.Context, caller gateway.Caller, in models.CampaignInput) (*models.Campaign, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if caller.UserID == "" {
		return nil, apperrors.NewValidation("user_id", "caller identity is required")
	}

	_, now := r.timestamp()
	query := `
		CREATE (c:Campaign {
			id: $id,
			user_id: $userID,
			title: $title,
			description: $description,
			created_at: datetime($now),
			updated_at: datetime($now)
		})
		RETURN c
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "create campaign", query, map[string]any{
		"id":          r.newID(),
		"userID":      caller.UserID,
		"title":       in.Title,
		"description": in.Description,
		"now":         now,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewMalformedResponse("create campaign", "no record returned", nil)
	}
	c, err := campaignFromRecord(records[0], "c")
	if err != nil {
		return nil, err
	}

	r.logger.Info("Campaign created",
		zap.String("campaign_id", c.ID),
		zap.String("user_id", caller.UserID),
	)
	return &c, nil
}

// UpdateCampaign changes title and description
func (r *Repository) UpdateCampaign(ctx context.Context, caller gateway.Caller, id string, in models.CampaignInput) (*models.Campaign, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	_, now := r.timestamp()
	query := `
		MATCH (c:Campaign {id: $id, user_id: $userID})
		SET c.title = $title,
		    c.description = $description,
		    c.updated_at = datetime($now)
		RETURN c
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "update campaign", query, map[string]any{
		"id":          id,
		"userID":      caller.UserID,
		"title":       in.Title,
		"description": in.Description,
		"now":         now,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindCampaign), id)
	}
	c, err := campaignFromRecord(records[0], "c")
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCampaign removes the campaign with all of its characters, relationships and lore
func (r *Repository) DeleteCampaign(ctx context.Context, caller gateway.Caller, id string) error {
	query := `
		MATCH (c:Campaign {id: $id, user_id: $userID})
		OPTIONAL MATCH (c)-[:HAS_CHARACTER|HAS_LORE]->(child)
		WITH c, c.id AS id, collect(child) AS children
		FOREACH (n IN children | DETACH DELETE n)
		DETACH DELETE c
		RETURN id, size(children) AS cascaded
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "delete campaign", query, map[string]any{
		"id":     id,
		"userID": caller.UserID,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return apperrors.NewNotFound(string(models.KindCampaign), id)
	}

	cascaded, _ := records[0].Get("cascaded")
	r.logger.Info("Campaign deleted",
		zap.String("campaign_id", id),
		zap.Any("cascaded", cascaded),
	)
	return nil
}

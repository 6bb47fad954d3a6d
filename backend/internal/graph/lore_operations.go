package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
)

// ============================================================================
// Lore Entry Operations
// ============================================================================

// ListLoreEntries returns the consistency corpus of a campaign, oldest first
func (r *Repository) ListLoreEntries(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.LoreEntry, error) {
	query := `
		MATCH (c:Campaign {id: $campaignID, user_id: $userID})
		OPTIONAL MATCH (c)-[:HAS_LORE]->(l:LoreEntry)
		RETURN c, l
		ORDER BY l.created_at, l.id
	`
	records, err := r.run(ctx, neo4j.AccessModeRead, "list lore entries", query, map[string]any{
		"campaignID": campaignID,
		"userID":     caller.UserID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindCampaign), campaignID)
	}

	out := make([]models.LoreEntry, 0, len(records))
	for _, rec := range records {
		if _, ok := getPropsFromRecord(rec, "l"); !ok {
			continue
		}
		l, err := loreEntryFromRecord(rec, "l")
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// GetLoreEntry returns one lore entry of a campaign owned by the caller
func (r *Repository) GetLoreEntry(ctx context.Context, caller gateway.Caller, id string) (*models.LoreEntry, error) {
	query := `
		MATCH (:Campaign {user_id: $userID})-[:HAS_LORE]->(l:LoreEntry {id: $id})
		RETURN l
	`
	records, err := r.run(ctx, neo4j.AccessModeRead, "get lore entry", query, map[string]any{
		"id":     id,
		"userID": caller.UserID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindLoreEntry), id)
	}
	l, err := loreEntryFromRecord(records[0], "l")
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLoreEntry adds an entry to a campaign's corpus
func (r *Repository) CreateLoreEntry(ctx context.Context, caller gateway.Caller, in models.LoreEntryInput) (*models.LoreEntry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	_, now := r.timestamp()
	query := `
		MATCH (c:Campaign {id: $campaignID, user_id: $userID})
		CREATE (c)-[:HAS_LORE]->(l:LoreEntry {
			id: $id,
			campaign_id: $campaignID,
			title: $title,
			category: $category,
			content: $content,
			created_at: datetime($now),
			updated_at: datetime($now)
		})
		RETURN l
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "create lore entry", query, map[string]any{
		"campaignID": in.CampaignID,
		"userID":     caller.UserID,
		"id":         r.newID(),
		"title":      in.Title,
		"category":   in.Category,
		"content":    in.Content,
		"now":        now,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindCampaign), in.CampaignID)
	}
	l, err := loreEntryFromRecord(records[0], "l")
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLoreEntry replaces title, category and content
func (r *Repository) UpdateLoreEntry(ctx context.Context, caller gateway.Caller, id string, in models.LoreEntryInput) (*models.LoreEntry, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}

	_, now := r.timestamp()
	query := `
		MATCH (:Campaign {user_id: $userID})-[:HAS_LORE]->(l:LoreEntry {id: $id})
		SET l.title = $title,
		    l.category = $category,
		    l.content = $content,
		    l.updated_at = datetime($now)
		RETURN l
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "update lore entry", query, map[string]any{
		"id":       id,
		"userID":   caller.UserID,
		"title":    in.Title,
		"category": in.Category,
		"content":  in.Content,
		"now":      now,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFound(string(models.KindLoreEntry), id)
	}
	l, err := loreEntryFromRecord(records[0], "l")
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLoreEntry removes a lore entry
func (r *Repository) DeleteLoreEntry(ctx context.Context, caller gateway.Caller, id string) error {
	query := `
		MATCH (:Campaign {user_id: $userID})-[:HAS_LORE]->(l:LoreEntry {id: $id})
		WITH l, l.id AS id
		DETACH DELETE l
		RETURN id
	`
	records, err := r.run(ctx, neo4j.AccessModeWrite, "delete lore entry", query, map[string]any{
		"id":     id,
		"userID": caller.UserID,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return apperrors.NewNotFound(string(models.KindLoreEntry), id)
	}
	return nil
}

// Package memory is an in-process persistence gateway used in development and tests
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

var _ gateway.Gateway = (*Gateway)(nil)

// Gateway keeps every record in maps guarded by one RWMutex
type Gateway struct {
	mu            sync.RWMutex
	campaigns     map[string]models.Campaign
	characters    map[string]models.Character
	relationships map[string]models.Relationship
	lore          map[string]models.LoreEntry

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// New creates an empty gateway
func New() *Gateway {
	return &Gateway{
		campaigns:     make(map[string]models.Campaign),
		characters:    make(map[string]models.Character),
		relationships: make(map[string]models.Relationship),
		lore:          make(map[string]models.LoreEntry),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         func() string { return uuid.NewString() },
		logger:        logger.Get(),
	}
}

// ownedCampaign must be called with mu held
func (g *Gateway) ownedCampaign(caller gateway.Caller, id string) (models.Campaign, error) {
	c, ok := g.campaigns[id]
	if !ok || c.UserID != caller.UserID {
		return models.Campaign{}, apperrors.NewNotFound(string(models.KindCampaign), id)
	}
	return c, nil
}

// Campaigns

func (g *Gateway) ListCampaigns(ctx context.Context, caller gateway.Caller) ([]models.Campaign, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]models.Campaign, 0)
	for _, c := range g.campaigns {
		if c.UserID == caller.UserID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (g *Gateway) GetCampaign(ctx context.Context, caller gateway.Caller, id string) (*models.Campaign, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, err := g.ownedCampaign(caller, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (g *Gateway) CreateCampaign(ctx context.Context, caller gateway.Caller, in models.CampaignInput) (*models.Campaign, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if caller.UserID == "" {
		return nil, apperrors.NewValidation("user_id", "caller identity is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	c := models.Campaign{
		ID:          g.newID(),
		UserID:      caller.UserID,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	g.campaigns[c.ID] = c
	return &c, nil
}

func (g *Gateway) UpdateCampaign(ctx context.Context, caller gateway.Caller, id string, in models.CampaignInput) (*models.Campaign, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.ownedCampaign(caller, id)
	if err != nil {
		return nil, err
	}
	c.Title = in.Title
	c.Description = in.Description
	c.UpdatedAt = g.now()
	g.campaigns[id] = c
	return &c, nil
}

func (g *Gateway) DeleteCampaign(ctx context.Context, caller gateway.Caller, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.ownedCampaign(caller, id); err != nil {
		return err
	}
	delete(g.campaigns, id)

	var removed int
	for k, v := range g.characters {
		if v.CampaignID == id {
			delete(g.characters, k)
			removed++
		}
	}
	for k, v := range g.relationships {
		if v.CampaignID == id {
			delete(g.relationships, k)
			removed++
		}
	}
	for k, v := range g.lore {
		if v.CampaignID == id {
			delete(g.lore, k)
			removed++
		}
	}

	g.logger.Debug("Campaign deleted",
		zap.String("campaign_id", id),
		zap.Int("cascaded", removed),
	)
	return nil
}

// Characters

func (g *Gateway) ListCharacters(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.Character, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, err := g.ownedCampaign(caller, campaignID); err != nil {
		return nil, err
	}
	out := make([]models.Character, 0)
	for _, c := range g.characters {
		if c.CampaignID == campaignID {
			c.Attributes = c.Attributes.Clone()
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return olderFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (g *Gateway) GetCharacter(ctx context.Context, caller gateway.Caller, id string) (*models.Character, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, err := g.ownedCharacter(caller, id)
	if err != nil {
		return nil, err
	}
	c.Attributes = c.Attributes.Clone()
	return &c, nil
}

func (g *Gateway) ownedCharacter(caller gateway.Caller, id string) (models.Character, error) {
	c, ok := g.characters[id]
	if !ok {
		return models.Character{}, apperrors.NewNotFound(string(models.KindCharacter), id)
	}
	if _, err := g.ownedCampaign(caller, c.CampaignID); err != nil {
		return models.Character{}, apperrors.NewNotFound(string(models.KindCharacter), id)
	}
	return c, nil
}

func (g *Gateway) CreateCharacter(ctx context.Context, caller gateway.Caller, in models.CharacterInput) (*models.Character, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in = in.Normalized()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.ownedCampaign(caller, in.CampaignID); err != nil {
		return nil, err
	}
	now := g.now()
	c := models.Character{
		ID:         g.newID(),
		CampaignID: in.CampaignID,
		Name:       in.Name,
		Role:       in.Role,
		Attributes: in.Attributes.Clone(),
		Background: in.Background,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	g.characters[c.ID] = c
	c.Attributes = c.Attributes.Clone()
	return &c, nil
}

func (g *Gateway) UpdateCharacter(ctx context.Context, caller gateway.Caller, id string, in models.CharacterInput) (*models.Character, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	in = in.Normalized()

	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.ownedCharacter(caller, id)
	if err != nil {
		return nil, err
	}
	if in.CampaignID != "" && in.CampaignID != c.CampaignID {
		return nil, apperrors.NewValidation("campaign_id", "cannot be changed after creation")
	}
	c.Name = in.Name
	c.Role = in.Role
	c.Attributes = in.Attributes.Clone()
	c.Background = in.Background
	c.UpdatedAt = g.now()
	g.characters[id] = c
	c.Attributes = c.Attributes.Clone()
	return &c, nil
}

func (g *Gateway) DeleteCharacter(ctx context.Context, caller gateway.Caller, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.ownedCharacter(caller, id); err != nil {
		return err
	}
	delete(g.characters, id)
	for k, r := range g.relationships {
		if r.SourceCharacterID == id || r.TargetCharacterID == id {
			delete(g.relationships, k)
		}
	}
	return nil
}

// Relationships

func (g *Gateway) ListRelationships(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.Relationship, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, err := g.ownedCampaign(caller, campaignID); err != nil {
		return nil, err
	}
	out := make([]models.Relationship, 0)
	for _, r := range g.relationships {
		if r.CampaignID == campaignID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return olderFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (g *Gateway) CreateRelationship(ctx context.Context, caller gateway.Caller, in models.RelationshipInput) (*models.Relationship, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.ownedCampaign(caller, in.CampaignID); err != nil {
		return nil, err
	}
	for field, charID := range map[string]string{
		"source_character_id": in.SourceCharacterID,
		"target_character_id": in.TargetCharacterID,
	} {
		c, ok := g.characters[charID]
		if !ok || c.CampaignID != in.CampaignID {
			return nil, apperrors.NewValidation(field, "character does not belong to the campaign")
		}
	}

	r := models.Relationship{
		ID:                g.newID(),
		CampaignID:        in.CampaignID,
		SourceCharacterID: in.SourceCharacterID,
		TargetCharacterID: in.TargetCharacterID,
		RelationType:      in.RelationType,
		Description:       in.Description,
		CreatedAt:         g.now(),
	}
	if r.SelfLoop() {
		g.logger.Warn("Self-referencing relationship stored",
			zap.String("relationship_id", r.ID),
			zap.String("character_id", r.SourceCharacterID),
		)
	}
	g.relationships[r.ID] = r
	return &r, nil
}

func (g *Gateway) ownedRelationship(caller gateway.Caller, id string) (models.Relationship, error) {
	r, ok := g.relationships[id]
	if !ok {
		return models.Relationship{}, apperrors.NewNotFound(string(models.KindRelationship), id)
	}
	if _, err := g.ownedCampaign(caller, r.CampaignID); err != nil {
		return models.Relationship{}, apperrors.NewNotFound(string(models.KindRelationship), id)
	}
	return r, nil
}

func (g *Gateway) UpdateRelationship(ctx context.Context, caller gateway.Caller, id string, in models.RelationshipInput) (*models.Relationship, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r, err := g.ownedRelationship(caller, id)
	if err != nil {
		return nil, err
	}
	r.RelationType = in.RelationType
	r.Description = in.Description
	g.relationships[id] = r
	return &r, nil
}

func (g *Gateway) DeleteRelationship(ctx context.Context, caller gateway.Caller, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.ownedRelationship(caller, id); err != nil {
		return err
	}
	delete(g.relationships, id)
	return nil
}

// Lore entries

func (g *Gateway) ListLoreEntries(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.LoreEntry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, err := g.ownedCampaign(caller, campaignID); err != nil {
		return nil, err
	}
	out := make([]models.LoreEntry, 0)
	for _, l := range g.lore {
		if l.CampaignID == campaignID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return olderFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (g *Gateway) ownedLoreEntry(caller gateway.Caller, id string) (models.LoreEntry, error) {
	l, ok := g.lore[id]
	if !ok {
		return models.LoreEntry{}, apperrors.NewNotFound(string(models.KindLoreEntry), id)
	}
	if _, err := g.ownedCampaign(caller, l.CampaignID); err != nil {
		return models.LoreEntry{}, apperrors.NewNotFound(string(models.KindLoreEntry), id)
	}
	return l, nil
}

func (g *Gateway) GetLoreEntry(ctx context.Context, caller gateway.Caller, id string) (*models.LoreEntry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	l, err := g.ownedLoreEntry(caller, id)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (g *Gateway) CreateLoreEntry(ctx context.Context, caller gateway.Caller, in models.LoreEntryInput) (*models.LoreEntry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.ownedCampaign(caller, in.CampaignID); err != nil {
		return nil, err
	}
	now := g.now()
	l := models.LoreEntry{
		ID:         g.newID(),
		CampaignID: in.CampaignID,
		Title:      in.Title,
		Category:   in.Category,
		Content:    in.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	g.lore[l.ID] = l
	return &l, nil
}

func (g *Gateway) UpdateLoreEntry(ctx context.Context, caller gateway.Caller, id string, in models.LoreEntryInput) (*models.LoreEntry, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	l, err := g.ownedLoreEntry(caller, id)
	if err != nil {
		return nil, err
	}
	l.Title = in.Title
	l.Category = in.Category
	l.Content = in.Content
	l.UpdatedAt = g.now()
	g.lore[id] = l
	return &l, nil
}

func (g *Gateway) DeleteLoreEntry(ctx context.Context, caller gateway.Caller, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.ownedLoreEntry(caller, id); err != nil {
		return err
	}
	delete(g.lore, id)
	return nil
}

func olderFirst(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}

func newerFirst(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.After(b)
}

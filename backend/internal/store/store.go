// Package store holds the authoritative in-memory view of the open campaign.
//
// The store is filled by Load and afterwards only changes to reflect writes the
// persistence gateway has already confirmed. Readers never see a half-loaded campaign.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lore-keeper/backend/internal/diagram"
	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

// Snapshot is the loaded state of one campaign
type Snapshot struct {
	Campaign      models.Campaign
	Characters    map[string]models.Character
	Relationships map[string]models.Relationship
	LoreEntries   map[string]models.LoreEntry
}

func (s *Snapshot) clone() *Snapshot {
	out := &Snapshot{
		Campaign:      s.Campaign,
		Characters:    make(map[string]models.Character, len(s.Characters)),
		Relationships: make(map[string]models.Relationship, len(s.Relationships)),
		LoreEntries:   make(map[string]models.LoreEntry, len(s.LoreEntries)),
	}
	for k, v := range s.Characters {
		v.Attributes = v.Attributes.Clone()
		out.Characters[k] = v
	}
	for k, v := range s.Relationships {
		out.Relationships[k] = v
	}
	for k, v := range s.LoreEntries {
		out.LoreEntries[k] = v
	}
	return out
}

// Store is the entity store of one campaign view
type Store struct {
	gw gateway.Gateway

	mu   sync.RWMutex
	snap *Snapshot

	locks  entityLocks
	logger *zap.Logger
}

// New creates an empty store backed by gw
func New(gw gateway.Gateway) *Store {
	return &Store{
		gw:     gw,
		logger: logger.Get(),
	}
}

// Load fetches the campaign and its three collections and replaces the current state in
// one step. On any failure the previous state is kept.
func (s *Store) Load(ctx context.Context, caller gateway.Caller, campaignID string) error {
	if campaignID == "" {
		return apperrors.NewValidation("campaign_id", "is required")
	}

	campaign, err := s.gw.GetCampaign(ctx, caller, campaignID)
	if err != nil {
		return fmt.Errorf("loading campaign: %w", err)
	}

	var (
		characters    []models.Character
		relationships []models.Relationship
		lore          []models.LoreEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		characters, err = s.gw.ListCharacters(gctx, caller, campaignID)
		return err
	})
	g.Go(func() error {
		var err error
		relationships, err = s.gw.ListRelationships(gctx, caller, campaignID)
		return err
	})
	g.Go(func() error {
		var err error
		lore, err = s.gw.ListLoreEntries(gctx, caller, campaignID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading campaign %s: %w", campaignID, err)
	}

	next := &Snapshot{
		Campaign:      *campaign,
		Characters:    make(map[string]models.Character, len(characters)),
		Relationships: make(map[string]models.Relationship, len(relationships)),
		LoreEntries:   make(map[string]models.LoreEntry, len(lore)),
	}
	for _, c := range characters {
		if c.CampaignID != campaignID {
			return apperrors.NewMalformedResponse("list characters", fmt.Sprintf("character %s belongs to campaign %s", c.ID, c.CampaignID), nil)
		}
		c.Attributes = c.Attributes.Clone()
		next.Characters[c.ID] = c
	}
	for _, r := range relationships {
		if r.CampaignID != campaignID {
			return apperrors.NewMalformedResponse("list relationships", fmt.Sprintf("relationship %s belongs to campaign %s", r.ID, r.CampaignID), nil)
		}
		next.Relationships[r.ID] = r
	}
	for _, l := range lore {
		if l.CampaignID != campaignID {
			return apperrors.NewMalformedResponse("list lore entries", fmt.Sprintf("lore entry %s belongs to campaign %s", l.ID, l.CampaignID), nil)
		}
		next.LoreEntries[l.ID] = l
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	logger.ForCampaign(campaignID, caller.UserID).Debug("Campaign loaded",
		zap.Int("characters", len(next.Characters)),
		zap.Int("relationships", len(next.Relationships)),
		zap.Int("lore_entries", len(next.LoreEntries)),
	)
	return nil
}

// Loaded reports whether a campaign has been loaded
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

// Snapshot returns a deep copy of the current state, or nil before the first Load
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil
	}
	return s.snap.clone()
}

// Campaign returns the loaded campaign
func (s *Store) Campaign() (models.Campaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return models.Campaign{}, false
	}
	return s.snap.Campaign, true
}

// Characters returns the characters ordered by creation time, then id
func (s *Store) Characters() []models.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedCharacters(s.snap)
}

// Relationships returns the relationships ordered by creation time, then id
func (s *Store) Relationships() []models.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRelationships(s.snap)
}

// LoreEntries returns the consistency corpus ordered by creation time, then id
func (s *Store) LoreEntries() []models.LoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil
	}
	out := make([]models.LoreEntry, 0, len(s.snap.LoreEntries))
	for _, l := range s.snap.LoreEntries {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return createdBefore(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func sortedCharacters(snap *Snapshot) []models.Character {
	if snap == nil {
		return nil
	}
	out := make([]models.Character, 0, len(snap.Characters))
	for _, c := range snap.Characters {
		c.Attributes = c.Attributes.Clone()
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return createdBefore(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func sortedRelationships(snap *Snapshot) []models.Relationship {
	if snap == nil {
		return nil
	}
	out := make([]models.Relationship, 0, len(snap.Relationships))
	for _, r := range snap.Relationships {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return createdBefore(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func createdBefore(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}

// Character looks up one character
func (s *Store) Character(id string) (models.Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return models.Character{}, false
	}
	c, ok := s.snap.Characters[id]
	c.Attributes = c.Attributes.Clone()
	return c, ok
}

// LoreEntry looks up one lore entry
func (s *Store) LoreEntry(id string) (models.LoreEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return models.LoreEntry{}, false
	}
	l, ok := s.snap.LoreEntries[id]
	return l, ok
}

// Upsert reflects a confirmed create or update. Entities of another campaign are rejected.
func (s *Store) Upsert(entity models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return apperrors.NewValidation("campaign", "no campaign loaded")
	}
	if entity.OwningCampaign() != s.snap.Campaign.ID {
		return apperrors.NewValidation("campaign_id",
			fmt.Sprintf("%s %s belongs to campaign %s, not %s", entity.EntityKind(), entity.EntityID(), entity.OwningCampaign(), s.snap.Campaign.ID))
	}

	switch e := entity.(type) {
	case models.Campaign:
		s.snap.Campaign = e
	case *models.Campaign:
		s.snap.Campaign = *e
	case models.Character:
		e.Attributes = e.Attributes.Clone()
		s.snap.Characters[e.ID] = e
	case *models.Character:
		c := *e
		c.Attributes = c.Attributes.Clone()
		s.snap.Characters[c.ID] = c
	case models.Relationship:
		s.snap.Relationships[e.ID] = e
	case *models.Relationship:
		s.snap.Relationships[e.ID] = *e
	case models.LoreEntry:
		s.snap.LoreEntries[e.ID] = e
	case *models.LoreEntry:
		s.snap.LoreEntries[e.ID] = *e
	default:
		return apperrors.NewValidation("entity", fmt.Sprintf("unsupported entity type %T", entity))
	}
	return nil
}

// Remove reflects a confirmed delete. Removing a character also drops the relationships
// that reference it, matching the gateway's cascade.
func (s *Store) Remove(kind models.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return apperrors.NewValidation("campaign", "no campaign loaded")
	}

	switch kind {
	case models.KindCharacter:
		delete(s.snap.Characters, id)
		for rid, r := range s.snap.Relationships {
			if r.SourceCharacterID == id || r.TargetCharacterID == id {
				delete(s.snap.Relationships, rid)
			}
		}
	case models.KindRelationship:
		delete(s.snap.Relationships, id)
	case models.KindLoreEntry:
		delete(s.snap.LoreEntries, id)
	case models.KindCampaign:
		if id == s.snap.Campaign.ID {
			s.snap = nil
		}
	default:
		return apperrors.NewValidation("kind", fmt.Sprintf("unknown entity kind %q", kind))
	}
	return nil
}

// Warnings lists data-quality findings for the loaded campaign
func (s *Store) Warnings() []models.Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil
	}

	var out []models.Warning
	for _, c := range s.snap.Characters {
		out = append(out, models.CharacterWarnings(c)...)
	}
	for _, r := range s.snap.Relationships {
		out = append(out, models.RelationshipWarnings(r, s.snap.Characters)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EntityID == out[j].EntityID {
			return out[i].Code < out[j].Code
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// Diagram builds the relationship graph of the loaded campaign from one consistent view
func (s *Store) Diagram() diagram.Graph {
	s.mu.RLock()
	characters := sortedCharacters(s.snap)
	relationships := sortedRelationships(s.snap)
	s.mu.RUnlock()

	return diagram.Build(characters, relationships)
}

package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
)

// entityLocks serialises writes to the same entity. Entries are never evicted; a
// campaign view only ever touches a bounded set of ids.
type entityLocks struct {
	m sync.Map // kind:id -> *sync.Mutex
}

func (l *entityLocks) lock(kind models.Kind, id string) func() {
	v, _ := l.m.LoadOrStore(string(kind)+":"+id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadedCampaignID returns the id of the loaded campaign
func (s *Store) loadedCampaignID() (string, error) {
	c, ok := s.Campaign()
	if !ok {
		return "", apperrors.NewValidation("campaign", "no campaign loaded")
	}
	return c.ID, nil
}

// scope fills an empty campaign id with the loaded one and rejects any other
func (s *Store) scope(campaignID string) (string, error) {
	loaded, err := s.loadedCampaignID()
	if err != nil {
		return "", err
	}
	if campaignID == "" {
		return loaded, nil
	}
	if campaignID != loaded {
		return "", apperrors.NewValidation("campaign_id", "does not match the loaded campaign")
	}
	return loaded, nil
}

// inView reports NotFound unless the entity is part of the loaded snapshot. Ids of the
// caller's other campaigns never reach the gateway through this store.
func (s *Store) inView(kind models.Kind, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return apperrors.NewValidation("campaign", "no campaign loaded")
	}
	var ok bool
	switch kind {
	case models.KindCharacter:
		_, ok = s.snap.Characters[id]
	case models.KindRelationship:
		_, ok = s.snap.Relationships[id]
	case models.KindLoreEntry:
		_, ok = s.snap.LoreEntries[id]
	}
	if !ok {
		return apperrors.NewNotFound(string(kind), id)
	}
	return nil
}

// UpdateCampaign edits the loaded campaign
func (s *Store) UpdateCampaign(ctx context.Context, caller gateway.Caller, in models.CampaignInput) (*models.Campaign, error) {
	id, err := s.loadedCampaignID()
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	defer s.locks.lock(models.KindCampaign, id)()

	c, err := s.gw.UpdateCampaign(ctx, caller, id, in)
	if err != nil {
		return nil, err
	}
	return c, s.Upsert(*c)
}

// CreateCharacter persists a new character in the loaded campaign
func (s *Store) CreateCharacter(ctx context.Context, caller gateway.Caller, in models.CharacterInput) (*models.Character, error) {
	campaignID, err := s.scope(in.CampaignID)
	if err != nil {
		return nil, err
	}
	in.CampaignID = campaignID
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c, err := s.gw.CreateCharacter(ctx, caller, in.Normalized())
	if err != nil {
		return nil, err
	}
	return c, s.Upsert(*c)
}

// UpdateCharacter edits a character; its campaign cannot change
func (s *Store) UpdateCharacter(ctx context.Context, caller gateway.Caller, id string, in models.CharacterInput) (*models.Character, error) {
	if _, err := s.scope(in.CampaignID); err != nil {
		return nil, err
	}
	if err := s.inView(models.KindCharacter, id); err != nil {
		return nil, err
	}
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	defer s.locks.lock(models.KindCharacter, id)()

	c, err := s.gw.UpdateCharacter(ctx, caller, id, in.Normalized())
	if err != nil {
		return nil, err
	}
	return c, s.Upsert(*c)
}

// DeleteCharacter removes a character and, locally, the relationships that reference it
func (s *Store) DeleteCharacter(ctx context.Context, caller gateway.Caller, id string) error {
	if err := s.inView(models.KindCharacter, id); err != nil {
		return err
	}
	defer s.locks.lock(models.KindCharacter, id)()

	if err := s.gw.DeleteCharacter(ctx, caller, id); err != nil {
		return err
	}
	return s.Remove(models.KindCharacter, id)
}

// CreateRelationship links two characters of the loaded campaign. A self-loop is
// accepted and only logged; Warnings reports it.
func (s *Store) CreateRelationship(ctx context.Context, caller gateway.Caller, in models.RelationshipInput) (*models.Relationship, error) {
	campaignID, err := s.scope(in.CampaignID)
	if err != nil {
		return nil, err
	}
	in.CampaignID = campaignID
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.Character(in.SourceCharacterID); !ok {
		return nil, apperrors.NewValidation("source_character_id", "character is not part of the campaign")
	}
	if _, ok := s.Character(in.TargetCharacterID); !ok {
		return nil, apperrors.NewValidation("target_character_id", "character is not part of the campaign")
	}

	r, err := s.gw.CreateRelationship(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	if r.SelfLoop() {
		s.logger.Warn("Relationship links a character to itself",
			zap.String("relationship_id", r.ID),
			zap.String("character_id", r.SourceCharacterID),
			zap.String("relation_type", r.RelationType),
		)
	}
	return r, s.Upsert(*r)
}

// UpdateRelationship changes the relation type and description
func (s *Store) UpdateRelationship(ctx context.Context, caller gateway.Caller, id string, in models.RelationshipInput) (*models.Relationship, error) {
	if _, err := s.scope(in.CampaignID); err != nil {
		return nil, err
	}
	if err := s.inView(models.KindRelationship, id); err != nil {
		return nil, err
	}
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	defer s.locks.lock(models.KindRelationship, id)()

	r, err := s.gw.UpdateRelationship(ctx, caller, id, in)
	if err != nil {
		return nil, err
	}
	return r, s.Upsert(*r)
}

// DeleteRelationship removes one relationship
func (s *Store) DeleteRelationship(ctx context.Context, caller gateway.Caller, id string) error {
	if err := s.inView(models.KindRelationship, id); err != nil {
		return err
	}
	defer s.locks.lock(models.KindRelationship, id)()

	if err := s.gw.DeleteRelationship(ctx, caller, id); err != nil {
		return err
	}
	return s.Remove(models.KindRelationship, id)
}

// CreateLoreEntry adds an entry to the consistency corpus
func (s *Store) CreateLoreEntry(ctx context.Context, caller gateway.Caller, in models.LoreEntryInput) (*models.LoreEntry, error) {
	campaignID, err := s.scope(in.CampaignID)
	if err != nil {
		return nil, err
	}
	in.CampaignID = campaignID
	if err := in.Validate(); err != nil {
		return nil, err
	}

	l, err := s.gw.CreateLoreEntry(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	return l, s.Upsert(*l)
}

// UpdateLoreEntry edits a lore entry
func (s *Store) UpdateLoreEntry(ctx context.Context, caller gateway.Caller, id string, in models.LoreEntryInput) (*models.LoreEntry, error) {
	if _, err := s.scope(in.CampaignID); err != nil {
		return nil, err
	}
	if err := s.inView(models.KindLoreEntry, id); err != nil {
		return nil, err
	}
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	defer s.locks.lock(models.KindLoreEntry, id)()

	l, err := s.gw.UpdateLoreEntry(ctx, caller, id, in)
	if err != nil {
		return nil, err
	}
	return l, s.Upsert(*l)
}

// DeleteLoreEntry removes a lore entry
func (s *Store) DeleteLoreEntry(ctx context.Context, caller gateway.Caller, id string) error {
	if err := s.inView(models.KindLoreEntry, id); err != nil {
		return err
	}
	defer s.locks.lock(models.KindLoreEntry, id)()

	if err := s.gw.DeleteLoreEntry(ctx, caller, id); err != nil {
		return err
	}
	return s.Remove(models.KindLoreEntry, id)
}

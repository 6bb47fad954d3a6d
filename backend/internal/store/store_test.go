package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/gateway/memory"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
)

var owner = gateway.Caller{UserID: "user-1"}

// flakyGateway wraps a real gateway and can fail selected calls
type flakyGateway struct {
	gateway.Gateway
	failLore   bool
	writeCalls int
}

func (f *flakyGateway) ListLoreEntries(ctx context.Context, caller gateway.Caller, campaignID string) ([]models.LoreEntry, error) {
	if f.failLore {
		return nil, apperrors.NewTransport("list lore entries", 503, errors.New("unavailable"))
	}
	return f.Gateway.ListLoreEntries(ctx, caller, campaignID)
}

func (f *flakyGateway) CreateRelationship(ctx context.Context, caller gateway.Caller, in models.RelationshipInput) (*models.Relationship, error) {
	f.writeCalls++
	return f.Gateway.CreateRelationship(ctx, caller, in)
}

func (f *flakyGateway) CreateCharacter(ctx context.Context, caller gateway.Caller, in models.CharacterInput) (*models.Character, error) {
	f.writeCalls++
	return f.Gateway.CreateCharacter(ctx, caller, in)
}

func (f *flakyGateway) UpdateCharacter(ctx context.Context, caller gateway.Caller, id string, in models.CharacterInput) (*models.Character, error) {
	f.writeCalls++
	return f.Gateway.UpdateCharacter(ctx, caller, id, in)
}

func (f *flakyGateway) DeleteCharacter(ctx context.Context, caller gateway.Caller, id string) error {
	f.writeCalls++
	return f.Gateway.DeleteCharacter(ctx, caller, id)
}

func (f *flakyGateway) UpdateRelationship(ctx context.Context, caller gateway.Caller, id string, in models.RelationshipInput) (*models.Relationship, error) {
	f.writeCalls++
	return f.Gateway.UpdateRelationship(ctx, caller, id, in)
}

func (f *flakyGateway) DeleteRelationship(ctx context.Context, caller gateway.Caller, id string) error {
	f.writeCalls++
	return f.Gateway.DeleteRelationship(ctx, caller, id)
}

func (f *flakyGateway) UpdateLoreEntry(ctx context.Context, caller gateway.Caller, id string, in models.LoreEntryInput) (*models.LoreEntry, error) {
	f.writeCalls++
	return f.Gateway.UpdateLoreEntry(ctx, caller, id, in)
}

func (f *flakyGateway) DeleteLoreEntry(ctx context.Context, caller gateway.Caller, id string) error {
	f.writeCalls++
	return f.Gateway.DeleteLoreEntry(ctx, caller, id)
}

type fixture struct {
	gw       *flakyGateway
	campaign *models.Campaign
	a, b     *models.Character
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	gw := memory.New()

	c, err := gw.CreateCampaign(ctx, owner, models.CampaignInput{Title: "Ashen Crown"})
	require.NoError(t, err)
	a, err := gw.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: c.ID, Name: "Aria", Role: models.RolePlayerCharacter})
	require.NoError(t, err)
	b, err := gw.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: c.ID, Name: "Bram", Role: models.RoleVillain})
	require.NoError(t, err)
	_, err = gw.CreateRelationship(ctx, owner, models.RelationshipInput{
		CampaignID: c.ID, SourceCharacterID: a.ID, TargetCharacterID: b.ID, RelationType: models.RelationRival,
	})
	require.NoError(t, err)
	_, err = gw.CreateLoreEntry(ctx, owner, models.LoreEntryInput{
		CampaignID: c.ID, Title: "The Ashen Crown", Category: models.CategoryItem, Content: "Forged in dragonfire.",
	})
	require.NoError(t, err)

	return &fixture{gw: &flakyGateway{Gateway: gw}, campaign: c, a: a, b: b}
}

func TestStore_LoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := New(f.gw)

	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))
	first := s.Snapshot()
	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))
	second := s.Snapshot()

	assert.Equal(t, first, second)
	assert.Len(t, second.Characters, 2)
	assert.Len(t, second.Relationships, 1)
	assert.Len(t, second.LoreEntries, 1)
}

func TestStore_LoadForeignCampaignIsNotFound(t *testing.T) {
	f := newFixture(t)
	s := New(f.gw)

	err := s.Load(context.Background(), gateway.Caller{UserID: "intruder"}, f.campaign.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, s.Loaded())
}

func TestStore_FailedLoadKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := New(f.gw)
	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))
	before := s.Snapshot()

	_, err := f.gw.Gateway.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: f.campaign.ID, Name: "Cass"})
	require.NoError(t, err)
	f.gw.failLore = true

	err = s.Load(ctx, owner, f.campaign.ID)
	assert.True(t, apperrors.IsTransport(err))
	assert.Equal(t, before, s.Snapshot())
}

func TestStore_UpsertRejectsOtherCampaign(t *testing.T) {
	f := newFixture(t)
	s := New(f.gw)

	assert.True(t, apperrors.IsValidation(s.Upsert(models.Character{ID: "x", CampaignID: "c"})))

	require.NoError(t, s.Load(context.Background(), owner, f.campaign.ID))
	err := s.Upsert(models.Character{ID: "x", CampaignID: "elsewhere"})
	assert.True(t, apperrors.IsValidation(err))

	require.NoError(t, s.Upsert(&models.LoreEntry{ID: "l2", CampaignID: f.campaign.ID, Title: "T", Content: "C"}))
	_, ok := s.LoreEntry("l2")
	assert.True(t, ok)
}

func TestStore_RemoveCharacterDropsItsRelationships(t *testing.T) {
	f := newFixture(t)
	s := New(f.gw)
	require.NoError(t, s.Load(context.Background(), owner, f.campaign.ID))

	require.NoError(t, s.Remove(models.KindCharacter, f.b.ID))
	assert.Empty(t, s.Relationships())
	assert.Len(t, s.Characters(), 1)
}

func TestStore_CreateRelationshipValidatesLocally(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := New(f.gw)
	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))

	_, err := s.CreateRelationship(ctx, owner, models.RelationshipInput{
		SourceCharacterID: f.a.ID, TargetCharacterID: "ghost", RelationType: "enemy",
	})
	assert.True(t, apperrors.IsValidation(err))
	_, err = s.CreateRelationship(ctx, owner, models.RelationshipInput{
		SourceCharacterID: f.a.ID, TargetCharacterID: f.b.ID, RelationType: "",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, f.gw.writeCalls)
}

func TestStore_SelfLoopAcceptedAndWarned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := New(f.gw)
	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))

	r, err := s.CreateRelationship(ctx, owner, models.RelationshipInput{
		SourceCharacterID: f.a.ID, TargetCharacterID: f.a.ID, RelationType: "internal conflict",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.gw.writeCalls)

	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarningSelfLoop, warnings[0].Code)
	assert.Equal(t, r.ID, warnings[0].EntityID)

	g := s.Diagram()
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 2)
}

func TestStore_WritesReflectGateway(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := New(f.gw)
	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))

	c, err := s.CreateCharacter(ctx, owner, models.CharacterInput{Name: "Cass", Attributes: models.Attributes{"age": 40}})
	require.NoError(t, err)
	assert.Equal(t, f.campaign.ID, c.CampaignID)
	got, ok := s.Character(c.ID)
	require.True(t, ok)
	assert.Equal(t, "Cass", got.Name)

	_, err = s.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: "other", Name: "Dex"})
	assert.True(t, apperrors.IsValidation(err))

	updated, err := s.UpdateCharacter(ctx, owner, c.ID, models.CharacterInput{Name: "Cassia", Role: models.RoleAlly})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAlly, updated.Role)

	l, err := s.CreateLoreEntry(ctx, owner, models.LoreEntryInput{Title: "Salt Wars", Content: "Two kingdoms fought over salt."})
	require.NoError(t, err)
	assert.Len(t, s.LoreEntries(), 2)

	require.NoError(t, s.DeleteLoreEntry(ctx, owner, l.ID))
	assert.Len(t, s.LoreEntries(), 1)

	camp, err := s.UpdateCampaign(ctx, owner, models.CampaignInput{Title: "Ashen Crown II"})
	require.NoError(t, err)
	loaded, _ := s.Campaign()
	assert.Equal(t, camp.Title, loaded.Title)

	// A fresh load agrees with the locally reflected state
	fresh := New(f.gw)
	require.NoError(t, fresh.Load(ctx, owner, f.campaign.ID))
	assert.Equal(t, fresh.Snapshot(), s.Snapshot())
}

func TestStore_FailedWriteLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := New(f.gw)
	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))
	before := s.Snapshot()

	_, err := s.UpdateCharacter(ctx, gateway.Caller{UserID: "intruder"}, f.a.ID, models.CharacterInput{Name: "Hijack"})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, before, s.Snapshot())
}

func TestStore_WritesOutsideLoadedCampaignAreNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := f.gw.Gateway

	// A second campaign of the same owner
	b, err := other.CreateCampaign(ctx, owner, models.CampaignInput{Title: "Salt Road"})
	require.NoError(t, err)
	x, err := other.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: b.ID, Name: "Xan"})
	require.NoError(t, err)
	y, err := other.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: b.ID, Name: "Yel"})
	require.NoError(t, err)
	rel, err := other.CreateRelationship(ctx, owner, models.RelationshipInput{
		CampaignID: b.ID, SourceCharacterID: x.ID, TargetCharacterID: y.ID, RelationType: models.RelationFriend,
	})
	require.NoError(t, err)
	lore, err := other.CreateLoreEntry(ctx, owner, models.LoreEntryInput{CampaignID: b.ID, Title: "Salt", Content: "Worth its weight."})
	require.NoError(t, err)

	s := New(f.gw)
	require.NoError(t, s.Load(ctx, owner, f.campaign.ID))
	before := s.Snapshot()
	f.gw.writeCalls = 0

	_, err = s.UpdateCharacter(ctx, owner, x.ID, models.CharacterInput{Name: "Hijack"})
	assert.True(t, apperrors.IsNotFound(err), "update character: %v", err)
	assert.True(t, apperrors.IsNotFound(s.DeleteCharacter(ctx, owner, y.ID)))
	_, err = s.UpdateRelationship(ctx, owner, rel.ID, models.RelationshipInput{RelationType: models.RelationEnemy})
	assert.True(t, apperrors.IsNotFound(err), "update relationship: %v", err)
	assert.True(t, apperrors.IsNotFound(s.DeleteRelationship(ctx, owner, rel.ID)))
	_, err = s.UpdateLoreEntry(ctx, owner, lore.ID, models.LoreEntryInput{Title: "t", Content: "hijacked"})
	assert.True(t, apperrors.IsNotFound(err), "update lore entry: %v", err)
	assert.True(t, apperrors.IsNotFound(s.DeleteLoreEntry(ctx, owner, lore.ID)))

	assert.Zero(t, f.gw.writeCalls)
	assert.Equal(t, before, s.Snapshot())

	gotX, err := other.GetCharacter(ctx, owner, x.ID)
	require.NoError(t, err)
	assert.Equal(t, "Xan", gotX.Name)
	_, err = other.GetCharacter(ctx, owner, y.ID)
	require.NoError(t, err)
	rels, err := other.ListRelationships(ctx, owner, b.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, models.RelationFriend, rels[0].RelationType)
	gotLore, err := other.GetLoreEntry(ctx, owner, lore.ID)
	require.NoError(t, err)
	assert.Equal(t, "Worth its weight.", gotLore.Content)
}

func TestStore_DiagramMatchesCharacterOrder(t *testing.T) {
	f := newFixture(t)
	s := New(f.gw)
	require.NoError(t, s.Load(context.Background(), owner, f.campaign.ID))

	g := s.Diagram()
	require.Len(t, g.Nodes, 2)
	chars := s.Characters()
	assert.Equal(t, chars[0].ID, g.Nodes[0].ID)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, models.RelationRival, g.Edges[0].Label)
}

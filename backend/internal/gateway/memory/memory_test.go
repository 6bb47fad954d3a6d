package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/models"
	apperrors "lore-keeper/backend/pkg/errors"
)

var (
	owner    = gateway.Caller{UserID: "user-1"}
	stranger = gateway.Caller{UserID: "user-2"}
)

func seedCampaign(t *testing.T, g *Gateway) *models.Campaign {
	t.Helper()
	c, err := g.CreateCampaign(context.Background(), owner, models.CampaignInput{Title: "Shattered Isles"})
	require.NoError(t, err)
	return c
}

func TestGateway_CampaignOwnership(t *testing.T) {
	ctx := context.Background()
	g := New()
	c := seedCampaign(t, g)

	got, err := g.GetCampaign(ctx, owner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shattered Isles", got.Title)

	_, err = g.GetCampaign(ctx, stranger, c.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = g.ListCharacters(ctx, stranger, c.ID)
	assert.True(t, apperrors.IsNotFound(err))

	list, err := g.ListCampaigns(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGateway_CharacterDefaultsAndImmutableCampaign(t *testing.T) {
	ctx := context.Background()
	g := New()
	c := seedCampaign(t, g)

	ch, err := g.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: c.ID, Name: "Aria"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleNonPlayerCharacter, ch.Role)

	_, err = g.UpdateCharacter(ctx, owner, ch.ID, models.CharacterInput{CampaignID: "other", Name: "Aria"})
	assert.True(t, apperrors.IsValidation(err))

	updated, err := g.UpdateCharacter(ctx, owner, ch.ID, models.CharacterInput{Name: "Aria Vel", Role: models.RoleVillain})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.CampaignID)
	assert.Equal(t, models.RoleVillain, updated.Role)
}

func TestGateway_RelationshipEndpointsMustShareCampaign(t *testing.T) {
	ctx := context.Background()
	g := New()
	c1 := seedCampaign(t, g)
	c2 := seedCampaign(t, g)

	a, err := g.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: c1.ID, Name: "A"})
	require.NoError(t, err)
	b, err := g.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: c2.ID, Name: "B"})
	require.NoError(t, err)

	_, err = g.CreateRelationship(ctx, owner, models.RelationshipInput{
		CampaignID: c1.ID, SourceCharacterID: a.ID, TargetCharacterID: b.ID, RelationType: "rival",
	})
	assert.True(t, apperrors.IsValidation(err))

	loop, err := g.CreateRelationship(ctx, owner, models.RelationshipInput{
		CampaignID: c1.ID, SourceCharacterID: a.ID, TargetCharacterID: a.ID, RelationType: "internal conflict",
	})
	require.NoError(t, err)
	assert.True(t, loop.SelfLoop())
}

func TestGateway_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	g := New()
	c := seedCampaign(t, g)

	a, _ := g.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: c.ID, Name: "A"})
	b, _ := g.CreateCharacter(ctx, owner, models.CharacterInput{CampaignID: c.ID, Name: "B"})
	_, err := g.CreateRelationship(ctx, owner, models.RelationshipInput{
		CampaignID: c.ID, SourceCharacterID: a.ID, TargetCharacterID: b.ID, RelationType: "friend",
	})
	require.NoError(t, err)
	_, err = g.CreateLoreEntry(ctx, owner, models.LoreEntryInput{CampaignID: c.ID, Title: "T", Content: "C"})
	require.NoError(t, err)

	require.NoError(t, g.DeleteCharacter(ctx, owner, b.ID))
	rels, err := g.ListRelationships(ctx, owner, c.ID)
	require.NoError(t, err)
	assert.Empty(t, rels)

	require.NoError(t, g.DeleteCampaign(ctx, owner, c.ID))
	assert.Empty(t, g.characters)
	assert.Empty(t, g.lore)
	_, err = g.GetCharacter(ctx, owner, a.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

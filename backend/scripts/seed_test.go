package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/gateway/memory"
	"lore-keeper/backend/internal/store"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	caller := gateway.Caller{UserID: "demo-user"}

	campaign, created, err := seedDemo(ctx, gw, caller, false)
	require.NoError(t, err)
	assert.True(t, created)

	st := store.New(gw)
	require.NoError(t, st.Load(ctx, caller, campaign.ID))
	assert.Len(t, st.Characters(), len(demoCharacters))
	assert.Len(t, st.Relationships(), len(demoRelationships))
	assert.Len(t, st.LoreEntries(), len(demoLore))
	assert.Empty(t, st.Warnings())

	again, created, err := seedDemo(ctx, gw, caller, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, campaign.ID, again.ID)

	fresh, created, err := seedDemo(ctx, gw, caller, true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, campaign.ID, fresh.ID)

	campaigns, err := gw.ListCampaigns(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lore-keeper/backend/internal/api"
	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/gateway/memory"
	"lore-keeper/backend/internal/models"
	"lore-keeper/backend/internal/orchestrator"
	"lore-keeper/backend/internal/store"
	apperrors "lore-keeper/backend/pkg/errors"
)

var secret = []byte("client-test-secret")

// stubCollaborator answers every AI call with a fixed body
type stubCollaborator struct {
	body string
}

func (s *stubCollaborator) DeepDive(ctx context.Context, caller gateway.Caller, fragment orchestrator.Fragment) (json.RawMessage, error) {
	return json.RawMessage(s.body), nil
}

func (s *stubCollaborator) ConsistencyCheck(ctx context.Context, caller gateway.Caller, campaignID, newContent string) (json.RawMessage, error) {
	return json.RawMessage(s.body), nil
}

func newTestClient(t *testing.T, collab orchestrator.Collaborator) (*Client, *memory.Gateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := memory.New()
	srv := httptest.NewServer(api.NewRouter(api.Deps{Gateway: gw, Collaborator: collab, JWTSecret: secret}))
	t.Cleanup(srv.Close)

	token, err := api.IssueToken(secret, "user-1", time.Hour)
	require.NoError(t, err)
	return New(srv.URL+"/", token, 5*time.Second), gw
}

func TestClientDrivesStore(t *testing.T) {
	c, _ := newTestClient(t, &stubCollaborator{})
	ctx := context.Background()
	caller := gateway.Caller{}

	version, err := c.Health(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, version)

	campaign, err := c.CreateCampaign(ctx, caller, models.CampaignInput{Title: "Ashen Crown"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", campaign.UserID)

	st := store.New(c)
	require.NoError(t, st.Load(ctx, caller, campaign.ID))

	a, err := st.CreateCharacter(ctx, caller, models.CharacterInput{Name: "Aria", Role: models.RolePlayerCharacter})
	require.NoError(t, err)
	b, err := st.CreateCharacter(ctx, caller, models.CharacterInput{Name: "Bram", Role: "dragon"})
	require.NoError(t, err)
	_, err = st.CreateRelationship(ctx, caller, models.RelationshipInput{SourceCharacterID: a.ID, TargetCharacterID: b.ID, RelationType: "rival"})
	require.NoError(t, err)

	fresh := store.New(c)
	require.NoError(t, fresh.Load(ctx, caller, campaign.ID))
	assert.Len(t, fresh.Characters(), 2)
	assert.Len(t, fresh.Relationships(), 1)
	assert.Len(t, fresh.Diagram().Edges, 1)
	assert.NotEmpty(t, fresh.Warnings())

	require.NoError(t, c.DeleteCharacter(ctx, caller, b.ID))
	rels, err := c.ListRelationships(ctx, caller, campaign.ID)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestClientErrorKinds(t *testing.T) {
	c, gw := newTestClient(t, &stubCollaborator{})
	ctx := context.Background()

	_, err := c.GetCampaign(ctx, gateway.Caller{}, "missing")
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)

	theirs, err := gw.CreateCampaign(ctx, gateway.Caller{UserID: "user-2"}, models.CampaignInput{Title: "Theirs"})
	require.NoError(t, err)
	_, err = c.ListCharacters(ctx, gateway.Caller{}, theirs.ID)
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)

	_, err = c.CreateCampaign(ctx, gateway.Caller{}, models.CampaignInput{Title: "  "})
	assert.True(t, apperrors.IsValidation(err), "got %v", err)

	_, err = c.ListCampaigns(ctx, gateway.Caller{Token: "bogus"})
	assert.True(t, apperrors.IsTransport(err), "got %v", err)
	var te *apperrors.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
}

func TestClientConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, "token", time.Second)
	_, err := c.ListCampaigns(context.Background(), gateway.Caller{})
	assert.True(t, apperrors.IsTransport(err), "got %v", err)
}

func TestClientUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := New(srv.URL, "token", time.Second)
	_, err := c.ListCampaigns(context.Background(), gateway.Caller{})
	assert.True(t, apperrors.IsMalformedResponse(err), "got %v", err)

	_, err = c.DeepDive(context.Background(), gateway.Caller{}, orchestrator.Fragment{"name": "Aria"})
	assert.True(t, apperrors.IsMalformedResponse(err), "got %v", err)
}

func TestClientAsCollaborator(t *testing.T) {
	c, _ := newTestClient(t, &stubCollaborator{body: `{"is_consistent": true, "warnings": []}`})
	ctx := context.Background()

	result, err := orchestrator.NewConsistencyChecker(c).Check(ctx, gateway.Caller{}, "c1", "The king lives.")
	require.NoError(t, err)
	assert.True(t, result.IsConsistent)
	assert.Empty(t, result.Warnings)

	c2, _ := newTestClient(t, &stubCollaborator{body: `{"suggestions": "one"}`})
	_, err = orchestrator.NewDeepDiveExpander(c2).Expand(ctx, gateway.Caller{}, orchestrator.Fragment{"name": "Aria"})
	assert.True(t, apperrors.IsMalformedResponse(err), "got %v", err)
}

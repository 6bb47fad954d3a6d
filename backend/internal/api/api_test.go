package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/gateway/memory"
	"lore-keeper/backend/internal/models"
	"lore-keeper/backend/internal/orchestrator"
)

var testSecret = []byte("test-secret")

type mockCollaborator struct {
	body  string
	calls int
}

func (m *mockCollaborator) DeepDive(ctx context.Context, caller gateway.Caller, fragment orchestrator.Fragment) (json.RawMessage, error) {
	m.calls++
	return json.RawMessage(m.body), nil
}

func (m *mockCollaborator) ConsistencyCheck(ctx context.Context, caller gateway.Caller, campaignID, newContent string) (json.RawMessage, error) {
	m.calls++
	return json.RawMessage(m.body), nil
}

type testServer struct {
	router *gin.Engine
	gw     *memory.Gateway
	collab *mockCollaborator
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := memory.New()
	collab := &mockCollaborator{}
	token, err := IssueToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	return &testServer{
		router: NewRouter(Deps{Gateway: gw, Collaborator: collab, JWTSecret: testSecret, AllowedOrigins: []string{"http://localhost:3000"}}),
		gw:     gw,
		collab: collab,
		token:  token,
	}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""

	w := ts.do("GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, w)["status"])
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	ts.token = ""
	assert.Equal(t, http.StatusUnauthorized, ts.do("GET", "/api/campaigns", nil).Code)

	ts.token = "not-a-jwt"
	assert.Equal(t, http.StatusUnauthorized, ts.do("GET", "/api/campaigns", nil).Code)

	other, err := IssueToken([]byte("other-secret"), "user-1", time.Hour)
	require.NoError(t, err)
	ts.token = other
	assert.Equal(t, http.StatusUnauthorized, ts.do("GET", "/api/campaigns", nil).Code)

	expired, err := IssueToken(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)
	ts.token = expired
	w := ts.do("GET", "/api/campaigns", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token expired", decode[map[string]any](t, w)["error"])
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest("OPTIONS", "/api/campaigns", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardOmitsCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Deps{Gateway: memory.New(), Collaborator: &mockCollaborator{}, JWTSecret: testSecret, AllowedOrigins: []string{"*", "http://localhost:3000"}})

	req, _ := http.NewRequest("OPTIONS", "/api/campaigns", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://anywhere.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCampaignFlowAndGraph(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/campaigns", map[string]any{"title": "Ashen Crown"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	campaign := decode[models.Campaign](t, w)
	assert.Equal(t, "user-1", campaign.UserID)

	w = ts.do("POST", "/api/characters", map[string]any{"campaign_id": campaign.ID, "name": "Aria", "role": "pc", "attributes": map[string]any{"age": 31}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[models.Character](t, w)
	w = ts.do("POST", "/api/characters", map[string]any{"campaign_id": campaign.ID, "name": "Bram"})
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[models.Character](t, w)
	assert.Equal(t, models.RoleNonPlayerCharacter, b.Role)

	w = ts.do("POST", "/api/relationships", map[string]any{
		"campaign_id": campaign.ID, "source_character_id": a.ID, "target_character_id": b.ID, "relation_type": "rival",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do("GET", "/api/campaigns/"+campaign.ID+"/graph", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	graph := decode[GraphResponse](t, w)
	require.Len(t, graph.Graph.Nodes, 2)
	require.Len(t, graph.Graph.Edges, 1)
	assert.Equal(t, "rival", graph.Graph.Edges[0].Label)
	assert.Empty(t, graph.Warnings)

	w = ts.do("GET", "/api/characters?campaign_id="+campaign.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Character](t, w), 2)

	w = ts.do("DELETE", "/api/characters/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do("GET", "/api/relationships?campaign_id="+campaign.ID, nil)
	assert.Empty(t, decode[[]models.Relationship](t, w))
}

func TestErrorKinds(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/campaigns", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decode[map[string]any](t, w)["kind"])

	w = ts.do("POST", "/api/campaigns", map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do("GET", "/api/characters", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do("GET", "/api/campaigns/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[map[string]any](t, w)["kind"])

	// Another user's campaign looks missing
	c, err := ts.gw.CreateCampaign(context.Background(), gateway.Caller{UserID: "user-2"}, models.CampaignInput{Title: "Theirs"})
	require.NoError(t, err)
	w = ts.do("GET", "/api/campaigns/"+c.ID+"/graph", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsistencyCheckEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.collab.body = `{"is_consistent": false, "warnings": ["contradicts entry X"]}`

	w := ts.do("POST", "/api/ai/consistency-check", map[string]any{"campaign_id": "c1", "new_content": "The king lives."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"is_consistent": false, "warnings": ["contradicts entry X"]}`, w.Body.String())

	w = ts.do("POST", "/api/ai/consistency-check", map[string]any{"campaign_id": "c1", "new_content": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, ts.collab.calls)

	ts.collab.body = `{"warnings": []}`
	w = ts.do("POST", "/api/ai/consistency-check", map[string]any{"campaign_id": "c1", "new_content": "x"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "malformed_response", decode[map[string]any](t, w)["kind"])
}

func TestDeepDiveEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.collab.body = `{"suggestions": ["Secretly royal"]}`

	w := ts.do("POST", "/api/ai/deep-dive", map[string]any{"input": map[string]any{"name": "Aria"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"suggestions": ["Secretly royal"]}`, w.Body.String())

	w = ts.do("POST", "/api/ai/deep-dive", map[string]any{"input": "Aria"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do("POST", "/api/ai/deep-dive", map[string]any{"input": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, ts.collab.calls)
}

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lore-keeper/backend/internal/api"
	"lore-keeper/backend/internal/assistant"
	"lore-keeper/backend/internal/constants"
	"lore-keeper/backend/internal/gateway/memory"
	"lore-keeper/backend/pkg/config"
)

func TestBuildGateway_Memory(t *testing.T) {
	cfg := &config.Config{StorageBackend: config.StorageMemory}
	gw, closeFn, err := buildGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.Gateway{}, gw)
}

func TestBuildGateway_Unknown(t *testing.T) {
	_, _, err := buildGateway(context.Background(), &config.Config{StorageBackend: "sqlite"})
	assert.Error(t, err)
}

func TestJWTSecret(t *testing.T) {
	assert.Equal(t, []byte("s3cret"), jwtSecret(&config.Config{JWTSecret: "s3cret"}, zap.NewNop()))
	assert.Equal(t, []byte(constants.DevJWTSecret), jwtSecret(&config.Config{}, zap.NewNop()))
}

func TestServerWiring(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gw := memory.New()
	secret := jwtSecret(&config.Config{}, zap.NewNop())
	router := api.NewRouter(api.Deps{
		Gateway:      gw,
		Collaborator: assistant.New(nil, gw),
		JWTSecret:    secret,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/health", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := api.IssueToken(secret, "user-1", time.Minute)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/campaigns", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

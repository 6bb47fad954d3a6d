package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lore-keeper/backend/pkg/errors"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.AllowedOrigins)
	assert.Equal(t, 2048, cfg.LLMMaxTokens)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_ProductionDefaultsToNeo4j(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("NEO4J_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")

	cfg := FromEnv()
	assert.Equal(t, StorageNeo4j, cfg.StorageBackend)

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "Neo4jPassword")
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := FromEnv()
	cfg.StorageBackend = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvList("ALLOWED_ORIGINS", nil))
}

package config

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	apperrors "lore-keeper/backend/pkg/errors"
)

// Storage backends for the persistence gateway
const (
	StorageMemory = "memory"
	StorageNeo4j  = "neo4j"
)

// Config holds all application configuration
type Config struct {
	// App
	Port           string
	Env            string
	AllowedOrigins []string

	// Persistence
	StorageBackend string
	Neo4jURI       string
	Neo4jUser      string
	Neo4jPassword  string
	Neo4jDatabase  string

	// AI
	LLMBaseURL   string
	LLMAPIKey    string
	ModelID      string
	LLMMaxTokens int

	// Auth: HS256 secret used to verify bearer tokens
	JWTSecret string

	// CLI
	APIURL   string
	APIToken string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a Config from the process environment without validating it
func FromEnv() *Config {
	env := getEnv("ENV", "development")
	defaultBackend := StorageMemory
	if env == "production" {
		defaultBackend = StorageNeo4j
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            env,
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
		StorageBackend: getEnv("STORAGE_BACKEND", defaultBackend),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:  getEnv("NEO4J_DATABASE", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		ModelID:        getEnv("MODEL_ID", "anthropic/claude-3.5-sonnet"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		APIURL:         getEnv("API_URL", "http://localhost:8080"),
		APIToken:       getEnv("API_TOKEN", ""),
	}
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.StorageBackend, validation.Required, validation.In(StorageMemory, StorageNeo4j)),
		validation.Field(&c.Neo4jURI, validation.When(c.StorageBackend == StorageNeo4j, validation.Required)),
		validation.Field(&c.Neo4jUser, validation.When(c.StorageBackend == StorageNeo4j, validation.Required)),
		validation.Field(&c.Neo4jPassword, validation.When(c.StorageBackend == StorageNeo4j, validation.Required)),
		validation.Field(&c.LLMBaseURL, validation.Required),
		validation.Field(&c.ModelID, validation.Required),
		validation.Field(&c.LLMMaxTokens, validation.Min(1)),
		// Tokens cannot be verified without a secret outside development
		validation.Field(&c.JWTSecret, validation.When(c.IsProduction(), validation.Required)),
	)
	if err != nil {
		return apperrors.NewConfig("environment", err)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

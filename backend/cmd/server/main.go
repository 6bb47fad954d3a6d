package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lore-keeper/backend/internal/adapter"
	"lore-keeper/backend/internal/api"
	"lore-keeper/backend/internal/assistant"
	"lore-keeper/backend/internal/constants"
	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/gateway/memory"
	"lore-keeper/backend/internal/graph"
	"lore-keeper/backend/pkg/config"
	"lore-keeper/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting lore-keeper API server...",
		zap.String("version", constants.Version),
		zap.String("storage", cfg.StorageBackend),
	)

	ctx := context.Background()
	gw, closeGateway, err := buildGateway(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize persistence gateway", zap.Error(err))
	}
	defer closeGateway()

	// Initialize dependencies
	llmAdapter := adapter.NewLLMAdapter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID, cfg.LLMMaxTokens)
	collaborator := assistant.New(llmAdapter, gw)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Gateway:        gw,
		Collaborator:   collaborator,
		JWTSecret:      jwtSecret(cfg, log),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// buildGateway selects the persistence backend. The returned func releases it.
func buildGateway(ctx context.Context, cfg *config.Config) (gateway.Gateway, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return memory.New(), func() {}, nil
	case config.StorageNeo4j:
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			_ = driver.Close(ctx)
			return nil, nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
		}

		repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		return repo, func() { _ = repo.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// jwtSecret returns the configured secret, falling back to a fixed one in development
func jwtSecret(cfg *config.Config, log *zap.Logger) []byte {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret)
	}
	log.Warn("JWT_SECRET not set, using the development secret")
	return []byte(constants.DevJWTSecret)
}

// Package graph is the Neo4j persistence gateway.
//
// Schema:
//
//	(:Campaign {id, user_id, title, description, created_at, updated_at})
//	(:Campaign)-[:HAS_CHARACTER]->(:Character {id, campaign_id, name, role, attributes, background, ...})
//	(:Campaign)-[:HAS_LORE]->(:LoreEntry {id, campaign_id, title, category, content, ...})
//	(:Character)-[:RELATES {id, campaign_id, relation_type, description, created_at}]->(:Character)
//
// Character attributes are stored as a JSON string. Ownership is checked in every query
// by matching the campaign's user_id, so a foreign record simply yields no rows.
package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

var _ gateway.Gateway = (*Repository)(nil)

// Repository handles all Neo4j database operations
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewRepository creates a new graph repository. An empty database uses the server default.
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

var schemaStatements = []string{
	`CREATE CONSTRAINT campaign_id IF NOT EXISTS FOR (c:Campaign) REQUIRE c.id IS UNIQUE`,
	`CREATE CONSTRAINT character_id IF NOT EXISTS FOR (ch:Character) REQUIRE ch.id IS UNIQUE`,
	`CREATE CONSTRAINT lore_entry_id IF NOT EXISTS FOR (l:LoreEntry) REQUIRE l.id IS UNIQUE`,
	`CREATE INDEX campaign_owner IF NOT EXISTS FOR (c:Campaign) ON (c.user_id)`,
	`CREATE INDEX relates_id IF NOT EXISTS FOR ()-[r:RELATES]-() ON (r.id)`,
}

// EnsureSchema creates the uniqueness constraints and indexes. It is idempotent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.run(ctx, neo4j.AccessModeWrite, "ensure schema", stmt, nil); err != nil {
			return err
		}
	}
	r.logger.Info("Neo4j schema ensured", zap.Int("statements", len(schemaStatements)))
	return nil
}

func (r *Repository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
}

// run executes one auto-commit query and collects its records. Driver failures become
// TransportErrors.
func (r *Repository) run(ctx context.Context, mode neo4j.AccessMode, operation, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := r.session(ctx, mode)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, r.transport(operation, err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, r.transport(operation, err)
	}
	return records, nil
}

// runWrite executes work in a managed write transaction
func (r *Repository) runWrite(ctx context.Context, operation string, work neo4j.ManagedTransactionWork) (any, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, work)
	if err != nil {
		if apperrors.Kind(err) != "" {
			return nil, err
		}
		return nil, r.transport(operation, err)
	}
	return out, nil
}

func (r *Repository) transport(operation string, err error) error {
	r.logger.Error("Neo4j query failed", zap.String("operation", operation), zap.Error(err))
	return apperrors.NewTransport(operation, 0, err)
}

func (r *Repository) timestamp() (time.Time, string) {
	now := r.now()
	return now, now.Format(time.RFC3339Nano)
}

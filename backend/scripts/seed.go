package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/graph"
	"lore-keeper/backend/internal/models"
	"lore-keeper/backend/pkg/config"
	"lore-keeper/backend/pkg/logger"
)

const demoTitle = "The Shattered Crown"

func main() {
	userID := flag.String("user-id", "demo-user", "Owner of the demo campaign")
	force := flag.Bool("force", false, "Force recreation even if the campaign exists")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)

	log.Info("Creating constraints and indexes...")
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}

	campaign, created, err := seedDemo(ctx, repo, gateway.Caller{UserID: *userID}, *force)
	if err != nil {
		log.Fatal("Failed to seed demo campaign", zap.Error(err))
	}
	if !created {
		log.Info("Demo campaign already exists, skipping creation (use -force to recreate)",
			zap.String("campaign_id", campaign.ID),
		)
		os.Exit(0)
	}

	log.Info("Seeding completed",
		zap.String("campaign_id", campaign.ID),
		zap.String("user_id", *userID),
	)
}

type demoCharacter struct {
	name       string
	role       models.Role
	background string
	attributes models.Attributes
}

type demoRelationship struct {
	source, target int
	relationType   string
	description    string
}

var demoCharacters = []demoCharacter{
	{
		name:       "Aria Vell",
		role:       models.RolePlayerCharacter,
		background: "A disgraced royal cartographer who mapped the road to the Crown's vault.",
		attributes: models.Attributes{"class": "ranger", "level": 4},
	},
	{
		name:       "Bram Ostrander",
		role:       models.RoleVillain,
		background: "Regent of Highmere, keeper of the largest Crown shard.",
		attributes: models.Attributes{"title": "Lord Regent"},
	},
	{
		name:       "Sister Maelin",
		role:       models.RoleAlly,
		background: "Archivist of the Quiet Order; she remembers the coronation that never happened.",
	},
	{
		name:       "Tomas the Ferryman",
		role:       models.RoleNonPlayerCharacter,
		background: "Runs the only crossing over the Grey Mere and hears every rumour.",
	},
}

var demoRelationships = []demoRelationship{
	{source: 0, target: 1, relationType: "rival", description: "Aria wants the shard Bram guards."},
	{source: 2, target: 0, relationType: "mentor", description: "Maelin taught Aria to read the old maps."},
	{source: 1, target: 3, relationType: "employer", description: "Bram pays Tomas to report travellers."},
}

var demoLore = []models.LoreEntryInput{
	{
		Title:    "The Shattering",
		Category: "history",
		Content:  "Forty years ago the Crown of Highmere broke into five shards on the night of the failed coronation.",
	},
	{
		Title:    "Highmere",
		Category: "location",
		Content:  "A lake city ruled by a regent until a true heir holds all five shards.",
	},
	{
		Title:    "The Quiet Order",
		Category: "faction",
		Content:  "Archivists sworn to record but never speak of the coronation night.",
	},
}

// seedDemo creates the demo campaign for caller. An existing campaign with the demo title is
// kept unless force is set, in which case it is deleted with everything in it first.
func seedDemo(ctx context.Context, gw gateway.Gateway, caller gateway.Caller, force bool) (*models.Campaign, bool, error) {
	campaigns, err := gw.ListCampaigns(ctx, caller)
	if err != nil {
		return nil, false, err
	}
	for i := range campaigns {
		if campaigns[i].Title != demoTitle {
			continue
		}
		if !force {
			return &campaigns[i], false, nil
		}
		if err := gw.DeleteCampaign(ctx, caller, campaigns[i].ID); err != nil {
			return nil, false, fmt.Errorf("failed to delete existing demo campaign: %w", err)
		}
	}

	campaign, err := gw.CreateCampaign(ctx, caller, models.CampaignInput{
		Title:       demoTitle,
		Description: "Five shards, one throne, and a regent who would rather it stayed broken.",
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create campaign: %w", err)
	}

	ids := make([]string, len(demoCharacters))
	for i, c := range demoCharacters {
		created, err := gw.CreateCharacter(ctx, caller, models.CharacterInput{
			CampaignID: campaign.ID,
			Name:       c.name,
			Role:       c.role,
			Background: c.background,
			Attributes: c.attributes,
		}.Normalized())
		if err != nil {
			return nil, false, fmt.Errorf("failed to create character %s: %w", c.name, err)
		}
		ids[i] = created.ID
	}

	for _, r := range demoRelationships {
		if _, err := gw.CreateRelationship(ctx, caller, models.RelationshipInput{
			CampaignID:        campaign.ID,
			SourceCharacterID: ids[r.source],
			TargetCharacterID: ids[r.target],
			RelationType:      r.relationType,
			Description:       r.description,
		}); err != nil {
			return nil, false, fmt.Errorf("failed to create relationship %s: %w", r.relationType, err)
		}
	}

	for _, entry := range demoLore {
		entry.CampaignID = campaign.ID
		if _, err := gw.CreateLoreEntry(ctx, caller, entry); err != nil {
			return nil, false, fmt.Errorf("failed to create lore entry %s: %w", entry.Title, err)
		}
	}

	return campaign, true, nil
}

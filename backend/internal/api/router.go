// Package api exposes the campaign gateway, the relationship graph and the AI workflows
// over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lore-keeper/backend/internal/constants"
	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/internal/orchestrator"
	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

// Deps are the collaborators the handlers need
type Deps struct {
	Gateway        gateway.Gateway
	Collaborator   orchestrator.Collaborator
	JWTSecret      []byte
	AllowedOrigins []string
}

// Server holds the handler dependencies
type Server struct {
	gw          gateway.Gateway
	consistency *orchestrator.ConsistencyChecker
	deepDive    *orchestrator.DeepDiveExpander
	logger      *zap.Logger
}

// NewRouter builds the gin engine with logging, recovery, CORS and the /api routes
func NewRouter(deps Deps) *gin.Engine {
	s := &Server{
		gw:          deps.Gateway,
		consistency: orchestrator.NewConsistencyChecker(deps.Collaborator),
		deepDive:    orchestrator.NewDeepDiveExpander(deps.Collaborator),
		logger:      logger.Get(),
	}

	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(cors(deps.AllowedOrigins))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.Version})
	})

	protected := api.Group("")
	protected.Use(auth(deps.JWTSecret))
	{
		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", s.listCampaigns)
			campaigns.POST("", s.createCampaign)
			campaigns.GET("/:id", s.getCampaign)
			campaigns.PUT("/:id", s.updateCampaign)
			campaigns.DELETE("/:id", s.deleteCampaign)
			campaigns.GET("/:id/graph", s.campaignGraph)
		}

		characters := protected.Group("/characters")
		{
			characters.GET("", s.listCharacters)
			characters.POST("", s.createCharacter)
			characters.GET("/:id", s.getCharacter)
			characters.PUT("/:id", s.updateCharacter)
			characters.DELETE("/:id", s.deleteCharacter)
		}

		relationships := protected.Group("/relationships")
		{
			relationships.GET("", s.listRelationships)
			relationships.POST("", s.createRelationship)
			relationships.PUT("/:id", s.updateRelationship)
			relationships.DELETE("/:id", s.deleteRelationship)
		}

		loreEntries := protected.Group("/lore-entries")
		{
			loreEntries.GET("", s.listLoreEntries)
			loreEntries.POST("", s.createLoreEntry)
			loreEntries.GET("/:id", s.getLoreEntry)
			loreEntries.PUT("/:id", s.updateLoreEntry)
			loreEntries.DELETE("/:id", s.deleteLoreEntry)
		}

		ai := protected.Group("/ai")
		{
			ai.POST("/deep-dive", s.deepDiveHandler)
			ai.POST("/consistency-check", s.consistencyCheckHandler)
		}
	}

	return router
}

// respondError writes {"error", "kind"} with the status mapped from the error kind
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	kind := apperrors.Kind(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	if kind == "" {
		kind = "internal"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.Message(err), "kind": kind})
}

// bindJSON decodes the body; binding failures are validation errors
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxRequestBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, apperrors.WrapValidation("body", err))
		return false
	}
	return true
}

func (s *Server) caller(c *gin.Context) gateway.Caller {
	caller, _ := callerFrom(c)
	return caller
}

// requireQuery reads a mandatory query parameter
func (s *Server) requireQuery(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		s.respondError(c, apperrors.NewValidation(name, "is required"))
		return "", false
	}
	return v, true
}

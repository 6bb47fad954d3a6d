package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lore-keeper/backend/internal/orchestrator"
)

// DeepDiveRequest is the body of POST /ai/deep-dive
type DeepDiveRequest struct {
	Input orchestrator.Fragment `json:"input" binding:"required"`
}

// ConsistencyCheckRequest is the body of POST /ai/consistency-check
type ConsistencyCheckRequest struct {
	CampaignID string `json:"campaign_id" binding:"required"`
	NewContent string `json:"new_content" binding:"required"`
}

func (s *Server) deepDiveHandler(c *gin.Context) {
	var req DeepDiveRequest
	if !s.bindJSON(c, &req) {
		return
	}

	result, err := s.deepDive.Expand(c.Request.Context(), s.caller(c), req.Input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) consistencyCheckHandler(c *gin.Context) {
	var req ConsistencyCheckRequest
	if !s.bindJSON(c, &req) {
		return
	}

	result, err := s.consistency.Check(c.Request.Context(), s.caller(c), req.CampaignID, req.NewContent)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

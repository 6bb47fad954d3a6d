package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lore-keeper/backend/internal/diagram"
	"lore-keeper/backend/internal/models"
	"lore-keeper/backend/internal/store"
)

// Campaigns

func (s *Server) listCampaigns(c *gin.Context) {
	campaigns, err := s.gw.ListCampaigns(c.Request.Context(), s.caller(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (s *Server) getCampaign(c *gin.Context) {
	campaign, err := s.gw.GetCampaign(c.Request.Context(), s.caller(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) createCampaign(c *gin.Context) {
	var in models.CampaignInput
	if !s.bindJSON(c, &in) {
		return
	}
	campaign, err := s.gw.CreateCampaign(c.Request.Context(), s.caller(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (s *Server) updateCampaign(c *gin.Context) {
	var in models.CampaignInput
	if !s.bindJSON(c, &in) {
		return
	}
	campaign, err := s.gw.UpdateCampaign(c.Request.Context(), s.caller(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) deleteCampaign(c *gin.Context) {
	if err := s.gw.DeleteCampaign(c.Request.Context(), s.caller(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GraphResponse is the body of GET /campaigns/:id/graph
type GraphResponse struct {
	Graph    diagram.Graph    `json:"graph" yaml:"graph"`
	Warnings []models.Warning `json:"warnings" yaml:"warnings"`
}

// campaignGraph loads the campaign into a fresh store and returns its relationship graph
func (s *Server) campaignGraph(c *gin.Context) {
	st := store.New(s.gw)
	if err := st.Load(c.Request.Context(), s.caller(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	warnings := st.Warnings()
	if warnings == nil {
		warnings = []models.Warning{}
	}
	c.JSON(http.StatusOK, GraphResponse{Graph: st.Diagram(), Warnings: warnings})
}

// Characters

func (s *Server) listCharacters(c *gin.Context) {
	campaignID, ok := s.requireQuery(c, "campaign_id")
	if !ok {
		return
	}
	characters, err := s.gw.ListCharacters(c.Request.Context(), s.caller(c), campaignID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

func (s *Server) getCharacter(c *gin.Context) {
	character, err := s.gw.GetCharacter(c.Request.Context(), s.caller(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (s *Server) createCharacter(c *gin.Context) {
	var in models.CharacterInput
	if !s.bindJSON(c, &in) {
		return
	}
	character, err := s.gw.CreateCharacter(c.Request.Context(), s.caller(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

func (s *Server) updateCharacter(c *gin.Context) {
	var in models.CharacterInput
	if !s.bindJSON(c, &in) {
		return
	}
	character, err := s.gw.UpdateCharacter(c.Request.Context(), s.caller(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (s *Server) deleteCharacter(c *gin.Context) {
	if err := s.gw.DeleteCharacter(c.Request.Context(), s.caller(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Relationships

func (s *Server) listRelationships(c *gin.Context) {
	campaignID, ok := s.requireQuery(c, "campaign_id")
	if !ok {
		return
	}
	relationships, err := s.gw.ListRelationships(c.Request.Context(), s.caller(c), campaignID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, relationships)
}

func (s *Server) createRelationship(c *gin.Context) {
	var in models.RelationshipInput
	if !s.bindJSON(c, &in) {
		return
	}
	relationship, err := s.gw.CreateRelationship(c.Request.Context(), s.caller(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, relationship)
}

func (s *Server) updateRelationship(c *gin.Context) {
	var in models.RelationshipInput
	if !s.bindJSON(c, &in) {
		return
	}
	relationship, err := s.gw.UpdateRelationship(c.Request.Context(), s.caller(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, relationship)
}

func (s *Server) deleteRelationship(c *gin.Context) {
	if err := s.gw.DeleteRelationship(c.Request.Context(), s.caller(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Lore entries

func (s *Server) listLoreEntries(c *gin.Context) {
	campaignID, ok := s.requireQuery(c, "campaign_id")
	if !ok {
		return
	}
	entries, err := s.gw.ListLoreEntries(c.Request.Context(), s.caller(c), campaignID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) getLoreEntry(c *gin.Context) {
	entry, err := s.gw.GetLoreEntry(c.Request.Context(), s.caller(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) createLoreEntry(c *gin.Context) {
	var in models.LoreEntryInput
	if !s.bindJSON(c, &in) {
		return
	}
	entry, err := s.gw.CreateLoreEntry(c.Request.Context(), s.caller(c), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) updateLoreEntry(c *gin.Context) {
	var in models.LoreEntryInput
	if !s.bindJSON(c, &in) {
		return
	}
	entry, err := s.gw.UpdateLoreEntry(c.Request.Context(), s.caller(c), c.Param("id"), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteLoreEntry(c *gin.Context) {
	if err := s.gw.DeleteLoreEntry(c.Request.Context(), s.caller(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

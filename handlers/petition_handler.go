package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"documerge-backend/models"
	"documerge-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PetitionHandler handles HTTP requests for generated petitions
type PetitionHandler struct {
	petitionService *service.PetitionService
	documentService *service.DocumentService
	logger          zerolog.Logger
}

// NewPetitionHandler creates a new petition handler
func NewPetitionHandler(petitionService *service.PetitionService, documentService *service.DocumentService, logger zerolog.Logger) *PetitionHandler {
	return &PetitionHandler{
		petitionService: petitionService,
		documentService: documentService,
		logger:          logger,
	}
}

// GeneratePetitionRequest represents the request body for generating a petition
type GeneratePetitionRequest struct {
	PetitionModelID string          `json:"petition_model_id"`
	ClientID        string          `json:"client_id"`
	FormAnswers     map[string]bool `json:"form_answers"`
	Title           string          `json:"title"`
	CaseNumber      *string         `json:"case_number"`
}

// GeneratePetition handles POST /api/petitions/generate
func (h *PetitionHandler) GeneratePetition(c *gin.Context) {
	var req GeneratePetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(service.CodeInvalidRequest), err.Error())
		return
	}

	modelID, err := uuid.Parse(req.PetitionModelID)
	if err != nil {
		respondError(c, http.StatusBadRequest, string(service.CodeInvalidRequest), "Invalid petition_model_id format")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		respondError(c, http.StatusBadRequest, string(service.CodeInvalidRequest), "Invalid client_id format")
		return
	}

	answers := make(models.Answers, len(req.FormAnswers))
	for key, answer := range req.FormAnswers {
		questionID, err := uuid.Parse(key)
		if err != nil {
			respondError(c, http.StatusBadRequest, string(service.CodeInvalidRequest), fmt.Sprintf("Invalid question id %q in form_answers", key))
			return
		}
		answers[questionID] = answer
	}

	result, err := h.documentService.GeneratePetition(c.Request.Context(), service.GeneratePetitionRequest{
		ModelID:    modelID,
		ClientID:   clientID,
		Answers:    answers,
		Actor:      actorFrom(c),
		Title:      req.Title,
		CaseNumber: req.CaseNumber,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"petition": result.Petition,
			"theses":   result.Theses,
		},
	})
}

// GetPetition handles GET /api/petitions/:id
func (h *PetitionHandler) GetPetition(c *gin.Context) {
	petition, ok := h.authorize(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    petition,
	})
}

// GetPetitionContent handles GET /api/petitions/:id/content
func (h *PetitionHandler) GetPetitionContent(c *gin.Context) {
	petition, ok := h.authorize(c)
	if !ok {
		return
	}

	result, err := h.documentService.GetPetitionContent(c.Request.Context(), petition.ID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"petition": result.Petition,
			"content":  result.Content,
		},
	})
}

// UpdatePetitionContentRequest represents the request body for replacing petition content
type UpdatePetitionContentRequest struct {
	Content string  `json:"content" binding:"required"`
	Title   *string `json:"title"`
}

// UpdatePetitionContent handles PUT /api/petitions/:id/content
func (h *PetitionHandler) UpdatePetitionContent(c *gin.Context) {
	petition, ok := h.authorize(c)
	if !ok {
		return
	}

	var req UpdatePetitionContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(service.CodeInvalidRequest), err.Error())
		return
	}

	result, err := h.documentService.UpdatePetitionContent(c.Request.Context(), service.UpdatePetitionContentRequest{
		PetitionID: petition.ID,
		Content:    req.Content,
		Title:      req.Title,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Petition,
	})
}

// UpdatePetitionMetadataRequest represents the request body for saving petition metadata
type UpdatePetitionMetadataRequest struct {
	Title      *string `json:"title"`
	CaseNumber *string `json:"case_number"`
}

// UpdatePetitionMetadata handles PUT /api/petitions/:id
func (h *PetitionHandler) UpdatePetitionMetadata(c *gin.Context) {
	petition, ok := h.authorize(c)
	if !ok {
		return
	}

	var req UpdatePetitionMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(service.CodeInvalidRequest), err.Error())
		return
	}

	result, err := h.petitionService.UpdatePetitionMetadata(c.Request.Context(), service.UpdatePetitionMetadataRequest{
		ID:         petition.ID,
		Title:      req.Title,
		CaseNumber: req.CaseNumber,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Petition,
	})
}

// DownloadPetition handles GET /api/petitions/:id/download
func (h *PetitionHandler) DownloadPetition(c *gin.Context) {
	petition, ok := h.authorize(c)
	if !ok {
		return
	}

	result, err := h.documentService.GetPetitionFile(c.Request.Context(), petition.ID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(result.Filename)),
	}
	c.DataFromReader(http.StatusOK, int64(len(result.Data)), result.MimeType, bytes.NewReader(result.Data), extraHeaders)
}

// DeletePetition handles DELETE /api/petitions/:id
func (h *PetitionHandler) DeletePetition(c *gin.Context) {
	petition, ok := h.authorize(c)
	if !ok {
		return
	}

	if err := h.documentService.DeletePetition(c.Request.Context(), petition.ID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": petition.ID},
	})
}

// ListMyPetitions handles GET /api/my-petitions
func (h *PetitionHandler) ListMyPetitions(c *gin.Context) {
	userID := actorFrom(c).UserID
	h.list(c, service.ListPetitionsRequest{UserID: &userID})
}

// ListAllPetitions handles GET /api/petitions
func (h *PetitionHandler) ListAllPetitions(c *gin.Context) {
	h.list(c, service.ListPetitionsRequest{})
}

func (h *PetitionHandler) list(c *gin.Context, req service.ListPetitionsRequest) {
	result, err := h.petitionService.ListPetitions(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Petitions,
	})
}

// authorize loads the petition named in the path and checks that the caller may access it
func (h *PetitionHandler) authorize(c *gin.Context) (*models.GeneratedPetition, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid petition ID format")
		return nil, false
	}

	result, err := h.petitionService.GetPetition(c.Request.Context(), service.GetPetitionRequest{ID: id})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return nil, false
	}

	if !actorFrom(c).CanAccess(result.Petition) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this petition")
		return nil, false
	}
	return result.Petition, true
}

package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"documerge-backend/document"
	"documerge-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ThesisHandler handles HTTP requests for thesis documents
type ThesisHandler struct {
	documentService *service.DocumentService
	logger          zerolog.Logger
	maxFileSize     int64
}

// NewThesisHandler creates a new thesis handler
func NewThesisHandler(documentService *service.DocumentService, logger zerolog.Logger) *ThesisHandler {
	return &ThesisHandler{
		documentService: documentService,
		logger:          logger,
		maxFileSize:     10 * 1024 * 1024, // 10MB
	}
}

// UploadThesis handles POST /api/clients/:id/theses
func (h *ThesisHandler) UploadThesis(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID format")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), document.Extension) {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only "+document.Extension+" files are accepted")
		return
	}
	if fileHeader.Size > h.maxFileSize {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "FILE_READ_ERROR", err.Error())
		return
	}

	title := c.PostForm("title")
	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}
	var description *string
	if d := strings.TrimSpace(c.PostForm("description")); d != "" {
		description = &d
	}

	result, err := h.documentService.CreateThesis(c.Request.Context(), service.CreateThesisRequest{
		ClientID:    clientID,
		Title:       title,
		Description: description,
		Data:        data,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Thesis,
	})
}

// DeleteThesis handles DELETE /api/theses/:id
func (h *ThesisHandler) DeleteThesis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid thesis ID format")
		return
	}

	if err := h.documentService.DeleteThesis(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id},
	})
}

package handlers

import (
	"errors"
	"net/http"

	"documerge-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps a service error to its HTTP status
func respondServiceError(c *gin.Context, logger zerolog.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		respondError(c, http.StatusInternalServerError, string(service.CodeInternal), "internal error")
		return
	}

	status := statusFor(svcErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}

	body := gin.H{
		"code":    string(svcErr.Code),
		"message": svcErr.Reason(),
	}
	if svcErr.Stage != "" {
		body["stage"] = string(svcErr.Stage)
	}
	if svcErr.ThesisID != uuid.Nil {
		body["thesis_id"] = svcErr.ThesisID
	}
	c.JSON(status, gin.H{"success": false, "error": body})
}

func statusFor(code service.ErrorCode) int {
	switch code {
	case service.CodeInvalidRequest:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeNoApplicableThesis, service.CodeCorruptDocument:
		return http.StatusUnprocessableEntity
	case service.CodeThesisUnavailable:
		return http.StatusBadGateway
	case service.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

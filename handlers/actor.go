package handlers

import (
	"net/http"

	"documerge-backend/config"
	"documerge-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderUserID and HeaderUserRole carry the identity set by the authenticating gateway
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	actorKey = "actor"
)

// RequireActor reads the authenticated caller from the gateway headers
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader(HeaderUserID))
		if err != nil || userID == uuid.Nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or invalid "+HeaderUserID+" header")
			c.Abort()
			return
		}

		role, err := config.ParseRole(c.GetHeader(HeaderUserRole))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
			c.Abort()
			return
		}

		c.Set(actorKey, models.Actor{UserID: userID, Role: role})
		c.Next()
	}
}

// RequireAdministrator rejects callers that do not administer the firm
func RequireAdministrator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorFrom(c).IsAdministrator() {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "administrator role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

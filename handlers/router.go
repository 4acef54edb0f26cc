package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter registers every endpoint on a new engine
func NewRouter(logger zerolog.Logger, petitions *PetitionHandler, theses *ThesisHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api", RequireActor())
	{
		api.POST("/petitions/generate", petitions.GeneratePetition)
		api.GET("/my-petitions", petitions.ListMyPetitions)
		api.GET("/petitions/:id", petitions.GetPetition)
		api.PUT("/petitions/:id", petitions.UpdatePetitionMetadata)
		api.DELETE("/petitions/:id", petitions.DeletePetition)
		api.GET("/petitions/:id/content", petitions.GetPetitionContent)
		api.PUT("/petitions/:id/content", petitions.UpdatePetitionContent)
		api.GET("/petitions/:id/download", petitions.DownloadPetition)

		admin := api.Group("", RequireAdministrator())
		admin.GET("/petitions", petitions.ListAllPetitions)
		admin.POST("/clients/:id/theses", theses.UploadThesis)
		admin.DELETE("/theses/:id", theses.DeleteThesis)
	}

	return r
}

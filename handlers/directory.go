package handlers

import (
	"net/http"

	"dokta/models"
	"dokta/services/directory"
	"dokta/services/stats"
	"dokta/utils"

	"github.com/gin-gonic/gin"
)

// DirectoryHandler serves the reference data, search and platform stats.
type DirectoryHandler struct {
	Directory directory.DirectoryService
	Stats     stats.StatsService
}

// Root handles GET /api/.
func (h *DirectoryHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API de Réservation Médicale - Cameroun"})
}

// Specialties handles GET /api/specialties.
func (h *DirectoryHandler) Specialties(c *gin.Context) {
	specs, err := h.Directory.ListSpecialties(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, specs)
}

// Search handles GET /api/search?q=.
func (h *DirectoryHandler) Search(c *gin.Context) {
	results, err := h.Directory.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	c.JSON(http.StatusOK, results)
}

// PlatformStats handles GET /api/stats.
func (h *DirectoryHandler) PlatformStats(c *gin.Context) {
	st, err := h.Stats.PlatformStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, st)
}

// Health handles GET /health with the last dependency snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.CheckedAt.IsZero() && !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "message": "Hi, I'm Dokta", "dependencies": status})
}

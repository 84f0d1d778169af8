package handlers

import (
	"net/http"

	"dokta/models"
	"dokta/services/notification"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves /api/notifications.
type NotificationHandler struct {
	Notifications notification.NotificationService
}

// RegisterToken handles POST /api/notifications/register-token.
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	var req models.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Notifications.RegisterToken(c.Request.Context(), req); err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token enregistré avec succès"})
}

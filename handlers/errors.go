package handlers

import (
	"errors"
	"net/http"

	"dokta/services"
	"dokta/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP statuses.
// notFound is the message used for a 404.
func respondError(c *gin.Context, err error, notFound string) {
	var ve *services.ValidationError
	var ce *services.ConflictError
	switch {
	case errors.As(err, &ve):
		utils.JSONError(c, http.StatusBadRequest, ve.Message, ve.Field)
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, notFound, "")
	case errors.As(err, &ce):
		utils.JSONError(c, http.StatusConflict, ce.Message, ce.Code)
	case errors.Is(err, services.ErrUnauthorized):
		utils.JSONError(c, http.StatusUnauthorized, "Non autorisé", "")
	default:
		getLogger(c).Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Erreur interne du serveur", "")
	}
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Requête invalide", err.Error())
}

package handlers

import (
	"errors"
	"net/http"

	"dokta/middleware"
	"dokta/models"
	"dokta/services"
	"dokta/services/auth"
	"dokta/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves /api/auth and /api/users.
type AuthHandler struct {
	AuthService auth.AuthService
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.AuthService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "")
		return
	}
	getLogger(c).Info("user registered", zap.String("userID", resp.UserData.ID), zap.String("type", string(resp.UserData.Type)))
	c.JSON(http.StatusOK, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.AuthService.Login(c.Request.Context(), req)
	if errors.Is(err, services.ErrUnauthorized) {
		utils.JSONError(c, http.StatusUnauthorized, "Numéro de téléphone ou mot de passe incorrect", "")
		return
	}
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.AuthService.Logout(c.Request.Context(), c.GetString(middleware.ContextUserID)); err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	usr, err := h.AuthService.Me(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}
	usr, err := h.AuthService.UpdateProfile(c.Request.Context(), c.GetString(middleware.ContextUserID), upd)
	if err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour avec succès", "user": usr})
}

// Dependents handles GET /api/auth/dependents.
func (h *AuthHandler) Dependents(c *gin.Context) {
	deps, err := h.AuthService.Dependents(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	if deps == nil {
		deps = []models.Dependent{}
	}
	c.JSON(http.StatusOK, deps)
}

// AddDependent handles POST /api/auth/dependents.
func (h *AuthHandler) AddDependent(c *gin.Context) {
	var req models.DependentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dep, err := h.AuthService.AddDependent(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusCreated, dep)
}

// CreateUser handles POST /api/users. An Idempotency-Key makes retries safe.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req models.UserCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	usr, err := h.AuthService.CreateUser(c.Request.Context(), req, c.GetHeader(IdempotencyHeader))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, usr)
}

// GetUser handles GET /api/users/:id.
func (h *AuthHandler) GetUser(c *gin.Context) {
	usr, err := h.AuthService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusOK, usr)
}

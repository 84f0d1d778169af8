package middleware

import (
	"net/http"
	"strings"

	"dokta/models"
	"dokta/services/auth"
	"dokta/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by JWTAuth.
const (
	ContextUserID   = "userID"
	ContextUserType = "userType"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// JWTAuth requires a valid bearer token issued by the auth service.
func JWTAuth(authSvc auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "Missing or invalid Authorization header")
			return
		}

		usr, err := authSvc.Authenticate(c.Request.Context(), tokenString)
		if err != nil || usr == nil {
			utils.GetLogger().Debug("token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "Token invalide ou expiré", "")
			return
		}

		c.Set(ContextUserID, usr.ID)
		c.Set(ContextUserType, string(usr.Type))
		c.Next()
	}
}

// OptionalJWTAuth sets the user when a valid token is present and never aborts.
func OptionalJWTAuth(authSvc auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if usr, err := authSvc.Authenticate(c.Request.Context(), tokenString); err == nil && usr != nil {
				c.Set(ContextUserID, usr.ID)
				c.Set(ContextUserType, string(usr.Type))
			}
		}
		c.Next()
	}
}

// RequireDoctorSelf lets a doctor act only on the :id in the path.
// Must run after JWTAuth.
func RequireDoctorSelf() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserType) != string(models.UserTypeDoctor) {
			utils.JSONError(c, http.StatusForbidden, "Accès réservé aux médecins", "")
			return
		}
		if c.GetString(ContextUserID) != c.Param("id") {
			utils.JSONError(c, http.StatusForbidden, "Accès refusé", "doctor id does not match token")
			return
		}
		c.Next()
	}
}

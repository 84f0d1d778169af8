package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"dokta/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const devSecret = "dokta-dev-secret"

// Claims carried by access tokens. Subject is the user id.
type Claims struct {
	Telephone string `json:"telephone"`
	UserType  string `json:"user_type"`
	jwt.RegisteredClaims
}

func secretKey() []byte {
	if config.AppConfig.JWTSecret == "" {
		return []byte(devSecret)
	}
	return []byte(config.AppConfig.JWTSecret)
}

// TokenTTL returns the configured access token lifetime.
func TokenTTL() time.Duration {
	if config.AppConfig.JWTTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(config.AppConfig.JWTTTLMinutes) * time.Minute
}

// GenerateToken creates a signed HS256 token for the given user.
func GenerateToken(userID, telephone, userType string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Telephone: telephone,
		UserType:  userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string and returns its claims.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	return claims, nil
}

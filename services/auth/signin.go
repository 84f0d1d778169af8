package auth

import (
	"context"
	"errors"
	"fmt"

	"dokta/database"
	"dokta/models"
	"dokta/phone"
	"dokta/services"
	"dokta/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	tel, err := phone.Parse(req.Telephone)
	if err != nil {
		return nil, services.NewValidationError("telephone", err.Error())
	}

	u, err := s.Users.GetByPhone(ctx, tel)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("invalid phone number or password: %w", services.ErrUnauthorized)
		}
		s.Logger.Error("Login: failed to fetch user", zap.Error(err))
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.MotDePasse)); err != nil {
		return nil, fmt.Errorf("invalid phone number or password: %w", services.ErrUnauthorized)
	}
	return s.issueToken(ctx, u)
}

// issueToken signs a fresh token and makes it the user's only active one.
func (s *DefaultAuthService) issueToken(ctx context.Context, u *models.User) (*models.TokenResponse, error) {
	token, err := utils.GenerateToken(u.ID, u.Telephone, string(u.Type), utils.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	hash := utils.HashToken(token)
	if err := s.Users.RecordLogin(ctx, u.ID, hash); err != nil {
		return nil, err
	}
	u.TokenHash = hash

	if s.AuthCache != nil {
		if err := s.AuthCache.Set(ctx, utils.AuthCachePrefix+u.ID, hash, utils.AuthCacheTTL).Err(); err != nil {
			s.Logger.Warn("issueToken: failed to cache token hash", zap.Error(err))
		}
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserData:    *u,
	}, nil
}

func (s *DefaultAuthService) Logout(ctx context.Context, userID string) error {
	if s.AuthCache != nil {
		if err := s.AuthCache.Del(ctx, utils.AuthCachePrefix+userID).Err(); err != nil {
			s.Logger.Warn("Logout: failed to clear token cache", zap.Error(err))
		}
	}
	return s.Users.ClearTokenHash(ctx, userID)
}

func (s *DefaultAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, services.ErrUnauthorized)
	}
	hash := utils.HashToken(token)
	cacheKey := utils.AuthCachePrefix + claims.Subject

	if s.AuthCache != nil {
		cached, err := s.AuthCache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil && cached != hash:
			return nil, fmt.Errorf("token mismatch: %w", services.ErrUnauthorized)
		case err != nil && err != redis.Nil:
			s.Logger.Warn("Authenticate: auth cache unavailable, falling back to DB", zap.Error(err))
		}
	}

	u, err := s.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("unknown user: %w", services.ErrUnauthorized)
		}
		return nil, err
	}
	if u.TokenHash == "" || u.TokenHash != hash {
		return nil, fmt.Errorf("token revoked: %w", services.ErrUnauthorized)
	}

	if s.AuthCache != nil {
		_ = s.AuthCache.Set(ctx, cacheKey, hash, utils.AuthCacheTTL).Err()
	}
	return u, nil
}

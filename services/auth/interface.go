package auth

import (
	"context"

	doctorRepo "dokta/database/repository/doctor"
	userRepo "dokta/database/repository/user"
	"dokta/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AuthService covers accounts, credentials and dependents.
type AuthService interface {
	// Registration and sessions
	Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
	Logout(ctx context.Context, userID string) error
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// Profile
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)

	// Dependents
	Dependents(ctx context.Context, userID string) ([]models.Dependent, error)
	AddDependent(ctx context.Context, userID string, req models.DependentCreate) (*models.Dependent, error)

	// Bare user records. A retry carrying the same key returns the first record.
	CreateUser(ctx context.Context, req models.UserCreate, key string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Users   userRepo.UserRepository
	Doctors doctorRepo.DoctorRepository
	// AuthCache is optional; without it every request hits Mongo.
	AuthCache *redis.Client
	Logger    *zap.Logger
}

func NewDefaultAuthService(users userRepo.UserRepository, doctors doctorRepo.DoctorRepository, cache *redis.Client, logger *zap.Logger) *DefaultAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAuthService{
		Users:     users,
		Doctors:   doctors,
		AuthCache: cache,
		Logger:    logger,
	}
}

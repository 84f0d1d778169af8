package directory

import (
	"context"

	doctorRepo "dokta/database/repository/doctor"
	"dokta/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DirectoryService serves the doctor directory and specialty catalog.
type DirectoryService interface {
	ListDoctors(ctx context.Context, specialite string) ([]models.Doctor, error)
	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)
	CreateDoctor(ctx context.Context, req models.DoctorCreate) (*models.Doctor, error)
	UpdateDoctorProfile(ctx context.Context, id string, upd models.DoctorProfileUpdate) (*models.Doctor, error)
	ListSpecialties(ctx context.Context) ([]models.Specialty, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	// SeedDemoDoctors inserts the demo directory when it is empty.
	SeedDemoDoctors(ctx context.Context) (int, error)
}

// DefaultDirectoryService is the production implementation.
type DefaultDirectoryService struct {
	Doctors doctorRepo.DoctorRepository
	// Cache is optional.
	Cache  *redis.Client
	Logger *zap.Logger
}

func NewDefaultDirectoryService(doctors doctorRepo.DoctorRepository, cache *redis.Client, logger *zap.Logger) *DefaultDirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultDirectoryService{Doctors: doctors, Cache: cache, Logger: logger}
}

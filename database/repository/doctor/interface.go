package doctorRepo

import (
	"context"

	"dokta/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// DoctorRepository defines methods for doctor directory access.
type DoctorRepository interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	CreateMany(ctx context.Context, doctors []models.Doctor) error
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	// List returns available doctors, optionally restricted to one specialty.
	List(ctx context.Context, specialite string) ([]models.Doctor, error)
	// Search matches nom or specialite case-insensitively.
	Search(ctx context.Context, query string, limit int64) ([]models.Doctor, error)
	Update(ctx context.Context, id string, upd models.DoctorProfileUpdate) (*models.Doctor, error)
	Count(ctx context.Context) (int64, error)
}

type mongoDoctorRepo struct {
	coll *mongo.Collection
}

// NewMongoDoctorRepo constructs a MongoDB DoctorRepository.
func NewMongoDoctorRepo(db *mongo.Database) DoctorRepository {
	return &mongoDoctorRepo{
		coll: db.Collection("doctors"),
	}
}

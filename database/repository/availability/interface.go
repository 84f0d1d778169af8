package availabilityRepo

import (
	"context"

	"dokta/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityRepository stores per-doctor overrides of the slot catalog.
// A missing row means the catalog default (available).
type AvailabilityRepository interface {
	GetByDoctorAndDate(ctx context.Context, doctorID, date string) ([]models.AvailabilityEntry, error)
	// Upsert writes every entry in one bulk operation keyed by (doctor, date, heure).
	Upsert(ctx context.Context, doctorID string, entries []models.AvailabilityEntry) (int64, error)
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo(db *mongo.Database) AvailabilityRepository {
	return &mongoAvailabilityRepo{
		coll: db.Collection("availability"),
	}
}

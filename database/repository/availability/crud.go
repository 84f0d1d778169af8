package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"dokta/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoAvailabilityRepo) GetByDoctorAndDate(ctx context.Context, doctorID, date string) ([]models.AvailabilityEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"doctor_id": doctorID, "date": date}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.AvailabilityEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return entries, nil
}

func (r *mongoAvailabilityRepo) Upsert(ctx context.Context, doctorID string, entries []models.AvailabilityEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		filter := bson.M{"doctor_id": doctorID, "date": e.Date, "heure": e.Heure}
		update := bson.M{"$set": bson.M{
			"disponible": e.Disponible,
			"updated_at": now,
		}}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert availability: %w", err)
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

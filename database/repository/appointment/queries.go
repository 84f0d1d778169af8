package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"dokta/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listLimit = 100

func (r *mongoAppointmentRepo) List(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.DoctorID != "" {
		filter["doctor_id"] = f.DoctorID
	}
	if f.PatientID != "" {
		filter["patient_id"] = f.PatientID
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().
		SetLimit(listLimit).
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "heure", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appts := []models.Appointment{}
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) TakenTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"doctor_id": doctorID,
		"date":      date,
		"status":    bson.M{"$ne": models.StatusCancelled},
	}
	raw, err := r.coll.Distinct(ctx, "heure", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query taken slots: %w", err)
	}
	times := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			times = append(times, s)
		}
	}
	return times, nil
}

func (r *mongoAppointmentRepo) Count(ctx context.Context, date string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if date != "" {
		filter["date"] = date
	}
	return r.coll.CountDocuments(ctx, filter)
}

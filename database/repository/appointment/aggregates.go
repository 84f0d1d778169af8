package appointmentRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"dokta/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type countRow struct {
	N int `bson:"n"`
}

type revenueRow struct {
	Revenue int `bson:"revenue"`
	N       int `bson:"n"`
}

type dashboardFacets struct {
	Total     []countRow   `bson:"total"`
	Today     []countRow   `bson:"today"`
	Confirmed []countRow   `bson:"confirmed"`
	Pending   []countRow   `bson:"pending"`
	Monthly   []revenueRow `bson:"monthly"`
}

func first(rows []countRow) int {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].N
}

// DashboardStats computes a doctor's counters in a single $facet pass.
// month is a "YYYY-MM" prefix; revenue counts confirmed and completed visits only.
func (r *mongoAppointmentRepo) DashboardStats(ctx context.Context, doctorID, today, month string) (*models.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	monthPattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(month)}
	countStage := bson.D{{Key: "$count", Value: "n"}}

	pipeline := bson.A{
		bson.M{"$match": bson.M{"doctor_id": doctorID}},
		bson.M{"$facet": bson.M{
			"total":     bson.A{countStage},
			"today":     bson.A{bson.M{"$match": bson.M{"date": today}}, countStage},
			"confirmed": bson.A{bson.M{"$match": bson.M{"status": models.StatusConfirmed}}, countStage},
			"pending":   bson.A{bson.M{"$match": bson.M{"status": models.StatusPending}}, countStage},
			"monthly": bson.A{
				bson.M{"$match": bson.M{"date": monthPattern}},
				bson.M{"$group": bson.M{
					"_id": nil,
					"n":   bson.M{"$sum": 1},
					"revenue": bson.M{"$sum": bson.M{"$cond": bson.A{
						bson.M{"$in": bson.A{"$status", bson.A{models.StatusConfirmed, models.StatusCompleted}}},
						"$tarif",
						0,
					}}},
				}},
			},
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate dashboard: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []dashboardFacets
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard: %w", err)
	}

	stats := &models.DashboardStats{}
	if len(facets) == 0 {
		return stats, nil
	}
	f := facets[0]
	stats.TotalAppointments = first(f.Total)
	stats.TodayAppointments = first(f.Today)
	stats.ConfirmedAppointments = first(f.Confirmed)
	stats.PendingAppointments = first(f.Pending)
	if len(f.Monthly) > 0 {
		stats.MonthlyRevenue = f.Monthly[0].Revenue
		stats.MonthlyAppointments = f.Monthly[0].N
	}
	return stats, nil
}

// PatientRoster groups a doctor's appointments per patient, most recent first.
func (r *mongoAppointmentRepo) PatientRoster(ctx context.Context, doctorID string) ([]models.PatientSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := bson.A{
		bson.M{"$match": bson.M{"doctor_id": doctorID}},
		bson.M{"$sort": bson.M{"date": 1}},
		bson.M{"$group": bson.M{
			"_id":               "$patient_id",
			"nom":               bson.M{"$last": "$patient_name"},
			"telephone":         bson.M{"$last": "$patient_phone"},
			"appointment_count": bson.M{"$sum": 1},
			"last_appointment":  bson.M{"$max": "$date"},
		}},
		bson.M{"$sort": bson.M{"last_appointment": -1}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate patients: %w", err)
	}
	defer cursor.Close(ctx)

	roster := []models.PatientSummary{}
	if err := cursor.All(ctx, &roster); err != nil {
		return nil, fmt.Errorf("failed to decode patients: %w", err)
	}
	return roster, nil
}

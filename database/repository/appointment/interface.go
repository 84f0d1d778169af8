package appointmentRepo

import (
	"context"
	"errors"

	"dokta/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotTaken is returned when an active appointment already holds the slot.
var ErrSlotTaken = errors.New("slot already booked")

// ErrDuplicateKey is returned when an appointment with the same idempotency key exists.
var ErrDuplicateKey = errors.New("idempotency key already used")

// AppointmentRepository defines methods for appointment data access.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	// TakenTimes returns the times of non-cancelled appointments for a doctor's day.
	TakenTimes(ctx context.Context, doctorID, date string) ([]string, error)
	// TransitionStatus moves the appointment to next only if its current status is one of from.
	// It returns ErrNotFound when no appointment matched.
	TransitionStatus(ctx context.Context, id string, from []models.AppointmentStatus, next models.AppointmentStatus, extra map[string]interface{}) (*models.Appointment, error)

	DashboardStats(ctx context.Context, doctorID, today, month string) (*models.DashboardStats, error)
	PatientRoster(ctx context.Context, doctorID string) ([]models.PatientSummary, error)
	Count(ctx context.Context, date string) (int64, error)
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a MongoDB AppointmentRepository.
func NewMongoAppointmentRepo(db *mongo.Database) AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
}

// activeStatuses hold their slot.
var activeStatuses = []models.AppointmentStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusCompleted,
}

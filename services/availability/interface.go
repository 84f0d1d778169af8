package availability

import (
	"context"

	appointmentRepo "dokta/database/repository/appointment"
	availabilityRepo "dokta/database/repository/availability"
	doctorRepo "dokta/database/repository/doctor"
	"dokta/models"

	"go.uber.org/zap"
)

// AvailabilityService merges the slot catalog with doctor overrides and bookings.
type AvailabilityService interface {
	// DaySlots returns every catalog time for the day, flagged available or not.
	DaySlots(ctx context.Context, doctorID, date string) ([]models.TimeSlot, error)
	// IsBookable reports whether one slot can take a new appointment.
	IsBookable(ctx context.Context, doctorID, date, heure string) (bool, error)
	// SetAvailability stores the doctor's overrides. Every entry is validated first.
	SetAvailability(ctx context.Context, doctorID string, entries []models.AvailabilityEntry) (int64, error)
}

// DefaultAvailabilityService is the production implementation.
type DefaultAvailabilityService struct {
	Doctors      doctorRepo.DoctorRepository
	Availability availabilityRepo.AvailabilityRepository
	Appointments appointmentRepo.AppointmentRepository
	Logger       *zap.Logger
}

func NewDefaultAvailabilityService(
	doctors doctorRepo.DoctorRepository,
	availability availabilityRepo.AvailabilityRepository,
	appointments appointmentRepo.AppointmentRepository,
	logger *zap.Logger,
) *DefaultAvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAvailabilityService{
		Doctors:      doctors,
		Availability: availability,
		Appointments: appointments,
		Logger:       logger,
	}
}

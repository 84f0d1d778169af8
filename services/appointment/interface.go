package appointment

import (
	"context"
	"time"

	appointmentRepo "dokta/database/repository/appointment"
	doctorRepo "dokta/database/repository/doctor"
	"dokta/models"
	"dokta/services/availability"

	"go.uber.org/zap"
)

// AppointmentService books, confirms and transitions appointments.
type AppointmentService interface {
	// Create books a slot. With an idempotency key, retries return the first
	// appointment and replayed is true.
	Create(ctx context.Context, req models.AppointmentCreate, idempotencyKey string) (appt *models.Appointment, replayed bool, err error)
	CreateSimple(ctx context.Context, req models.SimpleAppointmentCreate) (*models.Appointment, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	// Confirm marks a pending appointment paid. Confirming twice is a no-op.
	Confirm(ctx context.Context, id string, req models.ConfirmRequest) (*models.Appointment, error)
	// UpdateStatus applies a doctor-side status change.
	UpdateStatus(ctx context.Context, doctorID, appointmentID string, next models.AppointmentStatus) (*models.Appointment, error)
	// Cancel applies a patient-side cancellation of a pending or confirmed appointment.
	Cancel(ctx context.Context, patientID, appointmentID string) (*models.Appointment, error)
}

// Notifier is told about confirmed appointments.
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, appt *models.Appointment) error
}

// DefaultAppointmentService is the production implementation.
type DefaultAppointmentService struct {
	Appointments appointmentRepo.AppointmentRepository
	Doctors      doctorRepo.DoctorRepository
	Availability availability.AvailabilityService
	// Claims and Notifier are optional.
	Claims   IdempotencyStore
	Notifier Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewDefaultAppointmentService(
	appts appointmentRepo.AppointmentRepository,
	doctors doctorRepo.DoctorRepository,
	avail availability.AvailabilityService,
	claims IdempotencyStore,
	notifier Notifier,
	logger *zap.Logger,
) *DefaultAppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAppointmentService{
		Appointments: appts,
		Doctors:      doctors,
		Availability: avail,
		Claims:       claims,
		Notifier:     notifier,
		Logger:       logger,
		Now:          time.Now,
	}
}

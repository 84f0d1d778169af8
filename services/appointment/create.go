package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dokta/database"
	appointmentRepo "dokta/database/repository/appointment"
	"dokta/models"
	"dokta/phone"
	"dokta/services"
	"dokta/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultAppointmentService) validateCreate(req *models.AppointmentCreate) error {
	if strings.TrimSpace(req.PatientID) == "" {
		return services.NewValidationError("patient_id", "patient is required")
	}
	if strings.TrimSpace(req.DoctorID) == "" {
		return services.NewValidationError("doctor_id", "doctor is required")
	}
	if err := availability.ValidateDate(req.Date); err != nil {
		return err
	}
	if req.Date < models.Today(s.Now()) {
		return services.NewValidationError("date", "date is in the past")
	}
	if !models.InCatalog(req.Heure) {
		return services.NewValidationError("heure", fmt.Sprintf("%q is not a bookable time", req.Heure))
	}
	if req.ConsultationType == "" {
		req.ConsultationType = models.ConsultationCabinet
	}
	if !req.ConsultationType.Valid() {
		return services.NewValidationError("consultation_type", "must be cabinet, domicile or teleconsultation")
	}
	if req.PatientAge != 0 {
		if err := models.ValidateAge(req.PatientAge); err != nil {
			return services.NewValidationError("patient_age", err.Error())
		}
	}
	if req.PatientPhone != "" {
		tel, err := phone.Parse(req.PatientPhone)
		if err != nil {
			return services.NewValidationError("patient_phone", err.Error())
		}
		req.PatientPhone = tel
	}
	return nil
}

func (s *DefaultAppointmentService) Create(ctx context.Context, req models.AppointmentCreate, key string) (*models.Appointment, bool, error) {
	if err := s.validateCreate(&req); err != nil {
		return nil, false, err
	}

	if key != "" {
		if existing, err := s.Appointments.GetByIdempotencyKey(ctx, key); err == nil {
			return existing, true, nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, false, err
		}

		if s.Claims != nil {
			claimed, existingID, err := s.Claims.Claim(ctx, key)
			if err != nil {
				s.Logger.Warn("Create: idempotency store unavailable", zap.Error(err))
			} else if !claimed {
				if existingID == "" {
					return nil, false, services.NewConflictError(services.CodeInProgress, "an identical booking is already being processed")
				}
				appt, err := s.Appointments.GetByID(ctx, existingID)
				if err != nil {
					return nil, false, err
				}
				return appt, true, nil
			}
		}
	}

	appt, err := s.insert(ctx, req, key)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrDuplicateKey) {
			existing, getErr := s.Appointments.GetByIdempotencyKey(ctx, key)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, true, nil
		}
		if key != "" && s.Claims != nil {
			if relErr := s.Claims.Release(ctx, key); relErr != nil {
				s.Logger.Warn("Create: failed to release idempotency claim", zap.Error(relErr))
			}
		}
		return nil, false, err
	}

	if key != "" && s.Claims != nil {
		if err := s.Claims.Bind(ctx, key, appt.ID); err != nil {
			s.Logger.Warn("Create: failed to bind idempotency key", zap.Error(err))
		}
	}
	return appt, false, nil
}

func (s *DefaultAppointmentService) insert(ctx context.Context, req models.AppointmentCreate, key string) (*models.Appointment, error) {
	doctor, err := s.Doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	price, err := models.PriceFor(doctor.Tarif, req.ConsultationType)
	if err != nil {
		return nil, services.NewValidationError("consultation_type", err.Error())
	}

	ok, err := s.Availability.IsBookable(ctx, req.DoctorID, req.Date, req.Heure)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, services.NewConflictError(services.CodeSlotTaken, "this slot is no longer available")
	}

	appt := &models.Appointment{
		ID:               uuid.New().String(),
		PatientID:        req.PatientID,
		DoctorID:         req.DoctorID,
		PatientName:      strings.TrimSpace(req.PatientName),
		PatientAge:       req.PatientAge,
		PatientPhone:     req.PatientPhone,
		Motif:            strings.TrimSpace(req.Motif),
		Date:             req.Date,
		Heure:            req.Heure,
		Status:           models.StatusPending,
		ConsultationType: req.ConsultationType,
		Tarif:            price,
		IdempotencyKey:   key,
	}
	if err := s.Appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotTaken) {
			return nil, services.NewConflictError(services.CodeSlotTaken, "this slot is no longer available")
		}
		return nil, err
	}

	s.Logger.Info("appointment created",
		zap.String("appointmentID", appt.ID),
		zap.String("doctorID", appt.DoctorID),
		zap.String("date", appt.Date),
		zap.String("heure", appt.Heure),
		zap.Int("tarif", appt.Tarif),
	)
	return appt, nil
}

// CreateSimple books from the calendar flow. The price is always derived
// from the doctor's fee; a differing client price is only logged.
func (s *DefaultAppointmentService) CreateSimple(ctx context.Context, req models.SimpleAppointmentCreate) (*models.Appointment, error) {
	if strings.TrimSpace(req.PatientName) == "" {
		return nil, services.NewValidationError("patient_name", "patient name is required")
	}
	patientID := req.UserID
	if patientID == "" {
		patientID = uuid.New().String()
	}

	appt, _, err := s.Create(ctx, models.AppointmentCreate{
		PatientID:        patientID,
		DoctorID:         req.DoctorID,
		Date:             req.Date,
		Heure:            req.Time,
		ConsultationType: req.ConsultationType,
		PatientName:      req.PatientName,
		PatientAge:       req.PatientAge,
	}, "")
	if err != nil {
		return nil, err
	}
	if req.Price != 0 && req.Price != appt.Tarif {
		s.Logger.Warn("CreateSimple: client price differs from derived price",
			zap.Int("clientPrice", req.Price), zap.Int("tarif", appt.Tarif))
	}
	return appt, nil
}

func (s *DefaultAppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return s.Appointments.GetByID(ctx, id)
}

func (s *DefaultAppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, services.NewValidationError("status", "unknown status")
	}
	return s.Appointments.List(ctx, filter)
}

package appointment

import (
	"context"
	"errors"
	"fmt"

	"dokta/database"
	"dokta/models"
	"dokta/services"

	"go.uber.org/zap"
)

func (s *DefaultAppointmentService) Confirm(ctx context.Context, id string, req models.ConfirmRequest) (*models.Appointment, error) {
	if req.PaymentMethod != "" && !req.PaymentMethod.Valid() {
		return nil, services.NewValidationError("payment_method", "unsupported payment method")
	}

	appt, err := s.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.StatusConfirmed {
		return appt, nil
	}
	if !appt.Status.CanTransition(models.StatusConfirmed) {
		return nil, services.NewConflictError(services.CodeInvalidTransition,
			fmt.Sprintf("cannot confirm an appointment in status %s", appt.Status))
	}

	extra := map[string]interface{}{}
	if req.PaymentMethod != "" {
		extra["payment_method"] = req.PaymentMethod
	}
	if req.PaymentReference != "" {
		extra["payment_reference"] = req.PaymentReference
	}

	updated, err := s.Appointments.TransitionStatus(ctx, id, []models.AppointmentStatus{models.StatusPending}, models.StatusConfirmed, extra)
	if errors.Is(err, database.ErrNotFound) {
		// Lost a race: succeed only if the winner confirmed it.
		current, getErr := s.Appointments.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == models.StatusConfirmed {
			return current, nil
		}
		return nil, services.NewConflictError(services.CodeInvalidTransition,
			fmt.Sprintf("cannot confirm an appointment in status %s", current.Status))
	}
	if err != nil {
		return nil, err
	}

	s.Logger.Info("appointment confirmed", zap.String("appointmentID", id), zap.String("method", string(req.PaymentMethod)))
	if s.Notifier != nil {
		if err := s.Notifier.AppointmentConfirmed(ctx, updated); err != nil {
			s.Logger.Warn("Confirm: notification failed", zap.String("appointmentID", id), zap.Error(err))
		}
	}
	return updated, nil
}

func (s *DefaultAppointmentService) UpdateStatus(ctx context.Context, doctorID, id string, next models.AppointmentStatus) (*models.Appointment, error) {
	if !next.Valid() {
		return nil, services.NewValidationError("status", "unknown status")
	}
	appt, err := s.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, database.ErrNotFound
	}
	return s.transition(ctx, appt, next)
}

// Cancel lets the patient who holds the appointment cancel it.
func (s *DefaultAppointmentService) Cancel(ctx context.Context, patientID, id string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patientID == "" || appt.PatientID != patientID {
		return nil, database.ErrNotFound
	}
	return s.transition(ctx, appt, models.StatusCancelled)
}

func (s *DefaultAppointmentService) transition(ctx context.Context, appt *models.Appointment, next models.AppointmentStatus) (*models.Appointment, error) {
	if appt.Status == next {
		return appt, nil
	}
	if !appt.Status.CanTransition(next) {
		return nil, services.NewConflictError(services.CodeInvalidTransition,
			fmt.Sprintf("cannot move from %s to %s", appt.Status, next))
	}
	if next == models.StatusCompleted && appt.Date > models.Today(s.Now()) {
		return nil, services.NewConflictError(services.CodeInvalidTransition, "cannot complete an appointment before its date")
	}

	updated, err := s.Appointments.TransitionStatus(ctx, appt.ID, []models.AppointmentStatus{appt.Status}, next, nil)
	if errors.Is(err, database.ErrNotFound) {
		return nil, services.NewConflictError(services.CodeInvalidTransition, "appointment changed concurrently, reload and retry")
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("appointment status updated",
		zap.String("appointmentID", appt.ID), zap.String("from", string(appt.Status)), zap.String("to", string(next)))
	return updated, nil
}

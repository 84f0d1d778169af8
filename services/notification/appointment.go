package notification

import (
	"context"
	"errors"
	"fmt"

	"dokta/database"
	"dokta/models"
	"dokta/services/tasks"

	"go.uber.org/zap"
)

func (s *DefaultNotificationService) reminderPayload(ctx context.Context, appt *models.Appointment) models.ReminderPayload {
	p := models.ReminderPayload{
		AppointmentID:    appt.ID,
		UserID:           appt.PatientID,
		Title:            "Rappel de rendez-vous",
		Body:             fmt.Sprintf("Votre consultation est prévue le %s à %s.", appt.Date, appt.Heure),
		ConsultationType: appt.ConsultationType,
	}
	if doc, err := s.Doctors.GetByID(ctx, appt.DoctorID); err == nil {
		p.DoctorName = doc.Nom
		p.Body = fmt.Sprintf("Votre consultation avec %s est prévue le %s à %s.", doc.Nom, appt.Date, appt.Heure)
		if appt.ConsultationType == models.ConsultationCabinet {
			p.MapsURL = doc.MapsURL()
		}
	}
	return p
}

func (s *DefaultNotificationService) AppointmentConfirmed(ctx context.Context, appt *models.Appointment) error {
	p := s.reminderPayload(ctx, appt)

	body := fmt.Sprintf("Rendez-vous confirmé le %s à %s.", appt.Date, appt.Heure)
	if p.DoctorName != "" {
		body = fmt.Sprintf("Rendez-vous avec %s confirmé le %s à %s.", p.DoctorName, appt.Date, appt.Heure)
	}
	data := p.Data()
	data["type"] = "appointment_confirmed"

	var pushErr error
	if err := s.SendUserPushNotification(ctx, appt.PatientID, "Paiement reçu", body, data); err != nil && !errors.Is(err, ErrNoPushTarget) {
		pushErr = err
	}

	if err := s.scheduleReminder(ctx, appt, p); err != nil {
		return errors.Join(pushErr, err)
	}
	return pushErr
}

func (s *DefaultNotificationService) scheduleReminder(ctx context.Context, appt *models.Appointment, p models.ReminderPayload) error {
	if s.Queue == nil {
		return nil
	}
	at, err := models.SlotTime(appt.Date, appt.Heure)
	if err != nil {
		return fmt.Errorf("scheduleReminder: %w", err)
	}
	fireAt := at.Add(-s.ReminderLead)
	if !fireAt.After(s.Now()) {
		s.Logger.Debug("reminder skipped, appointment too close", zap.String("appointmentID", appt.ID))
		return nil
	}

	task, opts, err := tasks.NewReminderTask(p, fireAt)
	if err != nil {
		return err
	}
	info, err := s.Queue.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("scheduleReminder: enqueue failed: %w", err)
	}
	s.Logger.Info("reminder scheduled",
		zap.String("appointmentID", appt.ID),
		zap.String("taskID", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}

func (s *DefaultNotificationService) SendReminder(ctx context.Context, p models.ReminderPayload) error {
	appt, err := s.Appointments.GetByID(ctx, p.AppointmentID)
	if errors.Is(err, database.ErrNotFound) {
		s.Logger.Info("reminder dropped, appointment gone", zap.String("appointmentID", p.AppointmentID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("SendReminder: %w", err)
	}
	if appt.Status != models.StatusConfirmed {
		s.Logger.Info("reminder dropped, appointment not confirmed",
			zap.String("appointmentID", p.AppointmentID), zap.String("status", string(appt.Status)))
		return nil
	}

	err = s.SendUserPushNotification(ctx, p.UserID, p.Title, p.Body, p.Data())
	if errors.Is(err, ErrNoPushTarget) {
		s.Logger.Info("reminder dropped, no push target", zap.String("appointmentID", p.AppointmentID))
		return nil
	}
	return err
}

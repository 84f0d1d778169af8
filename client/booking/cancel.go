package booking

import (
	"context"
	"strings"

	"dokta/client"
	"dokta/models"
)

// Cancel cancels a pending or confirmed appointment for the signed-in
// patient. The server answers 409 once the appointment is completed.
func Cancel(ctx context.Context, api *client.Client, appointmentID string) (*models.Appointment, error) {
	if strings.TrimSpace(appointmentID) == "" {
		return nil, &client.ValidationError{Field: "appointment_id", Message: "Rendez-vous requis"}
	}
	if api.Tokens == nil || api.Tokens.Token() == "" {
		return nil, &client.AuthError{Message: "Connectez-vous pour annuler un rendez-vous"}
	}
	var out models.AppointmentEnvelope
	err := api.Put(ctx, "/api/appointments/"+client.PathEscape(appointmentID)+"/cancel", nil, &out)
	if err != nil {
		return nil, client.Classify(err, "appointment", appointmentID)
	}
	return &out.Appointment, nil
}

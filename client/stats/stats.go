// Package stats reads the doctor dashboard and platform aggregates.
package stats

import (
	"context"
	"net/http"
	"net/url"

	"dokta/client"
	"dokta/models"

	"go.uber.org/zap"
)

// Viewer wraps the read-only aggregate endpoints and the doctor's status update.
type Viewer struct {
	api    *client.Client
	logger *zap.Logger
}

func New(api *client.Client, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Viewer{api: api, logger: logger}
}

func doctorPath(doctorID, rest string) string {
	return "/api/doctors/" + client.PathEscape(doctorID) + rest
}

// doctorErr maps 401/403 to an AuthError so the caller can prompt for the
// doctor's own login.
func doctorErr(err error, doctorID string) error {
	if client.IsStatus(err, http.StatusForbidden) || client.IsStatus(err, http.StatusUnauthorized) {
		return &client.AuthError{Message: "Accès réservé au médecin concerné", Err: err}
	}
	return client.Classify(err, "doctor", doctorID)
}

func (v *Viewer) DoctorDashboard(ctx context.Context, doctorID string) (*models.DoctorDashboard, error) {
	var out models.DoctorDashboard
	if err := v.api.Get(ctx, doctorPath(doctorID, "/dashboard"), nil, &out); err != nil {
		return nil, doctorErr(err, doctorID)
	}
	return &out, nil
}

func (v *Viewer) DoctorPatients(ctx context.Context, doctorID string) ([]models.PatientSummary, error) {
	var out []models.PatientSummary
	if err := v.api.Get(ctx, doctorPath(doctorID, "/patients"), nil, &out); err != nil {
		return nil, doctorErr(err, doctorID)
	}
	return out, nil
}

// DoctorAppointments lists a doctor's appointments, optionally for one date and status.
func (v *Viewer) DoctorAppointments(ctx context.Context, doctorID, date string, status models.AppointmentStatus) ([]models.Appointment, error) {
	if status != "" && !status.Valid() {
		return nil, &client.ValidationError{Field: "status", Message: "Statut invalide"}
	}
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if status != "" {
		q.Set("status", string(status))
	}
	var out []models.Appointment
	if err := v.api.Get(ctx, doctorPath(doctorID, "/appointments"), q, &out); err != nil {
		return nil, doctorErr(err, doctorID)
	}
	return out, nil
}

// UpdateAppointmentStatus moves an appointment along its lifecycle. Illegal
// transitions come back from the server as a 409 StatusError.
func (v *Viewer) UpdateAppointmentStatus(ctx context.Context, doctorID, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, &client.ValidationError{Field: "status", Message: "Statut invalide"}
	}
	var out struct {
		Message     string             `json:"message"`
		Appointment models.Appointment `json:"appointment"`
	}
	path := doctorPath(doctorID, "/appointments/"+client.PathEscape(appointmentID)+"/status")
	if err := v.api.Put(ctx, path, models.StatusUpdateRequest{Status: status}, &out); err != nil {
		if client.IsStatus(err, http.StatusNotFound) {
			return nil, &client.NotFoundError{Resource: "appointment", ID: appointmentID}
		}
		return nil, doctorErr(err, doctorID)
	}
	v.logger.Info("stats: appointment status updated",
		zap.String("appointmentID", appointmentID),
		zap.String("status", string(status)))
	return &out.Appointment, nil
}

func (v *Viewer) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var out models.PlatformStats
	if err := v.api.Get(ctx, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *Viewer) AllAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := v.api.Get(ctx, "/api/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

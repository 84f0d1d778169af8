package handlers

import (
	"dokta/services/appointment"
	"dokta/services/auth"
	"dokta/services/availability"
	"dokta/services/directory"
	"dokta/services/notification"
	"dokta/services/stats"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	AuthService auth.AuthService

	Auth          *AuthHandler
	Doctors       *DoctorHandler
	Appointments  *AppointmentHandler
	Notifications *NotificationHandler
	Directory     *DirectoryHandler
	Maps          *MapsHandler
}

// Services is everything the handlers depend on.
type Services struct {
	Auth          auth.AuthService
	Directory     directory.DirectoryService
	Availability  availability.AvailabilityService
	Appointments  appointment.AppointmentService
	Notifications notification.NotificationService
	Stats         stats.StatsService

	GoogleAPIKey string
}

func NewHandlerBundle(s Services) *HandlerBundle {
	return &HandlerBundle{
		AuthService: s.Auth,
		Auth:        &AuthHandler{AuthService: s.Auth},
		Doctors: &DoctorHandler{
			Directory:    s.Directory,
			Availability: s.Availability,
			Appointments: s.Appointments,
			Stats:        s.Stats,
		},
		Appointments:  &AppointmentHandler{Appointments: s.Appointments},
		Notifications: &NotificationHandler{Notifications: s.Notifications},
		Directory:     &DirectoryHandler{Directory: s.Directory, Stats: s.Stats},
		Maps:          NewMapsHandler(s.Directory, s.GoogleAPIKey),
	}
}

package models

// DashboardStats are a doctor's aggregate counts.
type DashboardStats struct {
	TotalAppointments     int `json:"total_appointments"`
	TodayAppointments     int `json:"today_appointments"`
	ConfirmedAppointments int `json:"confirmed_appointments"`
	PendingAppointments   int `json:"pending_appointments"`
	MonthlyRevenue        int `json:"monthly_revenue"`
	MonthlyAppointments   int `json:"monthly_appointments"`
}

// DoctorDashboard is the body of GET /api/doctors/{id}/dashboard.
type DoctorDashboard struct {
	Doctor Doctor         `json:"doctor"`
	Stats  DashboardStats `json:"stats"`
}

// PatientSummary is one row of a doctor's patient roster.
type PatientSummary struct {
	ID               string  `bson:"_id" json:"id"`
	Nom              string  `bson:"nom" json:"nom"`
	Telephone        string  `bson:"telephone" json:"telephone"`
	AppointmentCount int     `bson:"appointment_count" json:"appointment_count"`
	LastAppointment  *string `bson:"last_appointment" json:"last_appointment"`
}

// PlatformStats is the body of GET /api/stats.
type PlatformStats struct {
	Doctors           int `json:"doctors"`
	Appointments      int `json:"appointments"`
	Users             int `json:"users"`
	TodayAppointments int `json:"today_appointments"`
}

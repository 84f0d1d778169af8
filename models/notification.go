package models

// DeviceInfo describes the device a push token belongs to.
type DeviceInfo struct {
	Platform   string `json:"platform,omitempty"`
	DeviceName string `json:"deviceName,omitempty"`
	OSVersion  string `json:"osVersion,omitempty"`
}

// RegisterTokenRequest is the body of POST /api/notifications/register-token.
type RegisterTokenRequest struct {
	UserID     string     `json:"user_id" binding:"required"`
	ExpoToken  string     `json:"expo_token" binding:"required"`
	DeviceInfo DeviceInfo `json:"device_info"`
}

// ReminderPayload is carried by appointment reminder tasks and local reminders.
type ReminderPayload struct {
	AppointmentID    string           `json:"appointmentId"`
	UserID           string           `json:"userId,omitempty"`
	Title            string           `json:"title"`
	Body             string           `json:"body"`
	DoctorName       string           `json:"doctorName,omitempty"`
	ConsultationType ConsultationType `json:"appointmentType,omitempty"`
	MapsURL          string           `json:"mapsUrl,omitempty"`
	FireAt           string           `json:"fireAt,omitempty"`
}

// Data flattens the payload into an FCM data map.
func (p ReminderPayload) Data() map[string]string {
	data := map[string]string{
		"type":          "appointment_reminder",
		"appointmentId": p.AppointmentID,
	}
	if p.DoctorName != "" {
		data["doctorName"] = p.DoctorName
	}
	if p.ConsultationType != "" {
		data["appointmentType"] = string(p.ConsultationType)
	}
	if p.MapsURL != "" {
		data["mapsUrl"] = p.MapsURL
	}
	return data
}

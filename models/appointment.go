package models

import (
	"fmt"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "en_attente"
	StatusConfirmed AppointmentStatus = "confirme"
	StatusCancelled AppointmentStatus = "annule"
	StatusCompleted AppointmentStatus = "termine"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from s to next.
// Re-applying the current status is not a transition and is handled by callers.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	}
	return false
}

// ConsultationType is where and how the consultation takes place.
type ConsultationType string

const (
	ConsultationCabinet  ConsultationType = "cabinet"
	ConsultationDomicile ConsultationType = "domicile"
	ConsultationTele     ConsultationType = "teleconsultation"
)

// Fixed per-type adjustments to a doctor's base fee, in FCFA.
const (
	HomeVisitSurcharge = 5000
	TeleDiscount       = 2000
)

// Valid reports whether c is a known consultation type.
func (c ConsultationType) Valid() bool {
	switch c {
	case ConsultationCabinet, ConsultationDomicile, ConsultationTele:
		return true
	}
	return false
}

// PriceFor derives the price charged for a consultation type from a doctor's
// base fee. It is the only place the adjustments are applied.
func PriceFor(baseFee int, c ConsultationType) (int, error) {
	switch c {
	case ConsultationCabinet:
		return baseFee, nil
	case ConsultationDomicile:
		return baseFee + HomeVisitSurcharge, nil
	case ConsultationTele:
		price := baseFee - TeleDiscount
		if price < 0 {
			price = 0
		}
		return price, nil
	}
	return 0, fmt.Errorf("unknown consultation type %q", c)
}

// Appointment is a booked consultation.
type Appointment struct {
	ID               string            `bson:"id" json:"id"`
	PatientID        string            `bson:"patient_id" json:"patient_id"`
	DoctorID         string            `bson:"doctor_id" json:"doctor_id"`
	PatientName      string            `bson:"patient_name,omitempty" json:"patient_name,omitempty"`
	PatientAge       int               `bson:"patient_age,omitempty" json:"patient_age,omitempty"`
	PatientPhone     string            `bson:"patient_phone,omitempty" json:"patient_phone,omitempty"`
	Motif            string            `bson:"motif,omitempty" json:"motif,omitempty"`
	Date             string            `bson:"date" json:"date"`
	Heure            string            `bson:"heure" json:"heure"`
	Status           AppointmentStatus `bson:"status" json:"status"`
	ConsultationType ConsultationType  `bson:"consultation_type" json:"consultation_type"`
	Tarif            int               `bson:"tarif" json:"tarif"`
	PaymentMethod    PaymentMethod     `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	PaymentReference string            `bson:"payment_reference,omitempty" json:"payment_reference,omitempty"`
	IdempotencyKey   string            `bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt        time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `bson:"updated_at" json:"updated_at"`
}

// AppointmentCreate is the payload of POST /api/appointments.
type AppointmentCreate struct {
	PatientID        string           `json:"patient_id" binding:"required"`
	DoctorID         string           `json:"doctor_id" binding:"required"`
	Date             string           `json:"date" binding:"required"`
	Heure            string           `json:"heure" binding:"required"`
	ConsultationType ConsultationType `json:"consultation_type,omitempty"`
	PatientName      string           `json:"patient_name,omitempty"`
	PatientAge       int              `json:"patient_age,omitempty"`
	PatientPhone     string           `json:"patient_phone,omitempty"`
	Motif            string           `json:"motif,omitempty"`
}

// SimpleAppointmentCreate is the payload of POST /api/appointments-simple,
// used by the calendar flow that books without a prior patient record.
type SimpleAppointmentCreate struct {
	DoctorID         string           `json:"doctor_id" binding:"required"`
	PatientName      string           `json:"patient_name" binding:"required"`
	PatientAge       int              `json:"patient_age"`
	Date             string           `json:"date" binding:"required"`
	Time             string           `json:"time" binding:"required"`
	ConsultationType ConsultationType `json:"consultation_type"`
	Price            int              `json:"price"`
	UserID           string           `json:"user_id,omitempty"`
}

// ConfirmRequest is the optional body of PUT /api/appointments/{id}/confirm.
type ConfirmRequest struct {
	PaymentMethod    PaymentMethod `json:"payment_method,omitempty"`
	PaymentReference string        `json:"payment_reference,omitempty"`
}

// StatusUpdateRequest is the body of PUT /api/doctors/{id}/appointments/{apptId}/status.
type StatusUpdateRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
}

// AppointmentEnvelope is the body returned by the confirm, cancel and status routes.
type AppointmentEnvelope struct {
	Message     string      `json:"message"`
	Appointment Appointment `json:"appointment"`
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	DoctorID  string
	PatientID string
	Date      string
	Status    AppointmentStatus
}

package handlers

import (
	"net/http"

	"dokta/middleware"
	"dokta/models"
	"dokta/services/appointment"
	"dokta/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	appointmentNotFound = "Rendez-vous non trouvé"
	// IdempotencyHeader carries the client's retry key on appointment creation.
	IdempotencyHeader = "Idempotency-Key"
)

// AppointmentHandler serves /api/appointments and patient listings.
type AppointmentHandler struct {
	Appointments appointment.AppointmentService
}

// Create handles POST /api/appointments.
// A replayed Idempotency-Key answers 200 with the original appointment.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req models.AppointmentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	appt, replayed, err := h.Appointments.Create(c.Request.Context(), req, c.GetHeader(IdempotencyHeader))
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	if replayed {
		c.JSON(http.StatusOK, appt)
		return
	}
	getLogger(c).Info("appointment created",
		zap.String("appointmentID", appt.ID),
		zap.String("doctorID", appt.DoctorID),
		zap.String("date", appt.Date),
		zap.String("heure", appt.Heure))
	c.JSON(http.StatusCreated, appt)
}

// CreateSimple handles POST /api/appointments-simple.
func (h *AppointmentHandler) CreateSimple(c *gin.Context) {
	var req models.SimpleAppointmentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	appt, err := h.Appointments.CreateSimple(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// Get handles GET /api/appointments/:id.
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.Appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, appointmentNotFound)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// List handles GET /api/appointments?doctor_id=&patient_id=&date=&status=.
func (h *AppointmentHandler) List(c *gin.Context) {
	h.list(c, models.AppointmentFilter{
		DoctorID:  c.Query("doctor_id"),
		PatientID: c.Query("patient_id"),
		Date:      c.Query("date"),
		Status:    models.AppointmentStatus(c.Query("status")),
	})
}

// PatientAppointments handles GET /api/patients/:id/appointments.
func (h *AppointmentHandler) PatientAppointments(c *gin.Context) {
	h.list(c, models.AppointmentFilter{PatientID: c.Param("id")})
}

func (h *AppointmentHandler) list(c *gin.Context, filter models.AppointmentFilter) {
	if filter.Status != "" && !filter.Status.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Statut invalide", "status")
		return
	}
	appts, err := h.Appointments.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, appointmentNotFound)
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// Confirm handles PUT /api/appointments/:id/confirm. The body is optional.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	var req models.ConfirmRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	appt, err := h.Appointments.Confirm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, appointmentNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rendez-vous confirmé avec succès", "appointment": appt})
}

// Cancel handles PUT /api/appointments/:id/cancel for the booking patient.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	patientID := c.GetString(middleware.ContextUserID)
	appt, err := h.Appointments.Cancel(c.Request.Context(), patientID, c.Param("id"))
	if err != nil {
		respondError(c, err, appointmentNotFound)
		return
	}
	getLogger(c).Info("appointment cancelled by patient",
		zap.String("appointmentID", appt.ID), zap.String("patientID", patientID))
	c.JSON(http.StatusOK, gin.H{"message": "Rendez-vous annulé", "appointment": appt})
}

package handlers

import (
	"net/http"

	"dokta/models"
	"dokta/services/appointment"
	"dokta/services/availability"
	"dokta/services/directory"
	"dokta/services/stats"
	"dokta/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const doctorNotFound = "Médecin non trouvé"

// DoctorHandler serves /api/doctors.
type DoctorHandler struct {
	Directory    directory.DirectoryService
	Availability availability.AvailabilityService
	Appointments appointment.AppointmentService
	Stats        stats.StatsService
}

// List handles GET /api/doctors?specialite=.
func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.Directory.ListDoctors(c.Request.Context(), c.Query("specialite"))
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}
	c.JSON(http.StatusOK, doctors)
}

// Get handles GET /api/doctors/:id.
func (h *DoctorHandler) Get(c *gin.Context) {
	doc, err := h.Directory.GetDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Create handles POST /api/doctors.
func (h *DoctorHandler) Create(c *gin.Context) {
	var req models.DoctorCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := h.Directory.CreateDoctor(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateProfile handles PUT /api/doctors/:id/profile.
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	var upd models.DoctorProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := h.Directory.UpdateDoctorProfile(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour avec succès", "doctor": doc})
}

// AvailableSlots handles GET /api/doctors/:id/available-slots?date=.
func (h *DoctorHandler) AvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "Le paramètre date est requis", "date")
		return
	}
	slots, err := h.Availability.DaySlots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// SetAvailability handles PUT /api/doctors/:id/availability.
func (h *DoctorHandler) SetAvailability(c *gin.Context) {
	var entries []models.AvailabilityEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		badRequest(c, err)
		return
	}
	doctorID := c.Param("id")
	n, err := h.Availability.SetAvailability(c.Request.Context(), doctorID, entries)
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	getLogger(c).Info("availability updated", zap.String("doctorID", doctorID), zap.Int64("entries", n))
	c.JSON(http.StatusOK, gin.H{"message": "Disponibilités mises à jour", "updated": n})
}

// Appointments handles GET /api/doctors/:id/appointments?date=&status=.
func (h *DoctorHandler) Appointments(c *gin.Context) {
	filter := models.AppointmentFilter{
		DoctorID: c.Param("id"),
		Date:     c.Query("date"),
		Status:   models.AppointmentStatus(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Statut invalide", "status")
		return
	}
	appts, err := h.Appointments.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// UpdateAppointmentStatus handles PUT /api/doctors/:id/appointments/:apptId/status.
func (h *DoctorHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	appt, err := h.Appointments.UpdateStatus(c.Request.Context(), c.Param("id"), c.Param("apptId"), req.Status)
	if err != nil {
		respondError(c, err, "Rendez-vous non trouvé")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Statut mis à jour", "appointment": appt})
}

// Dashboard handles GET /api/doctors/:id/dashboard.
func (h *DoctorHandler) Dashboard(c *gin.Context) {
	dash, err := h.Stats.DoctorDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Patients handles GET /api/doctors/:id/patients.
func (h *DoctorHandler) Patients(c *gin.Context) {
	roster, err := h.Stats.DoctorPatients(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	if roster == nil {
		roster = []models.PatientSummary{}
	}
	c.JSON(http.StatusOK, roster)
}

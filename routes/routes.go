package routes

import (
	"time"

	"dokta/handlers"
	"dokta/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers account endpoints.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", hb.Auth.Register)
		authGroup.POST("/login", hb.Auth.Login)

		// Protected routes (Require Authentication)
		authGroup.Use(middleware.JWTAuth(hb.AuthService))
		authGroup.GET("/me", hb.Auth.Me)
		authGroup.PUT("/profile", hb.Auth.UpdateProfile)
		authGroup.POST("/logout", hb.Auth.Logout)
		authGroup.GET("/dependents", hb.Auth.Dependents)
		authGroup.POST("/dependents", hb.Auth.AddDependent)
	}

	users := api.Group("/users")
	{
		users.POST("", hb.Auth.CreateUser)
		users.GET("/:id", hb.Auth.GetUser)
	}
}

// RegisterDoctorRoutes registers directory and doctor-side endpoints.
func RegisterDoctorRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	doctors := api.Group("/doctors")
	{
		doctors.GET("", hb.Doctors.List)
		doctors.POST("", hb.Doctors.Create)
		doctors.GET("/:id", hb.Doctors.Get)
		doctors.GET("/:id/available-slots", hb.Doctors.AvailableSlots)
		doctors.GET("/:id/directions", hb.Maps.Directions)

		// Endpoints that act on a doctor's own data require that doctor's token.
		self := doctors.Group("/:id")
		self.Use(middleware.JWTAuth(hb.AuthService), middleware.RequireDoctorSelf())
		self.PUT("/profile", hb.Doctors.UpdateProfile)
		self.PUT("/availability", hb.Doctors.SetAvailability)
		self.GET("/appointments", hb.Doctors.Appointments)
		self.PUT("/appointments/:apptId/status", hb.Doctors.UpdateAppointmentStatus)
		self.GET("/dashboard", hb.Doctors.Dashboard)
		self.GET("/patients", hb.Doctors.Patients)
	}
}

// RegisterAppointmentRoutes registers booking endpoints.
func RegisterAppointmentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	appts := api.Group("/appointments")
	{
		appts.POST("", hb.Appointments.Create)
		appts.GET("", hb.Appointments.List)
		appts.GET("/:id", hb.Appointments.Get)
		appts.PUT("/:id/confirm", hb.Appointments.Confirm)
		appts.PUT("/:id/cancel", middleware.JWTAuth(hb.AuthService), hb.Appointments.Cancel)
	}
	api.POST("/appointments-simple", hb.Appointments.CreateSimple)
	api.GET("/patients/:id/appointments", hb.Appointments.PatientAppointments)
}

// RegisterDirectoryRoutes registers reference data, search, stats and notifications.
func RegisterDirectoryRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/", hb.Directory.Root)
	api.GET("/specialties", hb.Directory.Specialties)
	api.GET("/search", hb.Directory.Search)
	api.GET("/stats", hb.Directory.PlatformStats)
	api.GET("/geocode/reverse", hb.Maps.ReverseGeocode)
	api.POST("/notifications/register-token", hb.Notifications.RegisterToken)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", handlers.IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	RegisterAuthRoutes(api, hb)
	RegisterDoctorRoutes(api, hb)
	RegisterAppointmentRoutes(api, hb)
	RegisterDirectoryRoutes(api, hb)
	RegisterHealthRoute(r)
}

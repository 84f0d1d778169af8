package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dokta/config"
	"dokta/cron"
	"dokta/database"
	"dokta/database/repository"
	"dokta/handlers"
	"dokta/middleware"
	"dokta/routes"
	"dokta/services/appointment"
	"dokta/services/auth"
	"dokta/services/availability"
	"dokta/services/directory"
	"dokta/services/notification"
	"dokta/services/stats"
	"dokta/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	repos := repository.NewMongoRepositories(database.DB())
	if err := repos.EnsureIndexes(rootCtx); err != nil {
		logger.Fatal("main: failed to create indexes", zap.Error(err))
	}

	// services.
	cacheClient := utils.GetCacheClient()
	authService := auth.NewDefaultAuthService(repos.Users, repos.Doctors, utils.GetAuthCacheClient(), logger)
	directoryService := directory.NewDefaultDirectoryService(repos.Doctors, cacheClient, logger)
	availabilityService := availability.NewDefaultAvailabilityService(repos.Doctors, repos.Availability, repos.Appointments, logger)

	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()

	notificationService := notification.NewDefaultNotificationService(
		repos.Users,
		repos.Doctors,
		repos.Appointments,
		nil,
		queue,
		time.Duration(config.AppConfig.ReminderLeadMinutes)*time.Minute,
		logger,
	)
	if utils.FCMClient != nil {
		notificationService.FCM = utils.FCMClient
	}

	var claims appointment.IdempotencyStore
	if cacheClient != nil {
		claims = appointment.NewRedisIdempotencyStore(cacheClient)
	}
	appointmentService := appointment.NewDefaultAppointmentService(
		repos.Appointments,
		repos.Doctors,
		availabilityService,
		claims,
		notificationService,
		logger,
	)
	statsService := stats.NewDefaultStatsService(repos.Doctors, repos.Users, repos.Appointments)

	if config.AppConfig.SeedDemoData {
		if n, err := directoryService.SeedDemoDoctors(rootCtx); err != nil {
			logger.Error("main: demo data seeding failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("main: demo doctors created", zap.Int("count", n))
		}
	}

	// background workers.
	worker := cron.NewReminderWorker(notificationService, logger)
	worker.Start()

	var redisClients []*redis.Client
	for _, c := range []*redis.Client{cacheClient, utils.GetAuthCacheClient()} {
		if c != nil {
			redisClients = append(redisClients, c)
		}
	}
	utils.StartHealthMonitor(rootCtx, redisClients, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	if err := middleware.TrustProxies(router, config.AppConfig.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(handlers.Services{
		Auth:          authService,
		Directory:     directoryService,
		Availability:  availabilityService,
		Appointments:  appointmentService,
		Notifications: notificationService,
		Stats:         statsService,
		GoogleAPIKey:  config.AppConfig.GoogleAPIKey,
	})
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8001"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", config.AppConfig.Env))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	stop()
	if err := database.CloseDB(ctx); err != nil {
		logger.Error("main: failed to close MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}

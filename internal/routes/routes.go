package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/config"
	"github.com/wizmedik/booking-api/internal/handlers"
	"github.com/wizmedik/booking-api/internal/infra/cache"
	infraRepo "github.com/wizmedik/booking-api/internal/infra/repository"
	"github.com/wizmedik/booking-api/internal/kvstore"
	"github.com/wizmedik/booking-api/internal/middleware"
	"github.com/wizmedik/booking-api/internal/storage"
	"github.com/wizmedik/booking-api/internal/timezone"
	ucAppointment "github.com/wizmedik/booking-api/internal/usecase/appointment"
)

// Deps are the process-wide collaborators built in main.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *zap.Logger
	Store    kvstore.Store
	Counter  kvstore.Counter
	Auditor  ucAppointment.Auditor
	Uploader storage.Uploader // nil disables photo uploads
	Clock    timezone.Clock
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.CORSMiddleware(),
	)

	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if p, ok := d.Store.(kvstore.Pinger); ok {
		checks["store"] = p.Ping
	}
	health := handlers.NewHealthHandler(checks, d.Log)
	r.GET("/health", health.Live)
	r.GET("/ready", health.Ready)

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	providerRepo := infraRepo.NewProviderGormRepository(d.DB)
	scheduleCache := cache.NewScheduleCache(appointmentRepo, d.Store, d.Config.ScheduleCacheTTL, d.Log)

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	getAvailabilityUC := ucAppointment.NewGetAvailability(appointmentRepo, scheduleCache, d.Clock)
	createAppointmentUC := ucAppointment.NewCreateAppointment(appointmentRepo, scheduleCache, d.Clock, d.Auditor)
	completeAppointmentUC := ucAppointment.NewCompleteAppointment(appointmentRepo, d.Clock, d.Auditor)
	cancelAppointmentUC := ucAppointment.NewCancelAppointment(appointmentRepo, d.Clock, d.Auditor)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Config, d.Log)
	meHandler := handlers.NewMeHandler(d.DB)
	providerHandler := handlers.NewProviderHandler(providerRepo, d.Uploader, d.Log)
	servicesHandler := handlers.NewServicesHandler(providerRepo, d.Log)
	patientsHandler := handlers.NewPatientsHandler(providerRepo, d.Log)
	// Staff read their schedule uncached so edits show immediately.
	workingHoursHandler := handlers.NewWorkingHoursHandler(appointmentRepo, providerRepo, scheduleCache, d.Log)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		completeAppointmentUC,
		cancelAppointmentUC,
		listAppointmentsUC,
		d.Log,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	publicHandler := handlers.NewPublicHandler(providerRepo, getAvailabilityUC, createAppointmentUC, d.Log)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		publicAPI.Use(middleware.RateLimit(d.Counter, d.Config.RateLimitPerMinute, time.Minute, d.Log))
		{
			publicAPI.GET("/providers", publicHandler.SearchProviders)
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(d.Counter, d.Config.RateLimitPerMinute, time.Minute, d.Log))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/me")
		secured.Use(middleware.AuthMiddleware(d.Config))
		{
			secured.GET("", meHandler.GetMe)

			secured.GET("/provider", providerHandler.Get)
			secured.PATCH("/provider", providerHandler.Update)
			secured.PUT("/provider/photo", providerHandler.UploadPhoto)

			secured.GET("/patients", patientsHandler.List)

			secured.GET("/services", servicesHandler.List)
			secured.POST("/services", servicesHandler.Create)
			secured.PATCH("/services/:id", servicesHandler.Update)

			secured.GET("/working-hours", workingHoursHandler.Get)
			secured.PUT("/working-hours", workingHoursHandler.Update)

			secured.GET("/breaks", workingHoursHandler.ListBreaks)
			secured.POST("/breaks", workingHoursHandler.CreateBreak)
			secured.DELETE("/breaks/:id", workingHoursHandler.DeleteBreak)

			secured.GET("/holidays", workingHoursHandler.ListHolidays)
			secured.POST("/holidays", workingHoursHandler.CreateHoliday)
			secured.DELETE("/holidays/:id", workingHoursHandler.DeleteHoliday)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.ListByDate)
			secured.GET("/appointments/month", appointmentHandler.ListByMonth)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}

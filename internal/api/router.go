package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/notarly/backoffice/internal/appointment"
	"github.com/notarly/backoffice/internal/schedule"
)

// The handler layer depends on these narrow interfaces so tests can stand in
// fakes without a database, a blob store, or the external places API.

type AppointmentService interface {
	Create(ctx context.Context, date, timeStr string) (*appointment.Appointment, error)
	List(ctx context.Context) ([]appointment.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*appointment.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

type ScheduleService interface {
	BusinessHours(ctx context.Context) (schedule.BusinessHoursDocument, error)
	BlockedDates(ctx context.Context) (schedule.BlockedDatesDocument, error)
	BlockedTimes(ctx context.Context) (schedule.BlockedTimeSlotDocument, error)
	PendingAppointments(ctx context.Context) (schedule.PendingAppointmentsDocument, error)

	AppendBusinessHour(ctx context.Context, day, timeStr string) (schedule.BusinessHoursDocument, error)
	RemoveBusinessHour(ctx context.Context, day, timeStr string) (schedule.BusinessHoursDocument, error)
	AddBlockedDates(ctx context.Context, dates []string) (schedule.BlockedDatesDocument, error)
	RemoveBlockedDates(ctx context.Context, dates []string) (schedule.BlockedDatesDocument, error)
	AddBlockedTime(ctx context.Context, slot schedule.TimeSlot) (schedule.BlockedTimeSlotDocument, error)
	RemoveBlockedTime(ctx context.Context, slot schedule.TimeSlot) (schedule.BlockedTimeSlotDocument, error)
	EnqueuePending(ctx context.Context, req schedule.PendingRequest) (schedule.PendingAppointmentsDocument, error)
	DequeuePending(ctx context.Context, appointmentID string) (schedule.PendingAppointmentsDocument, error)
}

type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}

type PlacesProxy interface {
	Autocomplete(ctx context.Context, query string) ([]byte, error)
	Distance(ctx context.Context, placeID string) ([]byte, error)
}

type RouterConfig struct {
	Appointments AppointmentService
	Schedule     ScheduleService
	Credentials  CredentialVerifier
	Places       PlacesProxy
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Logger       *zap.Logger
	Env          string
	Version      string
	LoginRPS     float64
	LoginBurst   int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware)

	// Health endpoints
	if cfg.PgPool != nil && cfg.Redis != nil {
		health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	}

	// Appointment endpoints
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Post("/addAppointment", addAppointmentHandler(cfg.Appointments))
	r.Put("/updateAppointment/{appointmentId}", updateAppointmentHandler(cfg.Appointments))
	r.Delete("/deleteAppointment/{appointmentId}", deleteAppointmentHandler(cfg.Appointments))

	// Admin login
	rl := NewRateLimiter(cfg.LoginRPS, cfg.LoginBurst)
	r.With(rl.Limit).Post("/credentials", credentialsHandler(cfg.Credentials))

	// Config document reads
	r.Get("/api/business-hours", businessHoursHandler(cfg.Schedule))
	r.Get("/api/blocked-dates", blockedDatesHandler(cfg.Schedule))
	r.Get("/api/blocked-time-for-date", blockedTimesHandler(cfg.Schedule))
	r.Get("/api/pending-appointments", pendingAppointmentsHandler(cfg.Schedule))

	// Config document mutations
	r.Post("/update-hours", updateHoursHandler(cfg.Schedule))
	r.Post("/delete-hours", deleteHoursHandler(cfg.Schedule))
	r.Post("/updateBlockedDates", updateBlockedDatesHandler(cfg.Schedule))
	r.Post("/deleteSelectedDates", deleteSelectedDatesHandler(cfg.Schedule))
	r.Post("/updateBlockedTime", updateBlockedTimeHandler(cfg.Schedule))
	r.Post("/deleteBlockedTime", deleteBlockedTimeHandler(cfg.Schedule))
	r.Post("/updatePendingAppointments", updatePendingAppointmentsHandler(cfg.Schedule))
	r.Post("/removePendingAppointment", removePendingAppointmentHandler(cfg.Schedule))

	// Third-party proxies
	r.Get("/api/places", placesHandler(cfg.Places))
	r.Get("/api/distance", distanceHandler(cfg.Places))

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/admin"
	"github.com/careloop/patient-intake/internal/appointment"
	"github.com/careloop/patient-intake/internal/document"
	"github.com/careloop/patient-intake/internal/patient"
	"github.com/careloop/patient-intake/internal/roster"
)

type RouterConfig struct {
	Patients     *patient.Service
	Appointments *appointment.Service
	Documents    document.Store
	Gate         *admin.Gate
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Log          zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Home: entry point of the intake flow
	r.Get("/", homeHandler())

	// Patient intake and registration flow
	r.Post("/patients", createUserHandler(cfg.Patients, cfg.Log))
	r.Get("/patients/{userId}/register", registerPageHandler(cfg.Patients, cfg.Log))
	r.Post("/patients/{userId}/register", registerPatientHandler(cfg.Patients, cfg.Documents, cfg.Log))
	r.Get("/patients/{userId}/new-appointment", newAppointmentPageHandler(cfg.Patients, cfg.Log))
	r.Get("/patients/{userId}/new-appointment/success", appointmentSuccessHandler(cfg.Appointments, cfg.Log))

	// Appointment endpoints
	r.Post("/appointments", createAppointmentHandler(cfg.Appointments, cfg.Log))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments, cfg.Log))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments, cfg.Log))

	// Stored identification documents
	r.Get("/documents/{id}", getDocumentHandler(cfg.Documents, cfg.Log))

	// Admin gate and gated routes
	r.Post("/admin/verify", verifyPasskeyHandler(cfg.Gate, cfg.Log))
	r.Group(func(gr chi.Router) {
		gr.Use(AdminGateMiddleware(cfg.Gate))
		gr.Get("/admin", adminDashboardHandler(cfg.Appointments, cfg.Log))
		gr.Post("/appointments/{id}/schedule", scheduleAppointmentHandler(cfg.Appointments, cfg.Log))
		gr.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments, cfg.Log))
	})

	return r
}

func homeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "patient-intake",
			"doctors": roster.Doctors(),
		})
	}
}

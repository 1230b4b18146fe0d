package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/medical-appointment-scheduling/internal/appointment"
	"github.com/hackgods/medical-appointment-scheduling/internal/availability"
	"github.com/hackgods/medical-appointment-scheduling/internal/catalog"
	"github.com/hackgods/medical-appointment-scheduling/internal/metrics"
	"github.com/hackgods/medical-appointment-scheduling/internal/visit"
)

type CatalogService interface {
	CreateSpecialty(ctx context.Context, name string) (*catalog.Specialty, error)
	ListSpecialties(ctx context.Context) ([]catalog.Specialty, error)
	GetSpecialty(ctx context.Context, id uuid.UUID) (*catalog.Specialty, error)

	CreatePlan(ctx context.Context, name string) (*catalog.InsurancePlan, error)
	ListPlans(ctx context.Context) ([]catalog.InsurancePlan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*catalog.InsurancePlan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error

	CreateDoctor(ctx context.Context, name string, specialtyIDs []uuid.UUID) (*catalog.Doctor, error)
	ListDoctors(ctx context.Context) ([]catalog.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*catalog.Doctor, error)
	SetDoctorSpecialties(ctx context.Context, id uuid.UUID, specialtyIDs []uuid.UUID) (*catalog.Doctor, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error

	CreatePatient(ctx context.Context, in catalog.PatientInput) (*catalog.Patient, error)
	ListPatients(ctx context.Context, nameContains string) ([]catalog.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*catalog.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, upd catalog.PatientUpdate) (*catalog.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
}

type AvailabilityService interface {
	Define(ctx context.Context, in availability.WindowInput) (*availability.Window, error)
	List(ctx context.Context, f availability.Filter) ([]availability.Window, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type SchedulerService interface {
	ListSlots(ctx context.Context, specialtyID uuid.UUID, date time.Time, doctorID *uuid.UUID) ([]appointment.Slot, error)
	Book(ctx context.Context, req appointment.BookingRequest) (*appointment.Appointment, error)
	List(ctx context.Context, f appointment.ListFilter) ([]appointment.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*appointment.Appointment, error)
}

type VisitService interface {
	Record(ctx context.Context, appointmentID uuid.UUID, notes string) (*visit.Visit, error)
	List(ctx context.Context, f visit.Filter) ([]visit.Visit, error)
}

type RouterConfig struct {
	Catalog      CatalogService
	Availability AvailabilityService
	Scheduler    SchedulerService
	Visits       VisitService

	Postgres Pinger
	Redis    Pinger

	Logger         zerolog.Logger
	Metrics        *metrics.HTTP
	MetricsHandler http.Handler
	RequestTimeout time.Duration

	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(MetricsMiddleware(cfg.Metrics))
	r.Use(middleware.Recoverer)

	// Health endpoints
	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}

		// Catalog endpoints
		r.Route("/specialties", func(r chi.Router) {
			r.Post("/", createSpecialtyHandler(cfg.Catalog))
			r.Get("/", listSpecialtiesHandler(cfg.Catalog))
			r.Get("/{id}", getSpecialtyHandler(cfg.Catalog))
		})
		r.Route("/insurance-plans", func(r chi.Router) {
			r.Post("/", createPlanHandler(cfg.Catalog))
			r.Get("/", listPlansHandler(cfg.Catalog))
			r.Get("/{id}", getPlanHandler(cfg.Catalog))
			r.Delete("/{id}", deletePlanHandler(cfg.Catalog))
		})
		r.Route("/doctors", func(r chi.Router) {
			r.Post("/", createDoctorHandler(cfg.Catalog))
			r.Get("/", listDoctorsHandler(cfg.Catalog))
			r.Get("/{id}", getDoctorHandler(cfg.Catalog))
			r.Put("/{id}/specialties", setDoctorSpecialtiesHandler(cfg.Catalog))
			r.Delete("/{id}", deleteDoctorHandler(cfg.Catalog))
		})
		r.Route("/patients", func(r chi.Router) {
			r.Post("/", createPatientHandler(cfg.Catalog))
			r.Get("/", listPatientsHandler(cfg.Catalog))
			r.Get("/{id}", getPatientHandler(cfg.Catalog))
			r.Patch("/{id}", updatePatientHandler(cfg.Catalog))
			r.Delete("/{id}", deletePatientHandler(cfg.Catalog))
		})

		// Availability endpoints
		r.Post("/availability", defineAvailabilityHandler(cfg.Availability))
		r.Get("/availability", listAvailabilityHandler(cfg.Availability))
		r.Delete("/availability/{id}", removeAvailabilityHandler(cfg.Availability))
		r.Get("/slots", listSlotsHandler(cfg.Scheduler))

		// Appointment endpoints
		r.Post("/appointments", bookAppointmentHandler(cfg.Scheduler))
		r.Get("/appointments", listAppointmentsHandler(cfg.Scheduler))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Scheduler))
		r.Patch("/appointments/{id}/status", changeStatusHandler(cfg.Scheduler))

		// Visit endpoints
		r.Post("/visits", recordVisitHandler(cfg.Visits))
		r.Get("/visits", listVisitsHandler(cfg.Visits))
	})

	return r
}

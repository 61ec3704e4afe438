package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/healthconsult/telehealth-platform/internal/appointments"
	"github.com/healthconsult/telehealth-platform/internal/catalog"
	"github.com/healthconsult/telehealth-platform/internal/fees"
	httpmiddleware "github.com/healthconsult/telehealth-platform/internal/http/middleware"
	"github.com/healthconsult/telehealth-platform/internal/intake"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/internal/reporting"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	CatalogHandler       *catalog.Handler
	ProfessionalsHandler *professionals.Handler
	FeesHandler          *fees.Handler
	IntakeHandler        *intake.Handler
	AppointmentsHandler  *appointments.Handler
	ReportingHandler     *reporting.Handler

	// ChatHistoryHandler serves a professional's read of the intake
	// transcript behind one of their appointments.
	ChatHistoryHandler http.HandlerFunc

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP rate limiting for the whole surface; disabled when zero.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints (health, metrics, catalog and directory browsing)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.CatalogHandler != nil {
			public.Get("/conditions", cfg.CatalogHandler.ListConditions)
			public.Get("/conditions/{conditionID}", cfg.CatalogHandler.GetCondition)
		}
		if cfg.ProfessionalsHandler != nil {
			public.Get("/professionals", cfg.ProfessionalsHandler.List)
			public.Get("/professionals/{professionalID}", cfg.ProfessionalsHandler.Get)
			public.Get("/conditions/{conditionID}/professionals", cfg.ProfessionalsHandler.ListByCondition)
		}
		if cfg.FeesHandler != nil {
			public.Get("/professionals/{professionalID}/fee", cfg.FeesHandler.ActiveFee)
		}
	})

	// Authenticated routes (identity established by the gateway)
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.UserIdentity())

		if cfg.ProfessionalsHandler != nil {
			authed.Post("/professionals/apply", cfg.ProfessionalsHandler.Apply)
			authed.Get("/professionals/my/profile", cfg.ProfessionalsHandler.MyProfile)
		}

		if cfg.IntakeHandler != nil {
			authed.Route("/chat", func(r chi.Router) {
				r.Post("/start", cfg.IntakeHandler.Start)
				r.Post("/answer", cfg.IntakeHandler.Answer)
				r.Get("/sessions/{sessionID}", cfg.IntakeHandler.Session)
			})
		}

		if cfg.AppointmentsHandler != nil {
			authed.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.AppointmentsHandler.Book)
				r.Get("/", cfg.AppointmentsHandler.List)
				r.Post("/payment/mock", cfg.AppointmentsHandler.MockPayment)
				r.Get("/{appointmentID}", cfg.AppointmentsHandler.Get)
				r.Get("/{appointmentID}/join", cfg.AppointmentsHandler.Join)
				r.Post("/{appointmentID}/cancel", cfg.AppointmentsHandler.Cancel)
			})
		}

		authed.Route("/professional", func(pro chi.Router) {
			if cfg.FeesHandler != nil {
				pro.Post("/fee-requests", cfg.FeesHandler.CreateRequest)
				pro.Get("/fee-requests", cfg.FeesHandler.ListMine)
			}
			if cfg.AppointmentsHandler != nil {
				pro.Get("/appointments", cfg.AppointmentsHandler.ProfessionalList)
				pro.Post("/appointments/{appointmentID}/complete", cfg.AppointmentsHandler.ProfessionalComplete)
			}
			if cfg.ChatHistoryHandler != nil {
				pro.Get("/appointments/{appointmentID}/chat-history", cfg.ChatHistoryHandler)
			}
			if cfg.ReportingHandler != nil {
				pro.Get("/dashboard/stats", cfg.ReportingHandler.Stats)
			}
		})
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.ProfessionalsHandler != nil {
				admin.Get("/professionals", cfg.ProfessionalsHandler.List)
				admin.Put("/professionals/{professionalID}/status", cfg.ProfessionalsHandler.UpdateStatus)
			}
			if cfg.FeesHandler != nil {
				admin.Get("/fee-requests", cfg.FeesHandler.AdminList)
				admin.Post("/fee-requests/{requestID}/approve", cfg.FeesHandler.Approve)
				admin.Post("/fee-requests/{requestID}/reject", cfg.FeesHandler.Reject)
			}
			if cfg.ReportingHandler != nil {
				admin.Get("/analytics/overview", cfg.ReportingHandler.Overview)
			}
		})
	}

	return r
}

// healthCheck returns a simple health check response.
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/insurance-leadform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/insurance-leadform/internal/http/middleware"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	LeadForm       *handlers.LeadFormHandler
	Remote         handlers.RemoteStatus
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	SessionCookie      httpmiddleware.SessionCookie
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Operational endpoints
	r.Get("/health", handlers.Health(cfg.Remote))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Visitor-facing form and API
	if cfg.LeadForm != nil {
		r.Group(func(form chi.Router) {
			form.Use(httpmiddleware.Session(cfg.SessionCookie))
			form.Get("/", cfg.LeadForm.ShowForm)
			form.Get("/api/session", cfg.LeadForm.SessionStatus)

			form.Group(func(submit chi.Router) {
				if cfg.RateLimitPerSecond > 0 {
					submit.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
				}
				submit.Post("/", cfg.LeadForm.SubmitForm)
				submit.Post("/api/leads", cfg.LeadForm.CreateLead)
			})
		})
	}

	return r
}

package router

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/cashcarbc/voice-intake/internal/http/middleware"
	"github.com/cashcarbc/voice-intake/internal/leads"
	"github.com/cashcarbc/voice-intake/internal/voice"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	VoiceHandler   *voice.Handler
	LeadsHandler   *leads.Handler
	MetricsHandler http.Handler
	// HealthChecks are run by GET /health, keyed by dependency name.
	HealthChecks map[string]HealthCheck

	AdminAuthSecret string
	AdminIssuer     string

	// WebhookRateLimit is requests per second per IP on /twilio. 0 disables it.
	WebhookRateLimit float64
	WebhookBurst     int
}

// New creates the chi router.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	if cfg.VoiceHandler != nil {
		r.Route("/twilio", func(twilio chi.Router) {
			if cfg.WebhookRateLimit > 0 {
				twilio.Use(httpmiddleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookBurst))
			}
			twilio.Post("/voice", cfg.VoiceHandler.Voice)
			twilio.Post("/collect", cfg.VoiceHandler.Collect)
		})
	}

	if cfg.LeadsHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(httpmiddleware.AdminAuthConfig{
				Secret: cfg.AdminAuthSecret,
				Issuer: cfg.AdminIssuer,
			}))
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads/{callID}", cfg.LeadsHandler.GetLead)
		})
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response := map[string]string{"status": "ok"}
		code := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				response[name] = err.Error()
				response["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			response[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(response)
	}
}

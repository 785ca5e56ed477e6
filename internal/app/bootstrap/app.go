// Package bootstrap wires configuration into a running intake service. Both
// the HTTP server and the Lambda entry point build through it.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cashcarbc/voice-intake/internal/api/router"
	appconfig "github.com/cashcarbc/voice-intake/internal/config"
	"github.com/cashcarbc/voice-intake/internal/intake"
	"github.com/cashcarbc/voice-intake/internal/leads"
	"github.com/cashcarbc/voice-intake/internal/observability/metrics"
	"github.com/cashcarbc/voice-intake/internal/voice"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

// AWSClients are optional; nil clients disable the sinks that need them.
type AWSClients struct {
	SQS *sqs.Client
	SES *sesv2.Client
}

// App is a fully wired intake service.
type App struct {
	Handler  http.Handler
	Engine   *intake.Engine
	Sinks    *leads.MultiSink
	Leads    leads.Repository
	Registry *prometheus.Registry

	closers []func()
}

// Build wires sessions, distance, sinks, metrics and the HTTP router.
func Build(ctx context.Context, cfg *appconfig.Config, clients AWSClients, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	intakeMetrics := metrics.NewIntakeMetrics(registry)

	app := &App{Registry: registry}
	checks := map[string]router.HealthCheck{}

	var redisClient *redis.Client
	if cfg.SessionBackend == "redis" {
		redisClient = BuildRedisClient(ctx, cfg, logger, true)
		if redisClient != nil {
			app.closers = append(app.closers, func() { _ = redisClient.Close() })
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	store, err := BuildSessionStore(cfg, redisClient, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	pool := ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		app.closers = append(app.closers, pool.Close)
		checks["postgres"] = pool.Ping
	}

	email, provider := BuildEmailSender(cfg, clients.SES, logger)
	logger.Info("manager email transport selected", "provider", provider, "enabled", cfg.ManagerEmail != "")

	sinks, repo := BuildLeadSinks(ctx, cfg, SinkDeps{
		Pool:     pool,
		SQS:      clients.SQS,
		Email:    email,
		Observer: intakeMetrics,
	}, logger)
	app.Sinks = sinks
	app.Leads = repo

	app.Engine = intake.NewEngine(intake.EngineConfig{
		Machine: intake.NewMachine(intake.MachineConfig{
			BusinessName:        cfg.BusinessName,
			MaxRetries:          cfg.MaxRetries,
			PostalFallbackAfter: cfg.PostalFallbackAfter,
		}),
		Store:           store,
		Distance:        BuildDistanceLookup(cfg, logger),
		YardPostal:      cfg.YardPostal,
		DistanceTimeout: cfg.DistanceTimeout,
		Sink:            sinks,
		SinkTimeout:     cfg.SinkTimeout,
		Metrics:         intakeMetrics,
		Logger:          logger,
	})

	if cfg.TwilioAuthToken == "" {
		logger.Warn("TWILIO_AUTH_TOKEN not set; webhook signatures are not verified")
	}
	voiceHandler := voice.NewHandler(voice.HandlerConfig{
		Engine:        app.Engine,
		Renderer:      voice.NewRenderer(cfg.TwilioVoice, cfg.TwilioLanguage, ""),
		AuthToken:     cfg.TwilioAuthToken,
		PublicBaseURL: cfg.PublicBaseURL,
		Metrics:       intakeMetrics,
		Logger:        logger,
	})

	app.Handler = router.New(&router.Config{
		Logger:           logger,
		VoiceHandler:     voiceHandler,
		LeadsHandler:     leads.NewHandler(repo, logger),
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		HealthChecks:     checks,
		AdminAuthSecret:  cfg.AdminJWTSecret,
		AdminIssuer:      cfg.AdminJWTIssuer,
		WebhookRateLimit: cfg.RateLimitRPS,
		WebhookBurst:     cfg.RateLimitBurst,
	})
	return app, nil
}

// Close releases pooled connections in reverse order of creation.
func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

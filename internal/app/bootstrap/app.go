package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/insurance-leadform/internal/api/router"
	appconfig "github.com/wolfman30/insurance-leadform/internal/config"
	"github.com/wolfman30/insurance-leadform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/insurance-leadform/internal/http/middleware"
	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/observability/metrics"
	"github.com/wolfman30/insurance-leadform/internal/persistence"
	"github.com/wolfman30/insurance-leadform/internal/session"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// Options carries dependencies that are built outside the config.
type Options struct {
	Logger *logging.Logger
	// AWS is required only when the S3 mirror or SES is enabled.
	AWS *aws.Config
	// Clock drives the success countdown; nil means the wall clock.
	Clock session.Clock
}

// App is the assembled lead form service.
type App struct {
	Handler  http.Handler
	Gateway  *persistence.Gateway
	Sessions *session.Manager

	redis  *redis.Client
	logger *logging.Logger
}

// Build wires every component from cfg. The remote sheet is connected here;
// a failure leaves the service running in fallback-only mode.
func Build(ctx context.Context, cfg *appconfig.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leadMetrics := metrics.NewLeadMetrics(registry)

	gateway, err := BuildGateway(cfg, opts.AWS, leadMetrics, logger)
	if err != nil {
		return nil, err
	}
	if err := gateway.Connect(ctx); err == nil {
		logger.Info("connected to remote lead sheet", "sheet", cfg.SheetName, "worksheet", cfg.WorksheetName)
	}

	var redisClient *redis.Client
	if strings.EqualFold(strings.TrimSpace(cfg.SessionStore), "redis") {
		redisClient = BuildRedisClient(ctx, cfg, logger, true)
	}
	store, err := BuildSessionStore(cfg, redisClient, logger)
	if err != nil {
		return nil, err
	}

	catalog := leads.NewCatalog(cfg.LicensedStates, cfg.InsuranceTypes)
	lifecycleCfg := session.LifecycleConfig{
		Catalog: catalog,
		Builder: leads.NewBuilder(nil),
		Store:   gateway,
		Metrics: leadMetrics,
		Logger:  logger,
	}
	// a nil *LeadNotifier must not become a non-nil interface
	if notifier := BuildLeadNotifier(cfg, opts.AWS, logger); notifier != nil {
		lifecycleCfg.Notifier = notifier
	}
	lifecycle := session.NewLifecycle(lifecycleCfg)
	scheduler := session.NewScheduler(opts.Clock, cfg.CountdownTick)
	manager := session.NewManager(lifecycle, store, scheduler, logger)

	formHandler := handlers.NewLeadFormHandler(handlers.LeadFormConfig{
		Sessions: manager,
		Logger:   logger,
	})
	handler := router.New(&router.Config{
		Logger:             logger,
		LeadForm:           formHandler,
		Remote:             gateway,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		SessionCookie: httpmiddleware.SessionCookie{
			Name:   cfg.SessionCookieName,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		},
	})

	return &App{
		Handler:  handler,
		Gateway:  gateway,
		Sessions: manager,
		redis:    redisClient,
		logger:   logger,
	}, nil
}

// Close stops countdowns and releases the Redis connection.
func (a *App) Close() {
	a.Sessions.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", "error", err)
		}
	}
}

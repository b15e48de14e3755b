package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/Amund211/campaigncache/internal/adapters/cache"
	"github.com/Amund211/campaigncache/internal/adapters/campaignrepository"
	"github.com/Amund211/campaigncache/internal/adapters/database"
	"github.com/Amund211/campaigncache/internal/app"
	"github.com/Amund211/campaigncache/internal/config"
	"github.com/Amund211/campaigncache/internal/domain"
	"github.com/Amund211/campaigncache/internal/logging"
	"github.com/Amund211/campaigncache/internal/ports"
	"github.com/Amund211/campaigncache/internal/reporting"
	"github.com/Amund211/campaigncache/internal/telemetry"
)

const serviceName = "campaigncache"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instanceID := uuid.New().String()
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(logHandler).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	if os.Getenv("CAMPAIGNCACHE_ENVIRONMENT") == "development" {
		if err := config.LoadDotEnv(".env"); err != nil {
			fail("Failed to load .env", "error", err.Error())
		}
	}

	conf, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}

	if conf.GoogleCloudProject() != "" {
		logHandler = logging.NewGoogleCloudTracingLogHandler(logHandler, conf.GoogleCloudProject())
		logger = slog.New(logHandler).With("instanceID", instanceID)
	}
	logger.Info("Loaded config", "config", conf.NonSensitiveString())

	if !conf.IsDevelopment() {
		shutdownTelemetry, err := telemetry.SetupOTelSDK(ctx, serviceName)
		if err != nil {
			fail("Failed to set up OpenTelemetry", "error", err.Error())
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized OpenTelemetry")
	}

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(conf)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	logger.Info("Initializing database connection")
	db, err := database.NewCloudsqlPostgresDatabase(conf)
	if err != nil {
		fail("Failed to initialize database", "error", err.Error())
	}
	defer db.Close()
	logger.Info("Initialized database connection")

	repositorySchemaName := database.GetSchemaName(!conf.IsProduction())

	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, repositorySchemaName)
	if err != nil {
		fail("Failed to migrate database", "error", err.Error())
	}

	campaignRepo := campaignrepository.NewPostgres(db, repositorySchemaName)
	logger.Info("Initialized CampaignRepository")

	campaignsPolicy, err := cache.NewPolicy(conf.CampaignRefreshTimeout(), conf.CampaignCacheValidity())
	if err != nil {
		fail("Failed to create campaigns cache policy", "error", err.Error())
	}

	cacheRegistry := cache.NewRegistry()
	campaignsRecord, err := cache.Register[[]domain.Campaign](cacheRegistry, "campaigns", campaignsPolicy)
	if err != nil {
		fail("Failed to register campaigns cache", "error", err.Error())
	}
	logger.Info("Registered refresh-ahead caches", "names", cacheRegistry.Names(), "policy", campaignsPolicy.String())

	campaignByIDCache := cache.NewTTLCache[domain.Campaign](1 * time.Minute)
	defer campaignByIDCache.Stop()

	allowedOrigins, err := ports.NewDomainSuffixes(conf.CORSAllowedDomains()...)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	getCampaigns := app.BuildGetCampaignsWithCache(campaignsRecord, campaignRepo)
	getCampaign := app.BuildGetCampaignWithCache(campaignByIDCache, campaignRepo)
	resetCaches := app.BuildResetCaches(cacheRegistry)
	getCacheStatus := app.BuildGetCacheStatus(cacheRegistry)

	mux := http.NewServeMux()

	mux.HandleFunc(
		"OPTIONS /v1/campaigns",
		ports.BuildCORSHandler(allowedOrigins, http.MethodGet),
	)
	mux.HandleFunc(
		"GET /v1/campaigns",
		ports.MakeGetCampaignsHandler(
			getCampaigns,
			time.Now,
			allowedOrigins,
			logger.With("port", "campaigns"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"OPTIONS /v1/campaigns/{id}",
		ports.BuildCORSHandler(allowedOrigins, http.MethodGet),
	)
	mux.HandleFunc(
		"GET /v1/campaigns/{id}",
		ports.MakeGetCampaignHandler(
			getCampaign,
			allowedOrigins,
			logger.With("port", "campaign"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"POST /v1/admin/cache/reset",
		ports.MakeResetCachesHandler(
			resetCaches,
			cacheRegistry.Names,
			conf.AdminToken(),
			logger.With("port", "resetcaches"),
			sentryMiddleware,
		),
	)
	mux.HandleFunc(
		"GET /v1/admin/cache/status",
		ports.MakeGetCacheStatusHandler(
			getCacheStatus,
			conf.AdminToken(),
			logger.With("port", "cachestatus"),
			sentryMiddleware,
		),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", conf.Port()),
		Handler:           otelhttp.NewHandler(mux, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	logger.Info("Init complete", "port", conf.Port())

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			fail("Server error", "error", err.Error())
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", "error", err.Error())
		}
	}

	logger.Info("Server shutdown")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/cache"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/database"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/providers/geolocation"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/providers/storage"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/search"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/handlers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/routes"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/auth"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/redis"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/typesense"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/config"
)

const (
	devJWTSecret    = "development-only-secret"
	upstreamTimeout = 30 * time.Second
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func jwtSecret(cfg *config.Config) string {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret
	}
	log.Warn().Msg("JWT_SECRET is not set; using the development secret")
	return devJWTSecret
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.EnableLogExport(cfg.OTEL.ServiceName)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize metrics")
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize PostgreSQL client")
		return err
	}
	defer pgClient.Close()

	healthChecks := map[string]handlers.Pinger{"postgres": pgClient}

	// Redis is optional; the service falls back to in-process caches
	var cacheProvider providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis client, continuing without shared cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			healthChecks["redis"] = redisClient
		}
	}
	if cacheProvider == nil {
		memoryCache, err := cache.NewMemoryAdapter(4096)
		if err != nil {
			return err
		}
		cacheProvider = memoryCache
	}

	var searchIndex repositories.TestSearchIndex
	if cfg.Typesense.Enabled {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Typesense client, suggestions will use the database")
		} else {
			if err := typesenseClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to init Typesense schema")
			}
			searchIndex = search.NewTypesenseAdapter(typesenseClient)
		}
	}

	// Repositories
	labRepo := database.NewCachedLabAdapter(database.NewLabAdapter(pgClient), cacheProvider, cfg.Cache.LabTTL, metrics)
	testRepo := database.NewTestAdapter(pgClient)
	labTestRepo := database.NewLabTestAdapter(pgClient)
	bookingRepo := database.NewBookingAdapter(pgClient)

	geocoder := newGeocoder(cfg, cacheProvider)
	fileStorage, memoryFiles := newFileStorage(cfg)

	tokens, err := auth.NewTokenManager(jwtSecret(cfg), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	// Services
	directory := services.NewLabDirectoryService(labRepo, testRepo, labTestRepo, cfg.Discovery.RequireVerified, metrics)
	catalog := services.NewTestCatalogService(testRepo, labRepo, labTestRepo, searchIndex, cfg.Discovery.DefaultRadiusKm, cfg.Discovery.RequireVerified, metrics)
	bookings := services.NewBookingService(bookingRepo, testRepo, labRepo, services.UnlimitedSlots{}, cfg.Booking.StrictTransitions, metrics)
	portal := services.NewLabManagementService(labRepo, testRepo, labTestRepo, searchIndex, geocoder, tokens)
	admin := services.NewLabAdminService(labRepo)
	prescriptions := services.NewPrescriptionService(fileStorage, cfg.Storage.Folder, cfg.Storage.MaxUploadBytes)
	locations := services.NewLocationCache(cacheProvider, geocoder, cfg.Cache.LocationCacheSize, cfg.Cache.LocationTTL)

	var files handlers.StoredFiles
	if memoryFiles != nil {
		files = memoryFiles
	}

	router := routes.NewRouter(routes.Handlers{
		Health:    handlers.NewHealthHandler(healthChecks),
		Tests:     handlers.NewTestHandler(catalog, locations),
		Labs:      handlers.NewLabHandler(directory),
		Bookings:  handlers.NewBookingHandler(bookings),
		LabPortal: handlers.NewLabPortalHandler(portal),
		Admin:     handlers.NewAdminHandler(admin),
		Uploads:   handlers.NewUploadHandler(prescriptions, files),
		Session:   handlers.NewSessionHandler(locations),
	}, routes.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tokens:         tokens,
		LabRepo:        labRepo,
		TestRepo:       testRepo,
		Cache:          middleware.NewCacheMiddleware(cacheProvider, metrics),
		Metrics:        metrics,
	})

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}

func newGeocoder(cfg *config.Config, cacheProvider providers.CacheProvider) providers.GeolocationProvider {
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GEOLOCATION_API_KEY is not set; using mock geolocation provider")
			return geolocation.NewMockGeolocationProvider()
		}
		return geolocation.NewBreakerProvider(
			geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider),
			upstreamTimeout,
		)
	default:
		return geolocation.NewMockGeolocationProvider()
	}
}

// newFileStorage returns the configured prescription storage and, for the
// in-memory backend, the store that serves files back
func newFileStorage(cfg *config.Config) (providers.FileStorage, *storage.MemoryStorage) {
	if cfg.Storage.Provider == "cloudinary" {
		return storage.NewBreakerStorage(
			storage.NewCloudinaryStorage(cfg.Storage.CloudName, cfg.Storage.APIKey, cfg.Storage.APISecret),
			upstreamTimeout,
		), nil
	}

	log.Warn().Msg("Prescriptions are stored in memory and lost on restart")
	memory := storage.NewMemoryStorage(cfg.Storage.PublicBaseURL)
	return memory, memory
}

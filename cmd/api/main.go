package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/fooddiscount-backend/api/routes"
	"github.com/angelmondragon/fooddiscount-backend/internal/accounts"
	"github.com/angelmondragon/fooddiscount-backend/internal/admin"
	"github.com/angelmondragon/fooddiscount-backend/internal/auth"
	"github.com/angelmondragon/fooddiscount-backend/internal/media"
	"github.com/angelmondragon/fooddiscount-backend/internal/products"
	"github.com/angelmondragon/fooddiscount-backend/internal/stores"
	"github.com/angelmondragon/fooddiscount-backend/pkg/auth/session"
	"github.com/angelmondragon/fooddiscount-backend/pkg/config"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db"
	"github.com/angelmondragon/fooddiscount-backend/pkg/logger"
	"github.com/angelmondragon/fooddiscount-backend/pkg/maps"
	"github.com/angelmondragon/fooddiscount-backend/pkg/migrate"
	"github.com/angelmondragon/fooddiscount-backend/pkg/redis"
	"github.com/angelmondragon/fooddiscount-backend/pkg/security"
	"github.com/angelmondragon/fooddiscount-backend/pkg/storage"
	"github.com/angelmondragon/fooddiscount-backend/pkg/storage/gcs"
	"github.com/angelmondragon/fooddiscount-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	objectStore, err := newObjectStore(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("create object store: %w", err)
	}

	var geocoder stores.Geocoder
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			return fmt.Errorf("create maps client: %w", err)
		}
		geocoder = mapsClient
	} else {
		logg.Warn(ctx, "google maps api key not set, geocoding disabled")
	}

	accountRepo := accounts.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())

	storeService, err := stores.NewService(storeRepo, dbClient, geocoder, logg, cfg.Geo.DefaultRadiusKm)
	if err != nil {
		return fmt.Errorf("create store service: %w", err)
	}

	productService, err := products.NewService(productRepo, dbClient, storeRepo, cfg.Geo.DefaultRadiusKm)
	if err != nil {
		return fmt.Errorf("create product service: %w", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:       accountRepo,
		Stores:         storeRepo,
		SessionManager: sessionManager,
		Hasher:         security.NewHasher(cfg.Password),
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	adminService, err := admin.NewService(admin.ServiceParams{
		Accounts: accountRepo,
		Stores:   storeRepo,
		Products: productRepo,
		Manager:  storeService,
	})
	if err != nil {
		return fmt.Errorf("create admin service: %w", err)
	}

	mediaService, err := media.NewService(objectStore, cfg.Media.MaxUploadBytes())
	if err != nil {
		return fmt.Errorf("create media service: %w", err)
	}

	if cfg.Admin.Seed {
		created, err := authService.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			logg.Info(logg.WithField(ctx, "email", cfg.Admin.Email), "admin account created")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("HOSTNAME")
	if id == "" {
		id = "local"
	}
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
		"storage":  cfg.Storage.Backend,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Cache:          redisClient,
			RateLimitRedis: redisClient.Raw(),
			Sessions:       sessionManager,
			Registry:       registry,
			AuthService:    authService,
			StoreService:   storeService,
			ProductService: productService,
			AdminService:   adminService,
			MediaService:   mediaService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(serverCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newObjectStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.ObjectStore, error) {
	if cfg.Storage.Backend == config.StorageBackendGCS {
		return gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	}
	return local.New(cfg.Storage.MediaDir, cfg.Storage.URLPath)
}

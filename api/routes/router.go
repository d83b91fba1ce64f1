package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/fooddiscount-backend/api/controllers"
	"github.com/angelmondragon/fooddiscount-backend/api/middleware"
	"github.com/angelmondragon/fooddiscount-backend/internal/admin"
	"github.com/angelmondragon/fooddiscount-backend/internal/auth"
	"github.com/angelmondragon/fooddiscount-backend/internal/media"
	"github.com/angelmondragon/fooddiscount-backend/internal/products"
	"github.com/angelmondragon/fooddiscount-backend/internal/stores"
	"github.com/angelmondragon/fooddiscount-backend/pkg/auth/session"
	"github.com/angelmondragon/fooddiscount-backend/pkg/config"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/angelmondragon/fooddiscount-backend/pkg/logger"
	"github.com/angelmondragon/fooddiscount-backend/pkg/metrics"
)

// Cache is the Redis surface used by the idempotency and auth throttling
// middleware and the readiness probe.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger
	DB     db.Pinger
	Cache  Cache

	// RateLimitRedis backs the global limiter. Nil keeps limiting in-process.
	RateLimitRedis *goredis.Client
	Sessions       session.AccessSessionChecker
	Registry       *prometheus.Registry

	AuthService    auth.Service
	StoreService   stores.Service
	ProductService products.Service
	AdminService   admin.Service
	MediaService   media.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var httpMetrics *metrics.HTTPMetrics
	if deps.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(deps.Registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Cache, logg))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	if strings.EqualFold(cfg.Storage.Backend, config.StorageBackendLocal) {
		prefix := "/" + strings.Trim(cfg.Storage.URLPath, "/")
		files := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(cfg.Storage.MediaDir)))
		r.Handle(prefix+"/*", files)
	}

	authMW := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	storeRole := middleware.RequireRole(logg, enums.AccountRoleStore, enums.AccountRoleAdmin)
	adminRole := middleware.RequireRole(logg, enums.AccountRoleAdmin)
	limiter := middleware.NewRateLimiter(deps.RateLimitRedis, cfg.RateLimit, logg)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Use(middleware.Idempotency(deps.Cache, logg))

		r.Get("/health", controllers.HealthLive(cfg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.RegisterPolicy(cfg.AuthRateLimit), deps.Cache, logg)).
				Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.With(middleware.AuthRateLimit(middleware.LoginPolicy(cfg.AuthRateLimit), deps.Cache, logg)).
				Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, cfg.JWT, logg))
			r.With(authMW).Get("/me", controllers.AuthMe(deps.AuthService, logg))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreList(deps.StoreService, logg))
			r.Get("/{slug}", controllers.StoreBySlug(deps.StoreService, logg))

			r.Group(func(r chi.Router) {
				r.Use(authMW)
				r.Get("/address/autocomplete", controllers.StoreAddressAutocomplete(deps.StoreService, logg))

				r.Group(func(r chi.Router) {
					r.Use(storeRole)
					r.Get("/my/store", controllers.MyStore(deps.StoreService, logg))
					r.Post("/", controllers.StoreUpsert(deps.StoreService, logg))
					r.Put("/", controllers.StoreUpsert(deps.StoreService, logg))
					r.Delete("/", controllers.StoreDelete(deps.StoreService, logg))
				})
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductFeed(deps.ProductService, logg))
			r.Get("/{id}", controllers.ProductGet(deps.ProductService, logg))

			r.Group(func(r chi.Router) {
				r.Use(authMW, storeRole)
				r.Post("/", controllers.ProductCreate(deps.ProductService, logg))
				r.Put("/{id}", controllers.ProductUpdate(deps.ProductService, logg))
				r.Patch("/{id}/picked-up", controllers.ProductPickedUp(deps.ProductService, logg))
				r.Delete("/{id}", controllers.ProductDelete(deps.ProductService, logg))
			})
		})

		r.With(authMW, storeRole).Post("/uploads/{kind}",
			controllers.MediaUpload(deps.MediaService, cfg.Media.MaxUploadBytes(), logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, adminRole)
			r.Get("/statistics", controllers.AdminStatistics(deps.AdminService, logg))
			r.Get("/stores", controllers.AdminListStores(deps.AdminService, logg))
			r.Get("/customers", controllers.AdminListCustomers(deps.AdminService, logg))
			r.Put("/stores/{id}", controllers.AdminUpdateStore(deps.AdminService, logg))
			r.Delete("/stores/{id}", controllers.AdminDeleteStore(deps.AdminService, logg))
			r.Post("/stores/{id}/enter", controllers.AdminEnterStore(deps.AuthService, logg))
			r.Patch("/users/{id}/toggle-status", controllers.AdminToggleStatus(deps.AdminService, logg))
		})
	})

	return r
}

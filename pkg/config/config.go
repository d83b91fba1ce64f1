package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GoogleMaps    GoogleMapsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Storage       StorageConfig
	Media         MediaConfig
	Admin         AdminConfig
	Geo           GeoConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.GCS); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODDISCOUNT_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODDISCOUNT_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"FOODDISCOUNT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODDISCOUNT_LOG_WARN_STACK" default:"false"`
	ClientURL    string `envconfig:"FOODDISCOUNT_CLIENT_URL" default:"http://localhost:3012"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated client URL list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(a.ClientURL, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"FOODDISCOUNT_DB_DSN"`
	Driver string `envconfig:"FOODDISCOUNT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FOODDISCOUNT_DB_HOST"`
	LegacyPort     int    `envconfig:"FOODDISCOUNT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOODDISCOUNT_DB_USER"`
	LegacyPassword string `envconfig:"FOODDISCOUNT_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOODDISCOUNT_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOODDISCOUNT_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"FOODDISCOUNT_SQLITE_PATH" default:"fooddiscount.db"`

	MaxOpenConns    int           `envconfig:"FOODDISCOUNT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODDISCOUNT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODDISCOUNT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODDISCOUNT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODDISCOUNT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOODDISCOUNT_REDIS_ADDR"`
	Password     string        `envconfig:"FOODDISCOUNT_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODDISCOUNT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODDISCOUNT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODDISCOUNT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODDISCOUNT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODDISCOUNT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODDISCOUNT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FOODDISCOUNT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FOODDISCOUNT_JWT_ISSUER" default:"fooddiscount"`
	ExpirationMinutes      int    `envconfig:"FOODDISCOUNT_JWT_EXPIRATION_MINUTES" default:"10080"`
	RefreshTokenTTLMinutes int    `envconfig:"FOODDISCOUNT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FOODDISCOUNT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FOODDISCOUNT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FOODDISCOUNT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FOODDISCOUNT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FOODDISCOUNT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FOODDISCOUNT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FOODDISCOUNT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FOODDISCOUNT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FOODDISCOUNT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FOODDISCOUNT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FOODDISCOUNT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig drives the global per-client limiter.
type RateLimitConfig struct {
	Enabled           bool `envconfig:"FOODDISCOUNT_RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `envconfig:"FOODDISCOUNT_RATE_LIMIT_PER_MINUTE" default:"120"`
	Burst             int  `envconfig:"FOODDISCOUNT_RATE_LIMIT_BURST" default:"40"`
	FailOpen          bool `envconfig:"FOODDISCOUNT_RATE_LIMIT_FAIL_OPEN" default:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FOODDISCOUNT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FOODDISCOUNT_AUTO_MIGRATE" default:"false"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"FOODDISCOUNT_GOOGLE_MAPS_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FOODDISCOUNT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FOODDISCOUNT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FOODDISCOUNT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"FOODDISCOUNT_GCS_BUCKET_NAME"`
	PublicBase string `envconfig:"FOODDISCOUNT_GCS_PUBLIC_BASE" default:"https://storage.googleapis.com"`
}

const (
	StorageBackendLocal = "local"
	StorageBackendGCS   = "gcs"
)

type StorageConfig struct {
	Backend  string `envconfig:"FOODDISCOUNT_STORAGE_BACKEND" default:"local"`
	MediaDir string `envconfig:"FOODDISCOUNT_MEDIA_DIR" default:"uploads"`
	URLPath  string `envconfig:"FOODDISCOUNT_MEDIA_URL_PATH" default:"/uploads"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"FOODDISCOUNT_MEDIA_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes converts the configured upload cap into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type AdminConfig struct {
	Email    string `envconfig:"FOODDISCOUNT_ADMIN_EMAIL" default:"admin@fooddiscount.com"`
	Password string `envconfig:"FOODDISCOUNT_ADMIN_PASSWORD" default:"admin123"`
	Seed     bool   `envconfig:"FOODDISCOUNT_ADMIN_SEED" default:"true"`
}

type GeoConfig struct {
	DefaultRadiusKm float64 `envconfig:"FOODDISCOUNT_GEO_DEFAULT_RADIUS_KM" default:"10"`
}

func (s StorageConfig) validate(gcs GCSConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StorageBackendLocal:
		if strings.TrimSpace(s.MediaDir) == "" {
			return fmt.Errorf("%s is required for the local storage backend", EnvMediaDir)
		}
		return nil
	case StorageBackendGCS:
		if strings.TrimSpace(gcs.BucketName) == "" {
			return fmt.Errorf("%s is required for the gcs storage backend", EnvGCSBucket)
		}
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvStorageBackend, StorageBackendLocal, StorageBackendGCS, s.Backend)
	}
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

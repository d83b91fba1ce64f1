package config

// EnvPrefix is handed to envconfig; every field carries a fully qualified tag.
const EnvPrefix = "FOODDISCOUNT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "FOODDISCOUNT_APP_ENV"
	EnvPort      = "FOODDISCOUNT_APP_PORT"
	EnvLogLevel  = "FOODDISCOUNT_LOG_LEVEL"
	EnvClientURL = "FOODDISCOUNT_CLIENT_URL"

	EnvDBDSN  = "FOODDISCOUNT_DB_DSN"
	EnvDBHost = "FOODDISCOUNT_DB_HOST"
	EnvDBUser = "FOODDISCOUNT_DB_USER"
	EnvDBName = "FOODDISCOUNT_DB_NAME"

	EnvRedisURL = "FOODDISCOUNT_REDIS_URL"

	EnvJWTSecret              = "FOODDISCOUNT_JWT_SECRET"
	EnvJWTIssuer              = "FOODDISCOUNT_JWT_ISSUER"
	EnvJWTExpMins             = "FOODDISCOUNT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FOODDISCOUNT_REFRESH_TOKEN_TTL_MINUTES"

	EnvStorageBackend = "FOODDISCOUNT_STORAGE_BACKEND"
	EnvMediaDir       = "FOODDISCOUNT_MEDIA_DIR"
	EnvGCPProjectID   = "FOODDISCOUNT_GCP_PROJECT_ID"
	EnvGCSBucket      = "FOODDISCOUNT_GCS_BUCKET_NAME"

	EnvAdminEmail    = "FOODDISCOUNT_ADMIN_EMAIL"
	EnvAdminPassword = "FOODDISCOUNT_ADMIN_PASSWORD"

	EnvGeoDefaultRadiusKm = "FOODDISCOUNT_GEO_DEFAULT_RADIUS_KM"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

const (
	EnvPrefix = "STALLPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DefaultSQLiteDSN = "file:data/state.db?_busy_timeout=5000"
)

const (
	EnvAppEnv       = "STALLPOS_APP_ENV"
	EnvPort         = "STALLPOS_APP_PORT"
	EnvLogLevel     = "STALLPOS_LOG_LEVEL"
	EnvLogWarnStack = "STALLPOS_LOG_WARN_STACK"

	EnvStoreBackend     = "STALLPOS_STORE_BACKEND"
	EnvStoreFile        = "STALLPOS_STORE_FILE"
	EnvStoreSnapshotKey = "STALLPOS_STORE_SNAPSHOT_KEY"
	EnvOrderFlow        = "STALLPOS_ORDER_FLOW"

	EnvDBDSN = "STALLPOS_DB_DSN"

	EnvRedisURL  = "STALLPOS_REDIS_URL"
	EnvRedisAddr = "STALLPOS_REDIS_ADDR"

	EnvIdempotencyTTL = "STALLPOS_IDEMPOTENCY_TTL"
	EnvCORSOrigins    = "STALLPOS_CORS_ALLOWED_ORIGINS"

	EnvDisplayAPIURL       = "STALLPOS_DISPLAY_API_URL"
	EnvDisplayKind         = "STALLPOS_DISPLAY_KIND"
	EnvDisplayPollInterval = "STALLPOS_DISPLAY_POLL_INTERVAL"
	EnvDisplayReadyLimit   = "STALLPOS_DISPLAY_READY_LIMIT"
)

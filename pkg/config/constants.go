package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvPort              = "STOREFRONT_APP_PORT"
	EnvLogLevel          = "STOREFRONT_LOG_LEVEL"
	EnvDBDSN             = "STOREFRONT_DB_DSN"
	EnvDBHost            = "STOREFRONT_DB_HOST"
	EnvDBPort            = "STOREFRONT_DB_PORT"
	EnvDBUser            = "STOREFRONT_DB_USER"
	EnvDBPassword        = "STOREFRONT_DB_PASSWORD"
	EnvDBName            = "STOREFRONT_DB_NAME"
	EnvDBSSLMode         = "STOREFRONT_DB_SSLMODE"
	EnvRedisURL          = "STOREFRONT_REDIS_URL"
	EnvJWTSecret         = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer         = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins        = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvSessionTTLMinutes = "STOREFRONT_SESSION_TTL_MINUTES"
	EnvUseSQLite         = "STOREFRONT_USE_SQLITE"
	EnvAutoMigrate       = "STOREFRONT_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

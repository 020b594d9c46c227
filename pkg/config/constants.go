package config

const (
	// EnvPrefix namespaces every environment variable read by envconfig.
	EnvPrefix = "KLINIK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "KLINIK_APP_ENV"
	EnvPort     = "KLINIK_APP_PORT"
	EnvDBDSN    = "KLINIK_DB_DSN"
	EnvDBHost   = "KLINIK_DB_HOST"
	EnvDBUser   = "KLINIK_DB_USER"
	EnvDBName   = "KLINIK_DB_NAME"
	EnvRedisURL = "KLINIK_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Receipt      ReceiptConfig
	Dashboard    DashboardConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KLINIK_APP_ENV" required:"true"`
	Port         string `envconfig:"KLINIK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KLINIK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KLINIK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KLINIK_DB_DSN"`
	Driver string `envconfig:"KLINIK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KLINIK_DB_HOST"`
	LegacyPort     int    `envconfig:"KLINIK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KLINIK_DB_USER"`
	LegacyPassword string `envconfig:"KLINIK_DB_PASSWORD"`
	LegacyName     string `envconfig:"KLINIK_DB_NAME"`
	LegacySSLMode  string `envconfig:"KLINIK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KLINIK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KLINIK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KLINIK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KLINIK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; when URL and Address are both empty the API runs
// without the dashboard cache.
type RedisConfig struct {
	URL          string        `envconfig:"KLINIK_REDIS_URL"`
	Address      string        `envconfig:"KLINIK_REDIS_ADDR"`
	Password     string        `envconfig:"KLINIK_REDIS_PASSWORD"`
	DB           int           `envconfig:"KLINIK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KLINIK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KLINIK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KLINIK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KLINIK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KLINIK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"KLINIK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type ReceiptConfig struct {
	Prefix string `envconfig:"KLINIK_RECEIPT_PREFIX" default:"KWT"`
}

type DashboardConfig struct {
	CacheTTL time.Duration `envconfig:"KLINIK_DASHBOARD_CACHE_TTL" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KLINIK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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

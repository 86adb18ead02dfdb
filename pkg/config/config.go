package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "trego"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "TREGO_APP_ENV"
	EnvPort   = "TREGO_APP_PORT"
	EnvDBDSN  = "TREGO_DB_DSN"
	EnvDBHost = "TREGO_DB_HOST"
	EnvDBUser = "TREGO_DB_USER"
	EnvDBName = "TREGO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Allocation   AllocationConfig
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
	Env          string `envconfig:"TREGO_APP_ENV" required:"true"`
	Port         string `envconfig:"TREGO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TREGO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TREGO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TREGO_DB_DSN"`
	Driver string `envconfig:"TREGO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TREGO_DB_HOST"`
	LegacyPort     int    `envconfig:"TREGO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TREGO_DB_USER"`
	LegacyPassword string `envconfig:"TREGO_DB_PASSWORD"`
	LegacyName     string `envconfig:"TREGO_DB_NAME"`
	LegacySSLMode  string `envconfig:"TREGO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TREGO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TREGO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TREGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TREGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TREGO_REDIS_URL"`
	Address      string        `envconfig:"TREGO_REDIS_ADDR"`
	Password     string        `envconfig:"TREGO_REDIS_PASSWORD"`
	DB           int           `envconfig:"TREGO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TREGO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TREGO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TREGO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TREGO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TREGO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AllocationConfig carries the bucket engine knobs the storefront surfaces.
type AllocationConfig struct {
	DeliveryCharge   string        `envconfig:"TREGO_ALLOCATION_DELIVERY_CHARGE" default:"0"`
	DeliveryEstimate string        `envconfig:"TREGO_ALLOCATION_DELIVERY_ESTIMATE" default:"1 hrs extra"`
	VendorCacheTTL   time.Duration `envconfig:"TREGO_ALLOCATION_VENDOR_CACHE_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TREGO_AUTO_MIGRATE" default:"false"`
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

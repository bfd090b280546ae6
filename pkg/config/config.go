package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = ""
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Payments      PaymentsConfig
	Cron          CronConfig
	Mail          MailConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RENTFLEET_APP_ENV" required:"true"`
	Port         string `envconfig:"RENTFLEET_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RENTFLEET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RENTFLEET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"RENTFLEET_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"RENTFLEET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RENTFLEET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RENTFLEET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENTFLEET_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// LockTimeout bounds how long a checkout or transition waits on a row
	// lock before surfacing a concurrency error to the caller.
	LockTimeout time.Duration `envconfig:"RENTFLEET_DB_LOCK_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENTFLEET_REDIS_URL"`
	Address      string        `envconfig:"RENTFLEET_REDIS_ADDR"`
	Password     string        `envconfig:"RENTFLEET_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENTFLEET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENTFLEET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENTFLEET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENTFLEET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENTFLEET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RENTFLEET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RENTFLEET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RENTFLEET_JWT_ISSUER" default:"rentfleet"`
	ExpirationMinutes int    `envconfig:"RENTFLEET_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RENTFLEET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RENTFLEET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RENTFLEET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RENTFLEET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RENTFLEET_ARGON_KEY_LEN" default:"32"`
}

type PaymentsConfig struct {
	IntentTTL time.Duration `envconfig:"RENTFLEET_PAYMENT_INTENT_TTL" default:"30m"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"RENTFLEET_CRON_INTERVAL" default:"5m"`
	LockKey  string        `envconfig:"RENTFLEET_CRON_LOCK_KEY" default:"rentfleet:cron:leader"`
	LockTTL  time.Duration `envconfig:"RENTFLEET_CRON_LOCK_TTL" default:"10m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RENTFLEET_LOGIN_RATE_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"RENTFLEET_LOGIN_RATE_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"RENTFLEET_LOGIN_RATE_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"RENTFLEET_REGISTER_RATE_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"RENTFLEET_REGISTER_RATE_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"RENTFLEET_REGISTER_RATE_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RENTFLEET_AUTO_MIGRATE" default:"false"`
}

type MailConfig struct {
	SendgridAPIKey string `envconfig:"RENTFLEET_SENDGRID_API_KEY"`
	FromAddress    string `envconfig:"RENTFLEET_MAIL_FROM" default:"bookings@rentfleet.example"`
	FromName       string `envconfig:"RENTFLEET_MAIL_FROM_NAME" default:"RentFleet"`
}

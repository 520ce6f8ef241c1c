package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Storage      StorageConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Probe        ProbeConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// StorageConfig holds the optional object storage backend values. An empty
// Addr means no backend is configured; storage operations then report
// Unavailable rather than failing generically.
type StorageConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin authentication parameters for the debug surface.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
	AdminPassword   string
	BcryptCost      int
}

// ProbeConfig configures the external status probe.
type ProbeConfig struct {
	TargetURL string
	TimeoutMs int
}

// NotificationConfig configures the outbound webhook call.
type NotificationConfig struct {
	WebhookURL string
	TimeoutMs  int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	storageDB, err := strconv.Atoi(getEnv("STORAGE_REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "railway-support-lab"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Storage: StorageConfig{
			Addr:      os.Getenv("STORAGE_REDIS_ADDR"),
			Password:  os.Getenv("STORAGE_REDIS_PASSWORD"),
			DB:        storageDB,
			KeyPrefix: getEnv("STORAGE_KEY_PREFIX", "blob"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
			AdminPassword:   getEnv("AUTH_ADMIN_PASSWORD", "admin"),
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Probe: ProbeConfig{
			TargetURL: getEnv("PROBE_TARGET_URL", "https://api.github.com/zen"),
			TimeoutMs: getEnvAsInt("PROBE_TIMEOUT_MS", 5000),
		},
		Notification: NotificationConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			TimeoutMs:  getEnvAsInt("NOTIFY_TIMEOUT_MS", 5000),
		},
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.Probe.TimeoutMs <= 0 {
		return nil, fmt.Errorf("PROBE_TIMEOUT_MS must be positive")
	}
	if cfg.Notification.TimeoutMs <= 0 {
		return nil, fmt.Errorf("NOTIFY_TIMEOUT_MS must be positive")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsDevelopment reports whether the service runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Configured reports whether an object storage backend was provided.
func (s StorageConfig) Configured() bool {
	return s.Addr != ""
}

// Timeout returns the probe timeout duration.
func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// Timeout returns the webhook call timeout duration.
func (n NotificationConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

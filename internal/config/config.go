package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard agent
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Broadcast BroadcastConfig
	Quota     QuotaConfig
	Poller    PollerConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Tracing   TracingConfig
}

// ServerConfig holds the local HTTP API configuration
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// BackendConfig holds the t3n28-football backend API configuration
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig holds Redis configuration for local key-value storage
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds database configuration for channel storage
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// TelegramConfig holds the Telegram Bot API endpoint configuration
type TelegramConfig struct {
	APIBase   string
	Timeout   time.Duration
	ParseMode string
}

// BroadcastConfig holds message adornment configuration
type BroadcastConfig struct {
	OwnerAffiliateLink string
	WatermarkText      string
}

// QuotaConfig holds quota classification thresholds
type QuotaConfig struct {
	WarnRatio float64
}

// PollerConfig holds background refresh configuration
type PollerConfig struct {
	Enabled               bool
	UsageInterval         time.Duration
	NotificationsInterval time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// MetricsConfig holds the metrics server configuration
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// TracingConfig holds Jaeger tracing configuration
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	JaegerEndpoint string
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.readTimeout", "30s")
	viper.SetDefault("server.writeTimeout", "30s")
	viper.SetDefault("server.shutdownTimeout", "10s")
	viper.SetDefault("server.rateLimitRPS", 20)
	viper.SetDefault("server.rateLimitBurst", 40)

	// Backend defaults
	viper.SetDefault("backend.baseURL", "https://t3n28-football-api.onrender.com")
	viper.SetDefault("backend.timeout", "30s")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "t3n28")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxConns", 10)
	viper.SetDefault("database.minConns", 2)

	// Telegram defaults
	viper.SetDefault("telegram.apiBase", "https://api.telegram.org")
	viper.SetDefault("telegram.timeout", "30s")
	viper.SetDefault("telegram.parseMode", "HTML")

	// Broadcast defaults
	viper.SetDefault("broadcast.ownerAffiliateLink", "https://t.me/t3n28football")
	viper.SetDefault("broadcast.watermarkText", "Powered by t3n28-football")

	// Quota defaults
	viper.SetDefault("quota.warnRatio", 0.8)

	// Poller defaults
	viper.SetDefault("poller.enabled", true)
	viper.SetDefault("poller.usageInterval", "60s")
	viper.SetDefault("poller.notificationsInterval", "120s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9091)

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.serviceName", "t3n28-dashd")
	viper.SetDefault("tracing.jaegerEndpoint", "http://localhost:14268/api/traces")
}

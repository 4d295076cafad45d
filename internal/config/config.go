package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Minio    MinioConfig    `mapstructure:"minio"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret  string `mapstructure:"secret"`
	JWKSURL string `mapstructure:"jwks_url"`
}

// RedisConfig contains the cache connection settings
type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	ProductTTL time.Duration `mapstructure:"product_ttl"`
}

// RabbitMQConfig contains the lifecycle event broker settings. Publishing is
// disabled when URL is empty.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// MinioConfig contains receipt archive settings. Archiving is disabled when
// Endpoint is empty.
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

type JobsConfig struct {
	DashboardRefresh time.Duration `mapstructure:"dashboard_refresh"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// envBindings maps config keys onto the environment variables the service
// has always been deployed with.
var envBindings = map[string]string{
	"server.port":            "PORT",
	"database.url":           "DATABASE_URL",
	"jwt.secret":             "JWT_SECRET",
	"jwt.jwks_url":           "JWKS_URL",
	"redis.addr":             "REDIS_ADDR",
	"redis.password":         "REDIS_PASSWORD",
	"redis.db":               "REDIS_DB",
	"redis.product_ttl":      "REDIS_PRODUCT_TTL",
	"rabbitmq.url":           "RABBITMQ_URL",
	"rabbitmq.exchange":      "RABBITMQ_EXCHANGE",
	"minio.endpoint":         "MINIO_ENDPOINT",
	"minio.access_key":       "MINIO_ACCESS_KEY",
	"minio.secret_key":       "MINIO_SECRET_KEY",
	"minio.use_ssl":          "MINIO_USE_SSL",
	"minio.bucket":           "MINIO_BUCKET",
	"jobs.dashboard_refresh": "DASHBOARD_REFRESH_INTERVAL",
	"log.level":              "LOG_LEVEL",
	"log.encoding":           "LOG_ENCODING",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.product_ttl", 10*time.Minute)
	v.SetDefault("rabbitmq.exchange", "restaurant_events")
	v.SetDefault("minio.bucket", "receipts")
	v.SetDefault("jobs.dashboard_refresh", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
}

// Load reads configuration from an optional file (TOML, YAML or JSON by
// extension) and the environment. Environment variables win over the file.
// A .env file in the working directory is loaded first if present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

func (c *RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

func (c *MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}

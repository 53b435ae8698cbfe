package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Email        EmailConfig        `mapstructure:"email"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Verification VerificationConfig `mapstructure:"verification"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	LogLevel     string             `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// MongoConfig holds MongoDB settings
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds token settings
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// StorageConfig holds blob storage settings
type StorageConfig struct {
	Provider     string   `mapstructure:"provider"`
	Bucket       string   `mapstructure:"bucket"`
	Region       string   `mapstructure:"region"`
	AccessKey    string   `mapstructure:"access_key"`
	SecretKey    string   `mapstructure:"secret_key"`
	Endpoint     string   `mapstructure:"endpoint"`
	BasePath     string   `mapstructure:"base_path"`
	BaseURL      string   `mapstructure:"base_url"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	MaxFileSize  int64    `mapstructure:"max_file_size"`
}

// EmailConfig holds SMTP settings
type EmailConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

// RateLimitConfig holds request throttling settings
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// VerificationConfig holds email verification settings
type VerificationConfig struct {
	CodeTTL time.Duration `mapstructure:"code_ttl"`
}

// WorkerConfig holds maintenance worker settings
type WorkerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Load reads configuration from config file and environment. Environment
// variables use the FILEFLOW_ prefix with underscores, e.g.
// FILEFLOW_MONGO_URI.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "fileflow")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.issuer", "fileflow")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.base_path", "./storage")
	v.SetDefault("storage.max_file_size", int64(512<<20))
	v.SetDefault("email.enabled", false)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 300)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("verification.code_ttl", 15*time.Minute)
	v.SetDefault("worker.interval", 10*time.Minute)
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("FILEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus environment carry a
		// dev setup.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret must be set")
	}

	return &cfg, nil
}

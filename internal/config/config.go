package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Reasoner   ReasonerConfig
	Pipeline   PipelineConfig
	Rasterizer RasterizerConfig
	Email      EmailConfig
	CORS       CORSConfig
	Queue      QueueConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ReasonerConfig holds vision reasoning service settings.
type ReasonerConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	MaxTokens   int    `mapstructure:"max_tokens"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// PipelineConfig holds extraction pipeline settings.
type PipelineConfig struct {
	MaxConcurrent int     `mapstructure:"max_concurrent"`
	RatePerSec    float64 `mapstructure:"rate_per_sec"`
	BestEffort    bool    `mapstructure:"best_effort"`
	CacheTTLSecs  int     `mapstructure:"cache_ttl_secs"`
}

// RasterizerConfig holds PDF rasterizer service settings.
type RasterizerConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	DPI         int    `mapstructure:"dpi"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// EmailConfig holds report delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds analysis queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the BAUCHECK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BAUCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "baucheck")
	v.SetDefault("db.password", "baucheck_secret")
	v.SetDefault("db.name", "baucheck_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.bucket", "baucheck-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 100)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Reasoner defaults
	v.SetDefault("reasoner.api_key", "")
	v.SetDefault("reasoner.model", "gpt-4o")
	v.SetDefault("reasoner.max_tokens", 4095)
	v.SetDefault("reasoner.timeout_secs", 120)

	// Pipeline defaults
	v.SetDefault("pipeline.max_concurrent", 10)
	v.SetDefault("pipeline.rate_per_sec", 5.0)
	v.SetDefault("pipeline.best_effort", false)
	v.SetDefault("pipeline.cache_ttl_secs", 3600)

	// Rasterizer defaults
	v.SetDefault("rasterizer.endpoint", "http://localhost:9090")
	v.SetDefault("rasterizer.dpi", 150)
	v.SetDefault("rasterizer.timeout_secs", 120)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@baucheck.de")
	v.SetDefault("email.from_name", "BauCheck")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 2)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "BAUCHECK_SERVER_PORT",
		"server.read_timeout":      "BAUCHECK_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "BAUCHECK_SERVER_WRITE_TIMEOUT",
		"server.environment":       "BAUCHECK_SERVER_ENVIRONMENT",
		"db.host":                  "BAUCHECK_DB_HOST",
		"db.port":                  "BAUCHECK_DB_PORT",
		"db.user":                  "BAUCHECK_DB_USER",
		"db.password":              "BAUCHECK_DB_PASSWORD",
		"db.name":                  "BAUCHECK_DB_NAME",
		"db.sslmode":               "BAUCHECK_DB_SSLMODE",
		"db.max_open":              "BAUCHECK_DB_MAX_OPEN",
		"db.max_idle":              "BAUCHECK_DB_MAX_IDLE",
		"s3.region":                "BAUCHECK_S3_REGION",
		"s3.bucket":                "BAUCHECK_S3_BUCKET",
		"s3.endpoint":              "BAUCHECK_S3_ENDPOINT",
		"s3.access_key":            "BAUCHECK_S3_ACCESS_KEY",
		"s3.secret_key":            "BAUCHECK_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "BAUCHECK_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "BAUCHECK_S3_PRESIGN_EXPIRY",
		"log.level":                "BAUCHECK_LOG_LEVEL",
		"log.format":               "BAUCHECK_LOG_FORMAT",
		"reasoner.api_key":         "BAUCHECK_REASONER_API_KEY",
		"reasoner.model":           "BAUCHECK_REASONER_MODEL",
		"reasoner.max_tokens":      "BAUCHECK_REASONER_MAX_TOKENS",
		"reasoner.timeout_secs":    "BAUCHECK_REASONER_TIMEOUT_SECS",
		"pipeline.max_concurrent":  "BAUCHECK_PIPELINE_MAX_CONCURRENT",
		"pipeline.rate_per_sec":    "BAUCHECK_PIPELINE_RATE_PER_SEC",
		"pipeline.best_effort":     "BAUCHECK_PIPELINE_BEST_EFFORT",
		"pipeline.cache_ttl_secs":  "BAUCHECK_PIPELINE_CACHE_TTL_SECS",
		"rasterizer.endpoint":      "BAUCHECK_RASTERIZER_ENDPOINT",
		"rasterizer.dpi":           "BAUCHECK_RASTERIZER_DPI",
		"rasterizer.timeout_secs":  "BAUCHECK_RASTERIZER_TIMEOUT_SECS",
		"email.provider":           "BAUCHECK_EMAIL_PROVIDER",
		"email.region":             "BAUCHECK_EMAIL_REGION",
		"email.from_address":       "BAUCHECK_EMAIL_FROM_ADDRESS",
		"email.from_name":          "BAUCHECK_EMAIL_FROM_NAME",
		"cors.allowed_origins":     "BAUCHECK_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs": "BAUCHECK_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "BAUCHECK_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "BAUCHECK_QUEUE_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BAUCHECK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BAUCHECK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Reasoner = ReasonerConfig{
		APIKey:      v.GetString("reasoner.api_key"),
		Model:       v.GetString("reasoner.model"),
		MaxTokens:   v.GetInt("reasoner.max_tokens"),
		TimeoutSecs: v.GetInt("reasoner.timeout_secs"),
	}
	cfg.Pipeline = PipelineConfig{
		MaxConcurrent: v.GetInt("pipeline.max_concurrent"),
		RatePerSec:    v.GetFloat64("pipeline.rate_per_sec"),
		BestEffort:    v.GetBool("pipeline.best_effort"),
		CacheTTLSecs:  v.GetInt("pipeline.cache_ttl_secs"),
	}
	cfg.Rasterizer = RasterizerConfig{
		Endpoint:    v.GetString("rasterizer.endpoint"),
		DPI:         v.GetInt("rasterizer.dpi"),
		TimeoutSecs: v.GetInt("rasterizer.timeout_secs"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	return cfg, nil
}

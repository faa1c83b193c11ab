package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Groq          GroqConfig
	RateLimit     RateLimitConfig
	Validation    ValidationConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	SiteBaseURL    string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// GroqConfig configures the chat-completion gateway.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// RateLimitConfig configures the fixed-window limiter on the generation
// endpoints. RedisAddr empty means the in-process store is used.
type RateLimitConfig struct {
	Limit         int
	WindowSeconds int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ValidationConfig selects the model-output validator implementation.
// Mode is "schema" (gojsonschema) or "native" (hand-rolled shape check).
type ValidationConfig struct {
	Mode string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8082")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://api.launcify.dev")
	v.SetDefault("SITE_BASE_URL", "https://launcify.dev")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://launcify.dev,https://www.launcify.dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("GROQ_API_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("GROQ_MODEL", "llama3-8b-8192")
	v.SetDefault("RATE_LIMIT", 6)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("OUTPUT_VALIDATOR", "schema")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // OTLP over HTTP, empty disables tracing
	v.SetDefault("O11Y_SERVICE_NAME", "launcify-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "launcify")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "launcify-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			SiteBaseURL:    strings.TrimRight(v.GetString("SITE_BASE_URL"), "/"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: 10,
			MinConns: 2,
		},
		Groq: GroqConfig{
			APIKey:  v.GetString("GROQ_API_KEY"),
			BaseURL: strings.TrimRight(v.GetString("GROQ_API_URL"), "/"),
			Model:   v.GetString("GROQ_MODEL"),
		},
		RateLimit: RateLimitConfig{
			Limit:         v.GetInt("RATE_LIMIT"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Validation: ValidationConfig{
			Mode: v.GetString("OUTPUT_VALIDATOR"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.Groq.BaseURL == "" {
		return fmt.Errorf("GROQ_API_URL is required")
	}
	if c.Groq.Model == "" {
		return fmt.Errorf("GROQ_MODEL is required")
	}

	// DATABASE_URL is optional: without it lead recording is skipped, but a
	// malformed value is refused early rather than on the first insert.
	if c.Database.URL != "" && !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must be a postgres:// connection URL")
	}

	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}

	if c.Validation.Mode != "schema" && c.Validation.Mode != "native" {
		return fmt.Errorf("OUTPUT_VALIDATOR must be \"schema\" or \"native\"")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.SiteBaseURL == "" {
		return fmt.Errorf("SITE_BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// LeadStoreConfigured reports whether a lead database is available.
func (c *Config) LeadStoreConfigured() bool {
	return c.Database.URL != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

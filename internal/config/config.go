package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the SQL dialect: "postgres" (pgx) or "sqlite" (modernc).
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains the admin API authentication settings. Only the
// HTTP server needs them; the server refuses to start when they are unset.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"omitempty,min=32"`
	AdminPasswordHash    string `mapstructure:"admin_password_hash"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Provider selects the generative text backend: "gemini" or "openai".
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	// ModelDefault is the model every task runs with. Left empty, tasks fail
	// with a configuration error rather than the process refusing to start.
	ModelDefault string `mapstructure:"model_default"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	// APIKey and BaseURL address an OpenAI-compatible Responses endpoint.
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	// StageTimeout bounds a single pipeline stage call; zero disables it.
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	MaxRetries   int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay    time.Duration `mapstructure:"base_delay"`
}

// QueueConfig contains task queue settings.
type QueueConfig struct {
	// Timezone defines the business day boundaries for task dates.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
	// Workers is the default number of concurrent drain loops for the CLI.
	Workers int `mapstructure:"workers" validate:"gte=1,lte=32"`
}

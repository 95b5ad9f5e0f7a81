package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Sources    SourcesConfig
	Fusion     FusionConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration.
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	RequestTimeout time.Duration // overall deadline for one chat turn
}

// SourcesConfig holds per-adapter enable flags, timeouts and limits.
type SourcesConfig struct {
	RelationalEnabled bool
	RelationalTimeout time.Duration
	DocumentsEnabled  bool
	DocumentsTimeout  time.Duration
	ListingsEnabled   bool
	ListingsTimeout   time.Duration
	ListingsBaseURL   string
	ListingsAPIKey    string
	ListingsRetryMax  int
	FetchLimit        int // per-adapter item cap
}

// FusionConfig holds budget and ranking weights for context fusion.
type FusionConfig struct {
	Budget           int
	BudgetUnit       string // "chars" or "items"
	HardCeiling      int    // serializer last-resort character cap
	WeightRelational float64
	WeightListings   float64
	WeightDocuments  float64
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "console"
}

// OpenAIConfig holds the OpenAI-compatible API configuration used for
// response generation and query embeddings.
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatMaxTokens       int
	EmbeddingModel      string
	EmbeddingDimensions int
	Timeout             time.Duration
	Enabled             bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "estate_assistant"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Sources: SourcesConfig{
			RelationalEnabled: getEnvAsBool("SOURCE_RELATIONAL_ENABLED", true),
			RelationalTimeout: getEnvAsDuration("SOURCE_RELATIONAL_TIMEOUT", 5*time.Second),
			DocumentsEnabled:  getEnvAsBool("SOURCE_DOCUMENTS_ENABLED", true),
			DocumentsTimeout:  getEnvAsDuration("SOURCE_DOCUMENTS_TIMEOUT", 5*time.Second),
			ListingsEnabled:   getEnvAsBool("SOURCE_LISTINGS_ENABLED", false),
			ListingsTimeout:   getEnvAsDuration("SOURCE_LISTINGS_TIMEOUT", 15*time.Second),
			ListingsBaseURL:   getEnv("LISTINGS_API_URL", ""),
			ListingsAPIKey:    getEnv("LISTINGS_API_KEY", ""),
			ListingsRetryMax:  getEnvAsInt("LISTINGS_RETRY_MAX", 3),
			FetchLimit:        getEnvAsInt("SOURCE_FETCH_LIMIT", 10),
		},
		Fusion: FusionConfig{
			Budget:           getEnvAsInt("FUSION_BUDGET", 6000),
			BudgetUnit:       getEnv("FUSION_BUDGET_UNIT", "chars"),
			HardCeiling:      getEnvAsInt("FUSION_HARD_CEILING", 12000),
			WeightRelational: getEnvAsFloat("FUSION_WEIGHT_RELATIONAL", 1.0),
			WeightListings:   getEnvAsFloat("FUSION_WEIGHT_LISTINGS", 0.9),
			WeightDocuments:  getEnvAsFloat("FUSION_WEIGHT_DOCUMENTS", 0.8),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.3),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			Timeout:             getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects invalid configuration at load time so that per-request
// code never has to deal with it.
func (c *Config) Validate() error {
	if c.Fusion.Budget <= 0 {
		return fmt.Errorf("FUSION_BUDGET must be positive, got %d", c.Fusion.Budget)
	}
	if c.Fusion.HardCeiling <= 0 {
		return fmt.Errorf("FUSION_HARD_CEILING must be positive, got %d", c.Fusion.HardCeiling)
	}
	switch c.Fusion.BudgetUnit {
	case "chars", "items":
	default:
		return fmt.Errorf("FUSION_BUDGET_UNIT must be \"chars\" or \"items\", got %q", c.Fusion.BudgetUnit)
	}
	for name, w := range map[string]float64{
		"FUSION_WEIGHT_RELATIONAL": c.Fusion.WeightRelational,
		"FUSION_WEIGHT_LISTINGS":   c.Fusion.WeightListings,
		"FUSION_WEIGHT_DOCUMENTS":  c.Fusion.WeightDocuments,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", name, w)
		}
	}
	for name, d := range map[string]time.Duration{
		"REQUEST_TIMEOUT":           c.Server.RequestTimeout,
		"SOURCE_RELATIONAL_TIMEOUT": c.Sources.RelationalTimeout,
		"SOURCE_DOCUMENTS_TIMEOUT":  c.Sources.DocumentsTimeout,
		"SOURCE_LISTINGS_TIMEOUT":   c.Sources.ListingsTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.Sources.FetchLimit <= 0 {
		return fmt.Errorf("SOURCE_FETCH_LIMIT must be positive, got %d", c.Sources.FetchLimit)
	}
	if c.Sources.ListingsRetryMax < 1 {
		return fmt.Errorf("LISTINGS_RETRY_MAX must be at least 1, got %d", c.Sources.ListingsRetryMax)
	}
	if c.Sources.ListingsEnabled && c.Sources.ListingsBaseURL == "" {
		return fmt.Errorf("LISTINGS_API_URL is required when SOURCE_LISTINGS_ENABLED is true")
	}
	return nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string.
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "1" || valueStr == "true" || valueStr == "yes"
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// accept plain seconds as well as Go duration strings
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

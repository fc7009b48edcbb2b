// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. Everything the
// pipeline needs is consolidated here and passed in at construction time.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Generation GenerationConfig `mapstructure:"generation"`
	Validators ValidatorsConfig `mapstructure:"validators"`
	Learning   LearningConfig   `mapstructure:"learning"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the result cache. Store selects the durable tier:
// "postgres", "redis", or "memory" (no durable tier).
type CacheConfig struct {
	Store             string  `mapstructure:"store"`
	TTL               int     `mapstructure:"ttl"`            // milliseconds
	PurgeInterval     int     `mapstructure:"purge_interval"` // milliseconds
	CostPerGeneration float64 `mapstructure:"cost_per_generation"`
}

// PipelineConfig holds the retry loop knobs.
type PipelineConfig struct {
	QualityThreshold float64 `mapstructure:"quality_threshold"`
	MaxAttempts      int     `mapstructure:"max_attempts"`
	MinUsableScore   float64 `mapstructure:"min_usable_score"` // floor for returning a best-effort result
}

type GenerationConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds

	// FallbackEndpoint backs the alternative-generator strategy. Empty
	// means the retry loop stops instead of switching generators.
	FallbackEndpoint string `mapstructure:"fallback_endpoint"`
	FallbackModel    string `mapstructure:"fallback_model"`
}

type ValidatorsConfig struct {
	Semantic  SemanticValidatorConfig `mapstructure:"semantic"`
	Technical TechnicalConfig         `mapstructure:"technical"`
	Spelling  SpellingConfig          `mapstructure:"spelling"`
}

type SemanticValidatorConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

type TechnicalConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	MinWidth  int  `mapstructure:"min_width"`
	MinHeight int  `mapstructure:"min_height"`
}

type SpellingConfig struct {
	Whitelist []string `mapstructure:"whitelist"` // domain terms the dictionary does not know
}

// LearningConfig tunes the feedback store. ConfidenceSaturation is the
// observation count at which pattern confidence reaches 1.0.
type LearningConfig struct {
	ConfidenceSaturation int  `mapstructure:"confidence_saturation"`
	Persist              bool `mapstructure:"persist"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

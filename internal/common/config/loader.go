// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"creative-pipeline/internal/common/errors"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SEMANTIC_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("Loaded .env from: %s\n", path)
				return
			}
		}
	}

	fmt.Printf(".env file not found in any location, using system environment variables\n")
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Validators.Semantic.APIKey == "" {
		if val := os.Getenv("SEMANTIC_API_KEY"); val != "" {
			cfg.Validators.Semantic.APIKey = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "creative-pipeline"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Cache.Store == "" {
		cfg.Cache.Store = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = int(24 * time.Hour / time.Millisecond)
	}
	if cfg.Cache.PurgeInterval == 0 {
		cfg.Cache.PurgeInterval = int(10 * time.Minute / time.Millisecond)
	}
	if cfg.Cache.CostPerGeneration == 0 {
		cfg.Cache.CostPerGeneration = 0.05
	}

	if cfg.Pipeline.QualityThreshold == 0 {
		cfg.Pipeline.QualityThreshold = 0.85
	}
	if cfg.Pipeline.MaxAttempts == 0 {
		cfg.Pipeline.MaxAttempts = 3
	}
	if cfg.Pipeline.MinUsableScore == 0 {
		cfg.Pipeline.MinUsableScore = 0.1
	}

	if cfg.Generation.DefaultModel == "" {
		cfg.Generation.DefaultModel = "ideogram-v2"
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 60000
	}

	if cfg.Validators.Semantic.Timeout == 0 {
		cfg.Validators.Semantic.Timeout = 15000
	}
	if cfg.Validators.Technical.MinWidth == 0 {
		cfg.Validators.Technical.MinWidth = 800
	}
	if cfg.Validators.Technical.MinHeight == 0 {
		cfg.Validators.Technical.MinHeight = 600
	}

	if cfg.Learning.ConfidenceSaturation == 0 {
		cfg.Learning.ConfidenceSaturation = 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Pipeline.QualityThreshold < 0 || cfg.Pipeline.QualityThreshold > 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("pipeline.quality_threshold must be within [0,1], got %f", cfg.Pipeline.QualityThreshold))
	}
	if cfg.Pipeline.MaxAttempts < 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("pipeline.max_attempts must be at least 1, got %d", cfg.Pipeline.MaxAttempts))
	}
	switch cfg.Cache.Store {
	case "memory", "postgres", "redis":
	default:
		return errors.NewConfigInvalidError(fmt.Sprintf("cache.store must be one of memory, postgres, redis; got %q", cfg.Cache.Store))
	}
	if cfg.Cache.Store == "postgres" && cfg.Database.Postgres.Host == "" {
		return errors.NewConfigInvalidError("cache.store is postgres but database.postgres.host is empty")
	}
	if cfg.Learning.ConfidenceSaturation < 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("learning.confidence_saturation must be positive, got %d", cfg.Learning.ConfidenceSaturation))
	}
	return nil
}

// GetDuration converts a millisecond config value to a time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

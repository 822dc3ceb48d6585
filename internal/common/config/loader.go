// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like EXTRACTION_API_KEY
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

	// Environment overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from the working directory and the project root so
// tests in nested packages pick it up too.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
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

// expandEnvVars resolves ${VAR} placeholders in string values.
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

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "proposal-engine"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 5
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 60000
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
	if cfg.Database.Redis.CacheTTL == 0 {
		cfg.Database.Redis.CacheTTL = 300
	}

	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 45000
	}
	if cfg.Extraction.MaxRetries == 0 {
		cfg.Extraction.MaxRetries = 3
	}
	if cfg.Extraction.BaseDelay == 0 {
		cfg.Extraction.BaseDelay = 1000
	}

	if cfg.Pricing.LogisticsRate == 0 {
		cfg.Pricing.LogisticsRate = 0.05
	}
	if cfg.Pricing.ContingencyRate == 0 {
		cfg.Pricing.ContingencyRate = 0.03
	}
	if cfg.Pricing.TaxRate == 0 {
		cfg.Pricing.TaxRate = 0.10
	}
	if cfg.Pricing.PerUnitTestFee == 0 {
		cfg.Pricing.PerUnitTestFee = 50
	}
	if cfg.Pricing.PerLotTestFee == 0 {
		cfg.Pricing.PerLotTestFee = 500
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "USD"
	}

	if cfg.Risk.BaseScore == 0 {
		cfg.Risk.BaseScore = 20
	}
	if cfg.Risk.MTOPenalty == 0 {
		cfg.Risk.MTOPenalty = 30
	}
	if cfg.Risk.UrgencyPenalty == 0 {
		cfg.Risk.UrgencyPenalty = 15
	}
	if cfg.Risk.UrgencyDays == 0 {
		cfg.Risk.UrgencyDays = 5
	}
	if cfg.Risk.ConfidencePenalty == 0 {
		cfg.Risk.ConfidencePenalty = 15
	}
	if cfg.Risk.ConfidenceThreshold == 0 {
		cfg.Risk.ConfidenceThreshold = 80
	}

	if len(cfg.Compliance.Checklist) == 0 {
		cfg.Compliance.Checklist = []ChecklistEntry{
			{Standard: "ISO 9001 quality management system", Terms: []string{"iso 9001", "iso9001", "quality management"}},
			{Standard: "Type test certificates", Terms: []string{"type test", "type-test"}},
			{Standard: "Warranty terms", Terms: []string{"warranty", "guarantee"}},
		}
	}
	if cfg.Compliance.TermsEvaluated == 0 {
		cfg.Compliance.TermsEvaluated = 12
	}

	if cfg.Strategy.TechWeight == 0 {
		cfg.Strategy.TechWeight = 0.35
	}
	if cfg.Strategy.PriceWeight == 0 {
		cfg.Strategy.PriceWeight = 0.45
	}
	if cfg.Strategy.RiskWeight == 0 {
		cfg.Strategy.RiskWeight = 0.10
	}
	if cfg.Strategy.ComplianceWeight == 0 {
		cfg.Strategy.ComplianceWeight = 0.10
	}
	if cfg.Strategy.VarianceMin == 0 && cfg.Strategy.VarianceMax == 0 {
		cfg.Strategy.VarianceMin = -0.05
		cfg.Strategy.VarianceMax = 0.15
	}
	if cfg.Strategy.BandSpread == 0 {
		cfg.Strategy.BandSpread = 0.15
	}

	if cfg.Archive.Index == "" {
		cfg.Archive.Index = "proposals"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Extraction.BaseURL == "" {
		return fmt.Errorf("extraction.base_url is required")
	}
	if cfg.Extraction.MaxRetries < 2 {
		return fmt.Errorf("extraction.max_retries must be at least 2, got %d", cfg.Extraction.MaxRetries)
	}
	if cfg.Pricing.LogisticsRate < 0 || cfg.Pricing.ContingencyRate < 0 || cfg.Pricing.TaxRate < 0 {
		return fmt.Errorf("pricing rates must be non-negative")
	}
	if cfg.Strategy.VarianceMin > cfg.Strategy.VarianceMax {
		return fmt.Errorf("strategy.variance_min must not exceed strategy.variance_max")
	}
	return nil
}

// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Camunda       CamundaConfig      `mapstructure:"camunda"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Extraction    ExtractionConfig   `mapstructure:"extraction"`
	Pricing       PricingConfig      `mapstructure:"pricing"`
	Risk          RiskConfig         `mapstructure:"risk"`
	Compliance    ComplianceConfig   `mapstructure:"compliance"`
	Strategy      StrategyConfig     `mapstructure:"strategy"`
	Archive       ArchiveConfig      `mapstructure:"archive"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// CamundaConfig is optional; when BrokerAddress is empty the Zeebe worker is
// not registered and the engine serves HTTP only.
type CamundaConfig struct {
	BrokerAddress string `mapstructure:"broker_address"`
	MaxJobsActive int    `mapstructure:"max_jobs_active"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
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
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// --- Pipeline Configuration Sections ---

// ExtractionConfig drives the gateway to the generative extraction service.
type ExtractionConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"`     // milliseconds, total budget
	MaxRetries int    `mapstructure:"max_retries"` // transient failures only
	BaseDelay  int    `mapstructure:"base_delay"`  // milliseconds
}

func (e ExtractionConfig) TimeoutDuration() time.Duration {
	return time.Duration(e.Timeout) * time.Millisecond
}

func (e ExtractionConfig) BaseDelayDuration() time.Duration {
	return time.Duration(e.BaseDelay) * time.Millisecond
}

// PricingConfig holds the surcharge rates and per-test fees. Currency affects
// display only, never computation.
type PricingConfig struct {
	LogisticsRate   float64 `mapstructure:"logistics_rate"`
	ContingencyRate float64 `mapstructure:"contingency_rate"`
	TaxRate         float64 `mapstructure:"tax_rate"`
	PerUnitTestFee  float64 `mapstructure:"per_unit_test_fee"`
	PerLotTestFee   float64 `mapstructure:"per_lot_test_fee"`
	Currency        string  `mapstructure:"currency"`
}

type RiskConfig struct {
	BaseScore           float64 `mapstructure:"base_score"`
	MTOPenalty          float64 `mapstructure:"mto_penalty"`
	UrgencyPenalty      float64 `mapstructure:"urgency_penalty"`
	UrgencyDays         int     `mapstructure:"urgency_days"`
	ConfidencePenalty   float64 `mapstructure:"confidence_penalty"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

type ComplianceConfig struct {
	// Checklist maps a standard's display name to the terms that satisfy it
	// when any of them appears in the request text.
	Checklist      []ChecklistEntry `mapstructure:"checklist"`
	TermsEvaluated int              `mapstructure:"terms_evaluated"`
}

type ChecklistEntry struct {
	Standard string   `mapstructure:"standard"`
	Terms    []string `mapstructure:"terms"`
}

type StrategyConfig struct {
	TechWeight       float64 `mapstructure:"tech_weight"`
	PriceWeight      float64 `mapstructure:"price_weight"`
	RiskWeight       float64 `mapstructure:"risk_weight"`
	ComplianceWeight float64 `mapstructure:"compliance_weight"`
	VarianceMin      float64 `mapstructure:"variance_min"`
	VarianceMax      float64 `mapstructure:"variance_max"`
	BandSpread       float64 `mapstructure:"band_spread"`
}

type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

// NotificationConfig holds settings for post-run notifications.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Jaeger string `mapstructure:"jaeger"`
}

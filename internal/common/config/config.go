package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Generation    GenerationConfig        `mapstructure:"generation"`
	AI            AIConfig                `mapstructure:"ai"`
	Scoring       ScoringConfig           `mapstructure:"scoring"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Registry      RegistryConfig          `mapstructure:"registry"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
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

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	SSLEnabled   bool     `mapstructure:"ssl_enabled"`
	ContactIndex string   `mapstructure:"contact_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Generation Pipeline Config ---

// GenerationConfig holds defaults for one generation batch. Request options
// override these per call.
type GenerationConfig struct {
	MaxQueries          int     `mapstructure:"max_queries"`
	DiversityThreshold  float64 `mapstructure:"diversity_threshold"`
	MinRelevanceScore   float64 `mapstructure:"min_relevance_score"`
	ExpansionCap        int     `mapstructure:"expansion_cap"`         // per-dimension cross-product cap
	ConfidenceAlpha     float64 `mapstructure:"confidence_alpha"`      // EMA weight for template averageConfidence
	TemplateCacheTTLSec int     `mapstructure:"template_cache_ttl"`    // seconds
	CacheEnabled        bool    `mapstructure:"cache_enabled"`
}

// AIConfig holds settings for the query enhancement API.
type AIConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TimeoutMs   int     `mapstructure:"timeout"` // milliseconds
}

// ScoringConfig holds the factor weights for query and contact scoring.
// Query weights and contact confidence weights each sum to 1.
type ScoringConfig struct {
	Query   QueryWeights   `mapstructure:"query"`
	Contact ContactWeights `mapstructure:"contact"`
}

type QueryWeights struct {
	TemplateConfidence float64 `mapstructure:"template_confidence"`
	CriteriaCoverage   float64 `mapstructure:"criteria_coverage"`
	Length             float64 `mapstructure:"length"`
}

type ContactWeights struct {
	Name   float64 `mapstructure:"name"`
	Email  float64 `mapstructure:"email"`
	Title  float64 `mapstructure:"title"`
	Bio    float64 `mapstructure:"bio"`
	Social float64 `mapstructure:"social"`
}

// NotificationConfig holds settings for batch-complete notifications.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
		ToNumber string `mapstructure:"to_number"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// RegistryConfig points at the activity registry file.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

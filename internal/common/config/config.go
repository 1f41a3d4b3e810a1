// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Intents   IntentsConfig   `mapstructure:"intents"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	PerfStore PerfStoreConfig `mapstructure:"perf_store"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
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

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Pipeline component configuration ---

// SessionConfig holds ContextStore settings.
type SessionConfig struct {
	TTLSeconds           int `mapstructure:"ttl_seconds"`            // inactivity window
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"` // background reaper
}

// IntentsConfig locates the intent registry.
type IntentsConfig struct {
	RegistryPath string `mapstructure:"registry_path"` // optional JSON override
}

// RetrievalConfig holds RetrievalFusionEngine settings.
type RetrievalConfig struct {
	TopK                 int    `mapstructure:"top_k"`
	SourceTimeoutSeconds int    `mapstructure:"source_timeout_seconds"`
	SpeciesIndex         string `mapstructure:"species_index"` // Elasticsearch index
	KnowledgeBasePath    string `mapstructure:"knowledge_base_path"`
}

// PerfStoreConfig holds TableLookupEngine settings.
type PerfStoreConfig struct {
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	Table           string `mapstructure:"table"`
}

// SynthesisConfig holds completion-service settings. An empty APIKey
// selects the rule-based fallback synthesizer at startup.
type SynthesisConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// PipelineConfig holds resolver-wide settings.
type PipelineConfig struct {
	QuestionTimeoutSeconds int `mapstructure:"question_timeout_seconds"`
	MaxClarifications      int `mapstructure:"max_clarifications"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

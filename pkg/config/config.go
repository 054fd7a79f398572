package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for genbi-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Target datasource (the database questions are answered against)
	Datasource DatasourceConfig `yaml:"datasource"`

	// LLM collaborator configuration
	LLM LLMConfig `yaml:"llm"`

	// Orchestrator behavior
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// Cache sizing and expiry
	Cache CacheConfig `yaml:"cache"`

	// CatalogPath is where the catalog snapshot is persisted.
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH" env-default:"schema_catalog.json"`
}

// DatasourceConfig holds connection settings for the target database.
type DatasourceConfig struct {
	// Driver selects the adapter: "postgres" or "mssql".
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"postgres"`
	Schema   string `yaml:"schema" env:"DB_SCHEMA" env-default:"public"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	// MaxConns is the maximum number of pooled connections.
	MaxConns int32 `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
}

// LLMConfig holds settings for the synthesis collaborator.
type LLMConfig struct {
	// Provider selects the client: "openai" (any OpenAI-compatible
	// endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	// TimeoutSeconds bounds every synthesis, repair, and analysis call.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`
	// MaxTokens caps completion length for SQL generation.
	MaxTokens int `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1000"`
}

// OrchestratorConfig holds workflow behavior settings.
type OrchestratorConfig struct {
	// IncludeAnalysis enables the post-execution analysis step.
	IncludeAnalysis bool `yaml:"include_analysis" env:"INCLUDE_ANALYSIS" env-default:"true"`
	// CacheSchemaContext reuses the resolved schema context per session.
	CacheSchemaContext bool `yaml:"cache_schema_context" env:"CACHE_SCHEMA_CONTEXT" env-default:"true"`
	// QueryTimeoutSeconds bounds each execution attempt.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" env:"QUERY_TIMEOUT_SECONDS" env-default:"30"`
	// RowLimit caps rows returned from any generated query.
	RowLimit int `yaml:"row_limit" env:"ROW_LIMIT" env-default:"1000"`
	// RelatedTableDepth is the relationship-hop bound for context expansion.
	RelatedTableDepth int `yaml:"related_table_depth" env:"RELATED_TABLE_DEPTH" env-default:"1"`
}

// CacheConfig holds sizing for the result and prompt caches.
type CacheConfig struct {
	ResultTTLSeconds int `yaml:"result_ttl_seconds" env:"RESULT_CACHE_TTL_SECONDS" env-default:"3600"`
	ResultCapacity   int `yaml:"result_capacity" env:"RESULT_CACHE_CAPACITY" env-default:"1000"`
	PromptTTLSeconds int `yaml:"prompt_ttl_seconds" env:"PROMPT_CACHE_TTL_SECONDS" env-default:"3600"`
	PromptCapacity   int `yaml:"prompt_capacity" env:"PROMPT_CACHE_CAPACITY" env-default:"1000"`
}

// QueryTimeout returns the execution timeout as a duration.
func (c *OrchestratorConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// Timeout returns the LLM call timeout as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResultTTL returns the result cache TTL as a duration.
func (c *CacheConfig) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLSeconds) * time.Second
}

// PromptTTL returns the prompt cache TTL as a duration.
func (c *CacheConfig) PromptTTL() time.Duration {
	return time.Duration(c.PromptTTLSeconds) * time.Second
}

// Load reads configuration from config.yaml (if present) and the
// environment. The version string is stamped into the returned config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Datasource.Driver {
	case "postgres", "mssql":
	default:
		return fmt.Errorf("unsupported datasource driver %q", c.Datasource.Driver)
	}

	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported LLM provider %q", c.LLM.Provider)
	}

	if c.Cache.ResultCapacity <= 0 || c.Cache.PromptCapacity <= 0 {
		return fmt.Errorf("cache capacities must be positive")
	}

	return nil
}

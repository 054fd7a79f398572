package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/config"
)

// Dialect maps a datasource driver to the SQL dialect named in
// prompts.
func Dialect(driver string) string {
	if driver == "mssql" {
		return "SQL Server"
	}
	return "PostgreSQL"
}

// NewFromConfig builds the configured provider client wrapped in
// transient-failure retries and a circuit breaker.
func NewFromConfig(cfg *config.LLMConfig, dialect string, logger *zap.Logger) (Synthesizer, error) {
	var (
		inner Synthesizer
		err   error
	)

	switch cfg.Provider {
	case "openai":
		inner, err = NewOpenAIClient(&OpenAIConfig{
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			APIKey:    cfg.APIKey,
			Dialect:   dialect,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout(),
		}, logger)
	case "anthropic":
		inner, err = NewAnthropicClient(&AnthropicConfig{
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			APIKey:    cfg.APIKey,
			Dialect:   dialect,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout(),
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	wrapped := WithRetry(inner, nil)
	return WithCircuitBreaker(wrapped, NewCircuitBreaker(DefaultCircuitBreakerConfig())), nil
}

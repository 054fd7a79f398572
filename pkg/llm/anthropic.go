package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/logging"
	"github.com/genbi-ai/genbi-engine/pkg/prompts"
)

// AnthropicClient implements Synthesizer on the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	dialect   string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// AnthropicConfig configures an Anthropic client.
type AnthropicConfig struct {
	Endpoint  string // optional override for proxies
	Model     string
	APIKey    string
	Dialect   string
	MaxTokens int
	Timeout   time.Duration
}

// NewAnthropicClient creates an Anthropic messages client.
func NewAnthropicClient(cfg *AnthropicConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		dialect:   cfg.Dialect,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
		logger:    logger.Named("llm.anthropic"),
	}, nil
}

func (c *AnthropicClient) complete(ctx context.Context, userMessage string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    prompts.SystemMessage(c.dialect),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(userMessage),
		},
	})
	if err != nil {
		c.logger.Warn("completion failed",
			zap.String("model", c.model),
			zap.String("error", logging.SanitizeError(err)))
		return "", ClassifyError(err)
	}

	text := resp.GetFirstContentText()
	if strings.TrimSpace(text) == "" {
		return "", NewError(ErrorTypeEmpty, "provider returned no content", true, nil)
	}

	c.logger.Debug("completion ok",
		zap.String("model", c.model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Synthesize implements Synthesizer.
func (c *AnthropicClient) Synthesize(ctx context.Context, req SynthesisRequest) (string, error) {
	return c.complete(ctx, prompts.Synthesis(req.Question, req.Context, req.CurrentDate, c.dialect, req.Tier))
}

// Repair implements Synthesizer.
func (c *AnthropicClient) Repair(ctx context.Context, req RepairRequest) (string, error) {
	return c.complete(ctx, prompts.Repair(req.Question, req.Context, req.FailedSQL, req.ErrorMessage, c.dialect))
}

// Analyze implements Synthesizer.
func (c *AnthropicClient) Analyze(ctx context.Context, question string, rows []map[string]any) (string, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("marshal rows for analysis: %w", err)
	}
	return c.complete(ctx, prompts.Analysis(question, string(data)))
}

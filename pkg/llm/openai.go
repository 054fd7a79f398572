package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/logging"
	"github.com/genbi-ai/genbi-engine/pkg/prompts"
)

// OpenAIClient implements Synthesizer on any OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	dialect   string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// OpenAIConfig configures an OpenAI-compatible client.
type OpenAIConfig struct {
	Endpoint  string // optional; empty uses the public API
	Model     string
	APIKey    string
	Dialect   string // "PostgreSQL" or "SQL Server"
	MaxTokens int
	Timeout   time.Duration
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		dialect:   cfg.Dialect,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger.Named("llm.openai"),
	}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, userMessage string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.SystemMessage(c.dialect)},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		c.logger.Warn("completion failed",
			zap.String("model", c.model),
			zap.String("error", logging.SanitizeError(err)))
		return "", ClassifyError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", NewError(ErrorTypeEmpty, "provider returned no content", true, nil)
	}

	c.logger.Debug("completion ok",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Synthesize implements Synthesizer.
func (c *OpenAIClient) Synthesize(ctx context.Context, req SynthesisRequest) (string, error) {
	return c.complete(ctx, prompts.Synthesis(req.Question, req.Context, req.CurrentDate, c.dialect, req.Tier))
}

// Repair implements Synthesizer.
func (c *OpenAIClient) Repair(ctx context.Context, req RepairRequest) (string, error) {
	return c.complete(ctx, prompts.Repair(req.Question, req.Context, req.FailedSQL, req.ErrorMessage, c.dialect))
}

// Analyze implements Synthesizer.
func (c *OpenAIClient) Analyze(ctx context.Context, question string, rows []map[string]any) (string, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("marshal rows for analysis: %w", err)
	}
	return c.complete(ctx, prompts.Analysis(question, string(data)))
}

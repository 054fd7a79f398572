package llm

import (
	"context"

	"github.com/genbi-ai/genbi-engine/pkg/retry"
)

// retrySynthesizer wraps a Synthesizer with bounded exponential
// backoff. Only transient provider failures (rate limits, 5xx,
// connection errors) are retried; auth and model errors fail
// immediately.
type retrySynthesizer struct {
	inner Synthesizer
	cfg   *retry.Config
}

// WithRetry adds transient-failure retries around a Synthesizer. A nil
// cfg uses retry.DefaultConfig.
func WithRetry(inner Synthesizer, cfg *retry.Config) Synthesizer {
	if cfg == nil {
		cfg = retry.DefaultConfig()
	}
	return &retrySynthesizer{inner: inner, cfg: cfg}
}

func (r *retrySynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (string, error) {
	return retry.DoIfRetryable(ctx, r.cfg, func() (string, error) {
		return r.inner.Synthesize(ctx, req)
	})
}

func (r *retrySynthesizer) Repair(ctx context.Context, req RepairRequest) (string, error) {
	return retry.DoIfRetryable(ctx, r.cfg, func() (string, error) {
		return r.inner.Repair(ctx, req)
	})
}

func (r *retrySynthesizer) Analyze(ctx context.Context, question string, rows []map[string]any) (string, error) {
	return retry.DoIfRetryable(ctx, r.cfg, func() (string, error) {
		return r.inner.Analyze(ctx, question, rows)
	})
}

package llm

import "context"

// breakerSynthesizer wraps a Synthesizer with a circuit breaker so a
// downed provider fails fast instead of stacking timeouts.
type breakerSynthesizer struct {
	inner   Synthesizer
	breaker *CircuitBreaker
}

// WithCircuitBreaker guards a synthesizer with the given breaker.
func WithCircuitBreaker(inner Synthesizer, breaker *CircuitBreaker) Synthesizer {
	return &breakerSynthesizer{inner: inner, breaker: breaker}
}

func (b *breakerSynthesizer) call(fn func() (string, error)) (string, error) {
	if ok, err := b.breaker.Allow(); !ok {
		return "", NewError(ErrorTypeServer, err.Error(), true, err)
	}
	out, err := fn()
	if err != nil {
		b.breaker.RecordFailure()
		return "", err
	}
	b.breaker.RecordSuccess()
	return out, nil
}

func (b *breakerSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (string, error) {
	return b.call(func() (string, error) { return b.inner.Synthesize(ctx, req) })
}

func (b *breakerSynthesizer) Repair(ctx context.Context, req RepairRequest) (string, error) {
	return b.call(func() (string, error) { return b.inner.Repair(ctx, req) })
}

func (b *breakerSynthesizer) Analyze(ctx context.Context, question string, rows []map[string]any) (string, error) {
	return b.call(func() (string, error) { return b.inner.Analyze(ctx, question, rows) })
}

package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 3, ResetAfter: time.Minute})

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		ok, _ := cb.Allow()
		assert.True(t, ok, "should stay closed below threshold")
	}

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	ok, err := cb.Allow()
	assert.False(t, ok)
	assert.ErrorContains(t, err, "circuit breaker open")
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 1, ResetAfter: 10 * time.Millisecond})
	cb.RecordFailure()
	require.Equal(t, CircuitOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	ok, err := cb.Allow()
	assert.True(t, ok, err)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// A second caller is rejected while the probe is in flight.
	ok, err = cb.Allow()
	assert.False(t, ok)
	assert.ErrorContains(t, err, "half-open")

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 5, ResetAfter: 10 * time.Millisecond})
	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	time.Sleep(20 * time.Millisecond)

	ok, _ := cb.Allow()
	require.True(t, ok)
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestWithCircuitBreaker_FailsFastWhenOpen(t *testing.T) {
	mock := NewMockSynthesizer()
	mock.SynthesizeFunc = func(ctx context.Context, req SynthesisRequest) (string, error) {
		return "", errors.New("boom")
	}

	s := WithCircuitBreaker(mock, NewCircuitBreaker(CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Minute}))
	ctx := context.Background()

	_, err := s.Synthesize(ctx, SynthesisRequest{Question: "q"})
	require.Error(t, err)
	_, err = s.Synthesize(ctx, SynthesisRequest{Question: "q"})
	require.Error(t, err)

	// Circuit is now open: the provider is no longer called.
	_, err = s.Synthesize(ctx, SynthesisRequest{Question: "q"})
	require.Error(t, err)
	assert.Equal(t, 2, mock.SynthesizeCalls)
}

func TestWithCircuitBreaker_SuccessResets(t *testing.T) {
	mock := NewMockSynthesizer()
	s := WithCircuitBreaker(mock, NewCircuitBreaker(DefaultCircuitBreakerConfig()))

	out, err := s.Synthesize(context.Background(), SynthesisRequest{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)
}

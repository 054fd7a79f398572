package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genbi-ai/genbi-engine/pkg/retry"
)

func fastRetryConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetrySynthesizer_TransientFailureRecovers(t *testing.T) {
	mock := NewMockSynthesizer()
	mock.SynthesizeFunc = func(ctx context.Context, req SynthesisRequest) (string, error) {
		if mock.SynthesizeCalls < 2 {
			return "", NewError(ErrorTypeRateLimit, "rate limited", true, errors.New("HTTP 429"))
		}
		return "SELECT 1", nil
	}

	s := WithRetry(mock, fastRetryConfig())
	sql, err := s.Synthesize(context.Background(), SynthesisRequest{Question: "how many users"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", sql)
	assert.Equal(t, 2, mock.SynthesizeCalls)
}

func TestRetrySynthesizer_AuthFailureIsNotRetried(t *testing.T) {
	mock := NewMockSynthesizer()
	mock.SynthesizeFunc = func(ctx context.Context, req SynthesisRequest) (string, error) {
		return "", NewError(ErrorTypeAuth, "authentication failed", false, errors.New("HTTP 401"))
	}

	s := WithRetry(mock, fastRetryConfig())
	_, err := s.Synthesize(context.Background(), SynthesisRequest{Question: "how many users"})
	require.Error(t, err)
	assert.Equal(t, 1, mock.SynthesizeCalls)

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorTypeAuth, llmErr.Type)
}

func TestRetrySynthesizer_RepairRetriesTransientFailures(t *testing.T) {
	mock := NewMockSynthesizer()
	mock.RepairFunc = func(ctx context.Context, req RepairRequest) (string, error) {
		if mock.RepairCalls < 3 {
			return "", NewError(ErrorTypeServer, "provider error", true, errors.New("HTTP 503"))
		}
		return "SELECT id FROM users", nil
	}

	s := WithRetry(mock, fastRetryConfig())
	sql, err := s.Repair(context.Background(), RepairRequest{FailedSQL: "SELECT uid FROM users"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users", sql)
	assert.Equal(t, 3, mock.RepairCalls)
}

func TestRetrySynthesizer_ExhaustionSurfacesLastError(t *testing.T) {
	mock := NewMockSynthesizer()
	mock.AnalyzeFunc = func(ctx context.Context, question string, rows []map[string]any) (string, error) {
		return "", NewError(ErrorTypeServer, "provider error", true, errors.New("HTTP 503"))
	}

	s := WithRetry(mock, fastRetryConfig())
	_, err := s.Analyze(context.Background(), "how many users", []map[string]any{{"n": 1}})
	require.Error(t, err)
	assert.Equal(t, 3, mock.AnalyzeCalls, "initial attempt plus two retries")
}

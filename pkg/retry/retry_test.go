package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genbi-ai/genbi-engine/pkg/llm"
	"github.com/genbi-ai/genbi-engine/pkg/retry"
)

func fastConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_MaxRetriesExhausted(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		return errors.New("still broken")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial attempt plus MaxRetries")
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(), func() error {
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := retry.DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("timed out")
		}
		return "SELECT 1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", got)
}

func TestDoIfRetryable_PermanentErrorReturnsImmediately(t *testing.T) {
	calls := 0
	_, err := retry.DoIfRetryable(context.Background(), fastConfig(), func() (string, error) {
		calls++
		return "", llm.NewError(llm.ErrorTypeAuth, "authentication failed", false, errors.New("HTTP 401"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent failures never retry")
}

func TestDoIfRetryable_TransientErrorRetries(t *testing.T) {
	calls := 0
	got, err := retry.DoIfRetryable(context.Background(), fastConfig(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", llm.NewError(llm.ErrorTypeServer, "server error", true, errors.New("HTTP 503"))
		}
		return "SELECT 1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "SELECT 1", got)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"retryable llm error", llm.NewError(llm.ErrorTypeRateLimit, "rate limited", true, nil), true},
		{"non-retryable llm error", llm.NewError(llm.ErrorTypeModel, "model not found", false, nil), false},
		{"connection refused text", errors.New("dial tcp: connection refused"), true},
		{"http 503 text", errors.New("unexpected status 503"), true},
		{"plain failure", errors.New("column does not exist"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, retry.IsRetryable(tt.err))
		})
	}
}

func TestIsRetryable_WrappedLLMError(t *testing.T) {
	base := llm.NewError(llm.ErrorTypeServer, "server error", true, errors.New("HTTP 503"))
	wrapped := fmt.Errorf("synthesize: %w", base)
	assert.True(t, retry.IsRetryable(wrapped))
}

package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/config"
)

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.DatasourceConfig{Driver: "oracle"}
	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unknown datasource driver "oracle"`)
}

func TestRegisterAndOpen(t *testing.T) {
	called := false
	Register("fake", func(ctx context.Context, cfg *config.DatasourceConfig, logger *zap.Logger) (Conn, error) {
		called = true
		return nil, nil
	})

	cfg := &config.DatasourceConfig{Driver: "fake"}
	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, Drivers(), "fake")
}

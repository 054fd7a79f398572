package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/adapters/datasource"
	"github.com/genbi-ai/genbi-engine/pkg/config"
)

func init() {
	datasource.Register("postgres", func(ctx context.Context, cfg *config.DatasourceConfig, logger *zap.Logger) (datasource.Conn, error) {
		return New(ctx, cfg, logger)
	})
}

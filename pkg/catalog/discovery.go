package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/adapters/datasource"
	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// Discover builds a fresh catalog from a schema-metadata feed: list
// tables, list columns with semantic enrichment, then relationship
// inference in two passes (declared constraints, naming heuristics).
func Discover(ctx context.Context, feed datasource.SchemaFeed, name string, logger *zap.Logger) (*models.Catalog, error) {
	tables, err := feed.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	cat := models.NewCatalog(name)
	for _, ti := range tables {
		cols, err := feed.ListColumns(ctx, ti.Schema, ti.Name)
		if err != nil {
			return nil, fmt.Errorf("list columns for %s.%s: %w", ti.Schema, ti.Name, err)
		}

		tbl := &models.Table{
			Name:         ti.Name,
			Schema:       ti.Schema,
			Database:     ti.Database,
			BusinessName: models.DeriveBusinessName(ti.Name),
			TableType:    ti.TableType,
			Comment:      ti.Comment,
		}
		for _, ci := range cols {
			tbl.Columns = append(tbl.Columns, models.Column{
				Name:         ci.Name,
				DataType:     ci.DataType,
				BusinessName: models.DeriveColumnBusinessName(ci.Name),
				IsNullable:   ci.IsNullable,
				IsPrimaryKey: ci.IsPrimaryKey,
				DefaultValue: ci.DefaultValue,
				MaxLength:    ci.MaxLength,
				Comment:      ci.Comment,
				SemanticType: models.InferSemanticType(ci.Name),
			})
		}
		cat.AddTable(tbl)
	}

	// Declared constraints first; absence of support never fails
	// discovery, inference still runs.
	if feed.SupportsForeignKeys() {
		fks, err := feed.ListForeignKeys(ctx)
		if err != nil {
			logger.Warn("could not discover declared foreign keys", zap.Error(err))
		} else {
			ApplyForeignKeys(cat, fks)
		}
	}
	InferRelationships(cat)

	logger.Info("catalog discovered",
		zap.Int("tables", cat.TableCount()),
		zap.Int("relationships", cat.Stats().RelationshipCount))

	return cat, nil
}

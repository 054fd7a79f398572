// Package postgres implements the datasource contracts on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/adapters/datasource"
	"github.com/genbi-ai/genbi-engine/pkg/config"
	"github.com/genbi-ai/genbi-engine/pkg/logging"
)

// Conn is a PostgreSQL connection implementing datasource.Conn.
type Conn struct {
	pool   *pgxpool.Pool
	dbName string
	schema string
	logger *zap.Logger
}

// New opens a pooled connection from config.
func New(ctx context.Context, cfg *config.DatasourceConfig, logger *zap.Logger) (*Conn, error) {
	connStr := buildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	logger.Info("postgres pool opened",
		zap.String("target", logging.SanitizeConnectionString(connStr)),
		zap.String("schema", cfg.Schema))

	return &Conn{pool: pool, dbName: cfg.Database, schema: cfg.Schema, logger: logger}, nil
}

func buildConnString(cfg *config.DatasourceConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)
}

// Ping verifies connectivity.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close releases the pool.
func (c *Conn) Close() error {
	c.pool.Close()
	return nil
}

// SupportsForeignKeys reports constraint discovery support.
func (c *Conn) SupportsForeignKeys() bool { return true }

// ListTables returns user tables and views in the configured schema.
func (c *Conn) ListTables(ctx context.Context) ([]datasource.TableInfo, error) {
	const query = `
		SELECT
			t.table_schema,
			t.table_name,
			t.table_type,
			COALESCE(obj_description(pc.oid), '') AS table_comment
		FROM information_schema.tables t
		LEFT JOIN pg_class pc
			ON pc.relname = t.table_name
			AND pc.relnamespace = (SELECT oid FROM pg_namespace WHERE nspname = t.table_schema)
		WHERE t.table_schema = $1
			AND t.table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY t.table_name`

	rows, err := c.pool.Query(ctx, query, c.schema)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var tables []datasource.TableInfo
	for rows.Next() {
		var ti datasource.TableInfo
		var tableType string
		if err := rows.Scan(&ti.Schema, &ti.Name, &tableType, &ti.Comment); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		ti.Database = c.dbName
		if tableType == "VIEW" {
			ti.TableType = "VIEW"
		} else {
			ti.TableType = "TABLE"
		}
		tables = append(tables, ti)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return tables, nil
}

// ListColumns returns one table's columns with primary-key flags.
func (c *Conn) ListColumns(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error) {
	const query = `
		SELECT
			col.column_name,
			col.data_type,
			col.is_nullable = 'YES',
			COALESCE(col.column_default, ''),
			col.character_maximum_length,
			COALESCE(pk.is_pk, false)
		FROM information_schema.columns col
		LEFT JOIN (
			SELECT kcu.column_name, true AS is_pk
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON kcu.constraint_name = tc.constraint_name
				AND kcu.table_schema = tc.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = $1
				AND tc.table_name = $2
		) pk ON pk.column_name = col.column_name
		WHERE col.table_schema = $1
			AND col.table_name = $2
		ORDER BY col.ordinal_position`

	rows, err := c.pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var cols []datasource.ColumnInfo
	for rows.Next() {
		var ci datasource.ColumnInfo
		if err := rows.Scan(&ci.Name, &ci.DataType, &ci.IsNullable, &ci.DefaultValue, &ci.MaxLength, &ci.IsPrimaryKey); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		cols = append(cols, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return cols, nil
}

// ListForeignKeys returns declared constraints in the schema.
func (c *Conn) ListForeignKeys(ctx context.Context) ([]datasource.ForeignKeyInfo, error) {
	const query = `
		SELECT
			tc.constraint_name,
			tc.table_name,
			kcu.column_name,
			ccu.table_name AS referenced_table,
			ccu.column_name AS referenced_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
		ORDER BY tc.constraint_name`

	rows, err := c.pool.Query(ctx, query, c.schema)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyInfo
	for rows.Next() {
		var fk datasource.ForeignKeyInfo
		if err := rows.Scan(&fk.ConstraintName, &fk.Table, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key row: %w", err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return fks, nil
}

// Execute runs a bounded SELECT and returns column-keyed rows.
func (c *Conn) Execute(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	wrapped := fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d",
		query, datasource.EffectiveLimit(limit))

	rows, err := c.pool.Query(ctx, wrapped)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = string(fd.Name)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(map[string]any, len(names))
		for i, name := range names {
			row[name] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return results, nil
}

// SQLSTATE classes that the repair prompt cares about.
const (
	sqlstateUndefinedTable  = "42P01"
	sqlstateUndefinedColumn = "42703"
	sqlstateSyntaxError     = "42601"
)

// classify wraps a pgx failure as a datasource.ExecError.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := datasource.KindGeneric
		switch pgErr.Code {
		case sqlstateUndefinedTable:
			kind = datasource.KindObjectNotFound
		case sqlstateUndefinedColumn:
			kind = datasource.KindInvalidIdentifier
		case sqlstateSyntaxError:
			kind = datasource.KindSyntaxError
		default:
			if strings.HasPrefix(pgErr.Code, "08") {
				kind = datasource.KindConnection
			}
		}
		return &datasource.ExecError{Kind: kind, Message: pgErr.Message, Code: pgErr.Code}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &datasource.ExecError{Kind: datasource.KindConnection, Message: err.Error()}
	}
	return &datasource.ExecError{Kind: datasource.KindGeneric, Message: err.Error()}
}

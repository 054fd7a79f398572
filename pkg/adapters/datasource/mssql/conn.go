// Package mssql implements the datasource contracts on SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"

	mssql "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/adapters/datasource"
	"github.com/genbi-ai/genbi-engine/pkg/config"
	"github.com/genbi-ai/genbi-engine/pkg/logging"
)

// Conn is a SQL Server connection implementing datasource.Conn.
type Conn struct {
	db     *sql.DB
	dbName string
	schema string
	logger *zap.Logger
}

// New opens a SQL Server connection pool from config.
func New(ctx context.Context, cfg *config.DatasourceConfig, logger *zap.Logger) (*Conn, error) {
	connStr := buildConnString(cfg)

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}

	logger.Info("sqlserver pool opened",
		zap.String("target", logging.SanitizeConnectionString(connStr)),
		zap.String("schema", cfg.Schema))

	return &Conn{db: db, dbName: cfg.Database, schema: cfg.Schema, logger: logger}, nil
}

func buildConnString(cfg *config.DatasourceConfig) string {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	u.RawQuery = q.Encode()
	return u.String()
}

// Ping verifies connectivity.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close releases the pool.
func (c *Conn) Close() error { return c.db.Close() }

// SupportsForeignKeys reports constraint discovery support.
func (c *Conn) SupportsForeignKeys() bool { return true }

// ListTables returns user tables and views in the configured schema.
func (c *Conn) ListTables(ctx context.Context) ([]datasource.TableInfo, error) {
	const query = `
		SELECT t.TABLE_SCHEMA, t.TABLE_NAME, t.TABLE_TYPE
		FROM INFORMATION_SCHEMA.TABLES t
		WHERE t.TABLE_SCHEMA = @p1
			AND t.TABLE_TYPE IN ('BASE TABLE', 'VIEW')
		ORDER BY t.TABLE_NAME`

	rows, err := c.db.QueryContext(ctx, query, c.schema)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var tables []datasource.TableInfo
	for rows.Next() {
		var ti datasource.TableInfo
		var tableType string
		if err := rows.Scan(&ti.Schema, &ti.Name, &tableType); err != nil {
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
			col.COLUMN_NAME,
			col.DATA_TYPE,
			CASE WHEN col.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END,
			ISNULL(col.COLUMN_DEFAULT, ''),
			col.CHARACTER_MAXIMUM_LENGTH,
			CASE WHEN pk.COLUMN_NAME IS NULL THEN 0 ELSE 1 END
		FROM INFORMATION_SCHEMA.COLUMNS col
		LEFT JOIN (
			SELECT kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
				ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
				AND kcu.TABLE_SCHEMA = tc.TABLE_SCHEMA
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
				AND tc.TABLE_SCHEMA = @p1
				AND tc.TABLE_NAME = @p2
		) pk ON pk.COLUMN_NAME = col.COLUMN_NAME
		WHERE col.TABLE_SCHEMA = @p1
			AND col.TABLE_NAME = @p2
		ORDER BY col.ORDINAL_POSITION`

	rows, err := c.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var cols []datasource.ColumnInfo
	for rows.Next() {
		var ci datasource.ColumnInfo
		var nullable, isPK int
		var maxLen sql.NullInt64
		if err := rows.Scan(&ci.Name, &ci.DataType, &nullable, &ci.DefaultValue, &maxLen, &isPK); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		ci.IsNullable = nullable == 1
		ci.IsPrimaryKey = isPK == 1
		if maxLen.Valid {
			v := maxLen.Int64
			ci.MaxLength = &v
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
			fk.name,
			tp.name AS table_name,
			cp.name AS column_name,
			tr.name AS referenced_table,
			cr.name AS referenced_column
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.tables tp ON tp.object_id = fkc.parent_object_id
		JOIN sys.columns cp ON cp.object_id = fkc.parent_object_id AND cp.column_id = fkc.parent_column_id
		JOIN sys.tables tr ON tr.object_id = fkc.referenced_object_id
		JOIN sys.columns cr ON cr.object_id = fkc.referenced_object_id AND cr.column_id = fkc.referenced_column_id
		JOIN sys.schemas s ON s.schema_id = tp.schema_id
		WHERE s.name = @p1
		ORDER BY fk.name`

	rows, err := c.db.QueryContext(ctx, query, c.schema)
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

// Execute runs a bounded SELECT using SQL Server's TOP clause.
func (c *Conn) Execute(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	wrapped := limitQuery(query, datasource.EffectiveLimit(limit))

	rows, err := c.db.QueryContext(ctx, wrapped)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read column names: %w", err)
	}

	results := make([]map[string]any, 0)
	values := make([]any, len(names))
	scanTargets := make([]any, len(names))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		row := make(map[string]any, len(names))
		for i, name := range names {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[name] = v
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return results, nil
}

// SQL Server error numbers the repair prompt cares about.
const (
	errInvalidObject   = 208
	errInvalidColumn   = 207
	errSyntaxError     = 102
	errSyntaxNearToken = 156
)

// classify wraps a go-mssqldb failure as a datasource.ExecError.
func classify(err error) error {
	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		kind := datasource.KindGeneric
		switch sqlErr.Number {
		case errInvalidObject:
			kind = datasource.KindObjectNotFound
		case errInvalidColumn:
			kind = datasource.KindInvalidIdentifier
		case errSyntaxError, errSyntaxNearToken:
			kind = datasource.KindSyntaxError
		}
		return &datasource.ExecError{
			Kind:    kind,
			Message: sqlErr.Message,
			Code:    fmt.Sprintf("%d", sqlErr.Number),
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &datasource.ExecError{Kind: datasource.KindConnection, Message: err.Error()}
	}
	return &datasource.ExecError{Kind: datasource.KindGeneric, Message: err.Error()}
}

// Package datasource defines the contracts between the engine and the
// target databases it answers questions against.
package datasource

import "context"

// TableInfo identifies one discovered table.
type TableInfo struct {
	Database  string `json:"database"`
	Schema    string `json:"schema"`
	Name      string `json:"name"`
	TableType string `json:"table_type"` // TABLE or VIEW
	Comment   string `json:"comment,omitempty"`
}

// ColumnInfo describes one discovered column.
type ColumnInfo struct {
	Name         string `json:"name"`
	DataType     string `json:"data_type"`
	IsNullable   bool   `json:"is_nullable"`
	IsPrimaryKey bool   `json:"is_primary_key"`
	DefaultValue string `json:"default_value,omitempty"`
	MaxLength    *int64 `json:"max_length,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// ForeignKeyInfo is one declared foreign-key constraint.
type ForeignKeyInfo struct {
	ConstraintName   string `json:"constraint_name"`
	Table            string `json:"table"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// SchemaFeed lists schema metadata for catalog discovery. Databases
// without declared constraints return an empty foreign-key list;
// discovery then relies on naming-pattern inference alone.
type SchemaFeed interface {
	// ListTables returns all user tables in the configured schema.
	ListTables(ctx context.Context) ([]TableInfo, error)

	// ListColumns returns the columns of one table.
	ListColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error)

	// ListForeignKeys returns declared constraints for the schema.
	ListForeignKeys(ctx context.Context) ([]ForeignKeyInfo, error)

	// SupportsForeignKeys reports whether constraint discovery works.
	SupportsForeignKeys() bool
}

// MaxRowLimit is the hard cap on rows an executed query may return.
const MaxRowLimit = 1000

// Executor runs validated read-only SQL. Implementations always wrap
// queries with a dialect bound so results stay finite.
type Executor interface {
	// Execute runs a SELECT and returns rows as column-keyed maps.
	// limit <= 0 or above MaxRowLimit falls back to MaxRowLimit.
	Execute(ctx context.Context, query string, limit int) ([]map[string]any, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}

// Conn bundles the two halves of a database connection; both feed and
// executor share the same pool underneath.
type Conn interface {
	SchemaFeed
	Executor

	// Close releases the underlying pool.
	Close() error
}

// EffectiveLimit clamps a requested row limit to (0, MaxRowLimit].
func EffectiveLimit(limit int) int {
	if limit <= 0 || limit > MaxRowLimit {
		return MaxRowLimit
	}
	return limit
}

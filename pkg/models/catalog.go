// Package models defines the semantic catalog data model: tables,
// columns, relationships, and the business metadata layered on top.
package models

import (
	"fmt"
	"strings"
	"time"
)

// RelationshipType classifies the cardinality of a relationship edge.
type RelationshipType string

const (
	OneToOne   RelationshipType = "ONE_TO_ONE"
	OneToMany  RelationshipType = "ONE_TO_MANY"
	ManyToOne  RelationshipType = "MANY_TO_ONE"
	ManyToMany RelationshipType = "MANY_TO_MANY"
)

// SemanticType tags a column with its inferred business meaning.
type SemanticType string

const (
	SemanticNone        SemanticType = ""
	SemanticIdentifier  SemanticType = "identifier"
	SemanticCurrency    SemanticType = "currency"
	SemanticQuantity    SemanticType = "quantity"
	SemanticDatetime    SemanticType = "datetime"
	SemanticEmail       SemanticType = "email"
	SemanticPhone       SemanticType = "phone"
	SemanticURL         SemanticType = "url"
	SemanticAddress     SemanticType = "address"
	SemanticName        SemanticType = "name"
	SemanticDescription SemanticType = "description"
	SemanticStatus      SemanticType = "status"
)

// Column is a database column with semantic enrichment. Columns are
// immutable once discovered except for the foreign-key flag, which the
// inference pass sets.
type Column struct {
	Name         string       `json:"name"`
	DataType     string       `json:"data_type"`
	BusinessName string       `json:"business_name,omitempty"`
	Description  string       `json:"description,omitempty"`
	IsNullable   bool         `json:"is_nullable"`
	IsPrimaryKey bool         `json:"is_primary_key"`
	IsForeignKey bool         `json:"is_foreign_key"`
	DefaultValue string       `json:"default_value,omitempty"`
	MaxLength    *int64       `json:"max_length,omitempty"`
	Precision    *int64       `json:"precision,omitempty"`
	Scale        *int64       `json:"scale,omitempty"`
	Comment      string       `json:"comment,omitempty"`
	SemanticType SemanticType `json:"semantic_type,omitempty"`
}

// Relationship is a directed edge between two table columns.
type Relationship struct {
	SourceTable  string           `json:"source_table"`
	TargetTable  string           `json:"target_table"`
	SourceColumn string           `json:"source_column"`
	TargetColumn string           `json:"target_column"`
	Type         RelationshipType `json:"relationship_type"`
	Name         string           `json:"name,omitempty"`
	Description  string           `json:"description,omitempty"`
	// IsEnforced distinguishes database-declared foreign keys from
	// name-pattern inferences.
	IsEnforced bool `json:"is_enforced"`
}

// IsSelfReferential reports whether the edge points back at its own table.
func (r *Relationship) IsSelfReferential() bool {
	return strings.EqualFold(r.SourceTable, r.TargetTable)
}

// Table is a database table plus its business metadata. A table's
// identity key is (database, schema, name).
type Table struct {
	Name          string         `json:"name"`
	Schema        string         `json:"schema"`
	Database      string         `json:"database"`
	BusinessName  string         `json:"business_name,omitempty"`
	Description   string         `json:"description,omitempty"`
	TableType     string         `json:"table_type"` // TABLE, VIEW, MATERIALIZED_VIEW
	Columns       []Column       `json:"columns"`
	Relationships []Relationship `json:"relationships,omitempty"`
	RowCount      *int64         `json:"row_count,omitempty"`
	SizeBytes     *int64         `json:"size_bytes,omitempty"`
	LastModified  *time.Time     `json:"last_modified,omitempty"`
	Comment       string         `json:"comment,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
}

// QualifiedName returns the catalog identity key for the table.
func (t *Table) QualifiedName() string {
	return fmt.Sprintf("%s.%s.%s", t.Database, t.Schema, t.Name)
}

// GetColumn finds a column by name, case-insensitively.
func (t *Table) GetColumn(name string) *Column {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKeys returns all primary key columns in declaration order.
func (t *Table) PrimaryKeys() []Column {
	var pks []Column
	for _, col := range t.Columns {
		if col.IsPrimaryKey {
			pks = append(pks, col)
		}
	}
	return pks
}

// ForeignKeys returns all foreign key columns in declaration order.
func (t *Table) ForeignKeys() []Column {
	var fks []Column
	for _, col := range t.Columns {
		if col.IsForeignKey {
			fks = append(fks, col)
		}
	}
	return fks
}

// Catalog is the semantic layer for one target data store: the table
// graph plus business metrics, dimensions, joins, rules, and glossary.
type Catalog struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	Tables             map[string]*Table `json:"tables"`
	BusinessMetrics    map[string]string `json:"business_metrics"`    // metric name -> SQL expression
	BusinessDimensions map[string]string `json:"business_dimensions"` // dimension name -> column reference
	CommonJoins        map[string]string `json:"common_joins"`        // join name -> SQL join clause
	BusinessRules      []string          `json:"business_rules"`
	Glossary           map[string]string `json:"glossary"` // term -> definition
}

// NewCatalog returns an empty catalog with all maps initialized.
func NewCatalog(name string) *Catalog {
	return &Catalog{
		Name:               name,
		Tables:             make(map[string]*Table),
		BusinessMetrics:    make(map[string]string),
		BusinessDimensions: make(map[string]string),
		CommonJoins:        make(map[string]string),
		Glossary:           make(map[string]string),
	}
}

// AddTable inserts or replaces a table, keyed by its qualified name.
func (c *Catalog) AddTable(t *Table) {
	c.Tables[t.QualifiedName()] = t
}

// GetTable looks a table up by exact qualified name first, then falls
// back to a case-insensitive match on the bare table name.
func (c *Catalog) GetTable(name string) *Table {
	if t, ok := c.Tables[name]; ok {
		return t
	}
	for _, t := range c.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// TableCount returns the number of tables in the catalog.
func (c *Catalog) TableCount() int {
	return len(c.Tables)
}

// Statistics summarizes catalog contents for status reporting.
type Statistics struct {
	TableCount         int `json:"table_count"`
	ColumnCount        int `json:"column_count"`
	RelationshipCount  int `json:"relationship_count"`
	BusinessMetrics    int `json:"business_metrics_count"`
	BusinessDimensions int `json:"business_dimensions_count"`
	CommonJoins        int `json:"common_joins_count"`
	BusinessRules      int `json:"business_rules_count"`
	GlossaryTerms      int `json:"glossary_terms_count"`
}

// Stats computes summary statistics over the catalog.
func (c *Catalog) Stats() Statistics {
	s := Statistics{
		TableCount:         len(c.Tables),
		BusinessMetrics:    len(c.BusinessMetrics),
		BusinessDimensions: len(c.BusinessDimensions),
		CommonJoins:        len(c.CommonJoins),
		BusinessRules:      len(c.BusinessRules),
		GlossaryTerms:      len(c.Glossary),
	}
	for _, t := range c.Tables {
		s.ColumnCount += len(t.Columns)
		s.RelationshipCount += len(t.Relationships)
	}
	return s
}

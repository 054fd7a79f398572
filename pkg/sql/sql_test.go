package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare sql", "SELECT 1", "SELECT 1"},
		{"whitespace", "  SELECT 1\n", "SELECT 1"},
		{"sql fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"plain fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"fence no newline", "```SELECT 1```", "SELECT 1"},
		{"trailing semicolon", "SELECT 1;", "SELECT 1"},
		{"semicolon then whitespace", "SELECT 1 ;\n", "SELECT 1"},
		{"stuttered semicolons", "SELECT 1;;", "SELECT 1"},
		{"fenced with semicolon", "```sql\nSELECT 1;\n```", "SELECT 1"},
		{
			"multiline query",
			"```sql\nSELECT name, SUM(total)\nFROM orders\nGROUP BY name\n```",
			"SELECT name, SUM(total)\nFROM orders\nGROUP BY name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw))
		})
	}
}

func TestValidate_AcceptsReadOnly(t *testing.T) {
	queries := []string{
		"SELECT * FROM orders",
		"SELECT * FROM orders;",
		"WITH t AS (SELECT 1 AS n) SELECT n FROM t",
		"SELECT created_at, updated_at FROM events", // column names are not keywords
		"SELECT * FROM deletions",                   // substring of DELETE must not match
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			res := Validate(q)
			assert.True(t, res.Valid, res.Reason)
		})
	}
}

func TestValidate_RejectsMutations(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty", "   "},
		{"insert", "INSERT INTO t VALUES (1)"},
		{"update start", "UPDATE t SET a = 1"},
		{"drop inside select", "SELECT 1; DROP TABLE t"},
		{"delete via cte", "WITH x AS (SELECT 1) DELETE FROM t"},
		{"exec", "EXEC sp_who"},
		{"grant inside", "SELECT * FROM t WHERE GRANT = 1"},
		{"not a select", "EXPLAIN SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.query)
			assert.False(t, res.Valid)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestValidate_MultipleStatements(t *testing.T) {
	res := Validate("SELECT 1; SELECT 2")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Reason, "multiple")

	// Semicolons inside string literals are fine.
	res = Validate("SELECT * FROM notes WHERE body = 'a; b'")
	assert.True(t, res.Valid, res.Reason)
}

func TestValidate_SystemCatalogWarning(t *testing.T) {
	res := Validate("SELECT * FROM information_schema.tables")
	require.True(t, res.Valid)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "system catalog")
}

func TestAnalyze(t *testing.T) {
	meta := Analyze(`SELECT c.name, SUM(o.amount)
FROM customers c
JOIN orders o ON o.customer_id = c.id
WHERE o.status = 'paid'
GROUP BY c.name
ORDER BY 2 DESC`)

	assert.Equal(t, "SELECT", meta.QueryType)
	assert.True(t, meta.HasAggregations)
	assert.True(t, meta.HasJoins)
	assert.True(t, meta.HasFiltering)
	assert.True(t, meta.HasGrouping)
	assert.True(t, meta.HasOrdering)
	assert.Equal(t, "medium", meta.EstimatedComplexity)
	assert.ElementsMatch(t, []string{"customers", "orders"}, meta.TablesReferenced)
}

func TestAnalyze_Subquery(t *testing.T) {
	meta := Analyze("SELECT * FROM (SELECT id FROM orders) AS sub")
	assert.Equal(t, "complex", meta.EstimatedComplexity)
}

func TestAnalyze_Empty(t *testing.T) {
	meta := Analyze("")
	assert.Equal(t, "simple", meta.EstimatedComplexity)
	assert.Empty(t, meta.TablesReferenced)
}

package sql

import (
	"strings"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

var aggregateFuncs = []string{"SUM(", "COUNT(", "AVG(", "MAX(", "MIN("}

var windowFuncs = []string{"ROW_NUMBER(", "RANK(", "DENSE_RANK(", "OVER("}

// Analyze extracts structural metadata from a query without a full
// parse. The table extraction is deliberately rough: it reads the
// identifier after each FROM and JOIN, which covers generated queries
// well enough for display and routing.
func Analyze(query string) models.QueryMetadata {
	meta := models.QueryMetadata{
		QueryType:           "SELECT",
		EstimatedComplexity: "simple",
	}
	if strings.TrimSpace(query) == "" {
		return meta
	}

	upper := strings.ToUpper(query)

	for _, fn := range aggregateFuncs {
		if strings.Contains(upper, fn) {
			meta.HasAggregations = true
			meta.EstimatedComplexity = "medium"
			break
		}
	}

	if strings.Contains(upper, "JOIN") {
		meta.HasJoins = true
		meta.EstimatedComplexity = "medium"
	}
	if strings.Contains(upper, "WHERE") {
		meta.HasFiltering = true
	}
	if strings.Contains(upper, "GROUP BY") {
		meta.HasGrouping = true
	}
	if strings.Contains(upper, "ORDER BY") {
		meta.HasOrdering = true
	}

	// A second SELECT means a subquery or CTE body.
	if strings.Contains(strings.Replace(upper, "SELECT", "", 1), "SELECT") {
		meta.EstimatedComplexity = "complex"
	}
	for _, fn := range windowFuncs {
		if strings.Contains(upper, fn) {
			meta.EstimatedComplexity = "complex"
			break
		}
	}

	meta.TablesReferenced = referencedTables(query)
	return meta
}

// referencedTables picks the token after each FROM or JOIN keyword.
func referencedTables(query string) []string {
	words := strings.Fields(strings.ReplaceAll(query, `"`, ""))
	var tables []string
	seen := make(map[string]bool)

	for i, w := range words {
		kw := strings.ToUpper(w)
		if (kw == "FROM" || kw == "JOIN") && i+1 < len(words) {
			name := strings.Trim(words[i+1], ",()")
			if name == "" || strings.HasPrefix(strings.ToUpper(name), "SELECT") {
				continue
			}
			if !seen[name] {
				seen[name] = true
				tables = append(tables, name)
			}
		}
	}
	return tables
}

package cost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/genbi-ai/genbi-engine/pkg/cache"
	"github.com/genbi-ai/genbi-engine/pkg/models"
)

const (
	maxRelevantTables  = 5
	maxColumnsPerTable = 6

	// Rough token estimate: one token per four characters.
	charsPerToken = 4

	// Blended per-token price used for the savings estimate.
	costPerToken = 0.000015
)

// Business terms that keep a table in scope even when the question
// never names it.
var commonBusinessTerms = []string{
	"customer", "order", "product", "sale", "transaction", "invoice",
}

// Column-name fragments that mark a column as essential for SQL
// generation.
var essentialColumnTerms = []string{
	"id", "name", "date", "time", "amount", "price", "total", "count", "status",
}

// Metrics tracks what one compression pass saved.
type Metrics struct {
	OriginalTokens     int     `json:"original_tokens"`
	OptimizedTokens    int     `json:"optimized_tokens"`
	EstimatedCostSaved float64 `json:"estimated_cost_saved"`
	CacheHit           bool    `json:"cache_hit"`
}

// TokensSaved returns the token delta, never negative.
func (m Metrics) TokensSaved() int {
	if d := m.OriginalTokens - m.OptimizedTokens; d > 0 {
		return d
	}
	return 0
}

// Optimizer compresses a catalog into a minimal schema prompt for a
// given question, with a cache in front of the compression pass.
type Optimizer struct {
	prompts *cache.PromptCache
}

// NewOptimizer builds an optimizer backed by the given prompt cache.
func NewOptimizer(prompts *cache.PromptCache) *Optimizer {
	return &Optimizer{prompts: prompts}
}

// CompressSchema renders the question-relevant slice of the catalog as
// a compact one-line-per-table schema description.
func (o *Optimizer) CompressSchema(question string, cat *models.Catalog) (string, Metrics) {
	var metrics Metrics
	metrics.OriginalTokens = estimateCatalogTokens(cat)

	if o.prompts != nil {
		if cached, ok := o.prompts.Get(question, cat.TableCount()); ok {
			metrics.CacheHit = true
			metrics.OptimizedTokens = len(cached) / charsPerToken
			metrics.EstimatedCostSaved = float64(metrics.TokensSaved()) * costPerToken
			return cached, metrics
		}
	}

	tables := relevantTables(question, cat)
	compressed := compressTables(tables)

	metrics.OptimizedTokens = len(compressed) / charsPerToken
	metrics.EstimatedCostSaved = float64(metrics.TokensSaved()) * costPerToken

	if o.prompts != nil {
		o.prompts.Put(question, cat.TableCount(), compressed)
	}
	return compressed, metrics
}

// relevantTables picks up to maxRelevantTables tables whose names or
// column names overlap the question's words, always admitting common
// business tables. Falls back to the first three tables (by name) when
// nothing matches.
func relevantTables(question string, cat *models.Catalog) []*models.Table {
	keywords := strings.Fields(strings.ToLower(question))

	names := make([]string, 0, len(cat.Tables))
	for name := range cat.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var relevant []*models.Table
	for _, qualified := range names {
		tbl := cat.Tables[qualified]
		if tableIsRelevant(tbl, keywords) {
			relevant = append(relevant, tbl)
		}
	}

	if len(relevant) == 0 {
		for _, qualified := range names {
			relevant = append(relevant, cat.Tables[qualified])
			if len(relevant) == 3 {
				break
			}
		}
	}

	if len(relevant) > maxRelevantTables {
		relevant = relevant[:maxRelevantTables]
	}
	return relevant
}

func tableIsRelevant(tbl *models.Table, keywords []string) bool {
	tableName := strings.ToLower(tbl.Name)
	for _, kw := range keywords {
		if strings.Contains(tableName, kw) {
			return true
		}
	}
	for _, col := range tbl.Columns {
		colName := strings.ToLower(col.Name)
		for _, kw := range keywords {
			if strings.Contains(colName, kw) {
				return true
			}
		}
	}
	for _, term := range commonBusinessTerms {
		if strings.Contains(tableName, term) {
			return true
		}
	}
	return false
}

// compressTables formats tables as name(col(type),...) joined by
// semicolons, keeping only essential columns.
func compressTables(tables []*models.Table) string {
	parts := make([]string, 0, len(tables))
	for _, tbl := range tables {
		var cols []string
		for _, col := range tbl.Columns {
			if len(cols) == maxColumnsPerTable {
				break
			}
			if col.IsPrimaryKey || isEssentialColumn(col.Name) {
				cols = append(cols, fmt.Sprintf("%s(%s)", col.Name, strings.ToLower(col.DataType)))
			}
		}
		if len(cols) > 0 {
			parts = append(parts, fmt.Sprintf("%s(%s)", tbl.Name, strings.Join(cols, ",")))
		}
	}
	return strings.Join(parts, "; ")
}

func isEssentialColumn(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range essentialColumnTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func estimateCatalogTokens(cat *models.Catalog) int {
	chars := 0
	for _, tbl := range cat.Tables {
		chars += len(tbl.QualifiedName())
		for _, col := range tbl.Columns {
			chars += len(col.Name) + len(col.DataType) + 2
		}
	}
	return chars / charsPerToken
}

package cost

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genbi-ai/genbi-engine/pkg/cache"
	"github.com/genbi-ai/genbi-engine/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		want     models.ComplexityTier
	}{
		{"total sales", models.ComplexitySimple},
		{"how many customers signed up", models.ComplexitySimple},
		{"compare year over year growth by region", models.ComplexityComplex},
		{"trend of revenue by month", models.ComplexityComplex},
		{"cohort retention forecasting", models.ComplexityAdvanced},
		{"detect anomaly in daily signups", models.ComplexityAdvanced},
		{"revenue for the west region last quarter", models.ComplexityMedium},
		{"orders in france and germany and spain", models.ComplexityComplex},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.question))
		})
	}
}

func TestClassify_LongQuestionIsComplex(t *testing.T) {
	long := "please give me the revenue for every single product we have sold to every customer in every region over the last three fiscal years"
	assert.Equal(t, models.ComplexityComplex, Classify(long))
}

func testCatalog() *models.Catalog {
	cat := models.NewCatalog("shop")
	cat.AddTable(&models.Table{
		Name: "orders", Schema: "public", Database: "shop",
		Columns: []models.Column{
			{Name: "id", DataType: "integer", IsPrimaryKey: true},
			{Name: "customer_id", DataType: "integer"},
			{Name: "total_amount", DataType: "numeric"},
			{Name: "internal_shard_hint", DataType: "text"},
		},
	})
	cat.AddTable(&models.Table{
		Name: "customers", Schema: "public", Database: "shop",
		Columns: []models.Column{
			{Name: "id", DataType: "integer", IsPrimaryKey: true},
			{Name: "name", DataType: "text"},
		},
	})
	cat.AddTable(&models.Table{
		Name: "audit_log", Schema: "public", Database: "shop",
		Columns: []models.Column{
			{Name: "entry", DataType: "jsonb"},
		},
	})
	return cat
}

func TestCompressSchema_PicksRelevantTables(t *testing.T) {
	opt := NewOptimizer(nil)
	compressed, metrics := opt.CompressSchema("total order amount by customer", testCatalog())

	assert.Contains(t, compressed, "orders(")
	assert.Contains(t, compressed, "customers(")
	assert.NotContains(t, compressed, "audit_log")
	assert.NotContains(t, compressed, "internal_shard_hint", "non-essential columns are dropped")
	assert.False(t, metrics.CacheHit)
}

func TestCompressSchema_FallsBackWhenNothingMatches(t *testing.T) {
	cat := models.NewCatalog("warehouse")
	cat.AddTable(&models.Table{
		Name: "dim_a", Schema: "dw", Database: "warehouse",
		Columns: []models.Column{{Name: "a_id", DataType: "integer"}},
	})

	opt := NewOptimizer(nil)
	compressed, _ := opt.CompressSchema("zzz unrelated", cat)
	assert.Contains(t, compressed, "dim_a(")
}

func TestCompressSchema_UsesPromptCache(t *testing.T) {
	pc := cache.NewPromptCache(10, time.Hour)
	opt := NewOptimizer(pc)
	cat := testCatalog()

	first, m1 := opt.CompressSchema("total order amount", cat)
	require.False(t, m1.CacheHit)

	second, m2 := opt.CompressSchema("TOTAL ORDER AMOUNT", cat)
	assert.True(t, m2.CacheHit)
	assert.Equal(t, first, second)
}

func TestCompressSchema_TableLimit(t *testing.T) {
	cat := models.NewCatalog("shop")
	for _, name := range []string{"customer_a", "customer_b", "customer_c", "customer_d", "customer_e", "customer_f", "customer_g"} {
		cat.AddTable(&models.Table{
			Name: name, Schema: "public", Database: "shop",
			Columns: []models.Column{{Name: "id", DataType: "integer", IsPrimaryKey: true}},
		})
	}

	opt := NewOptimizer(nil)
	compressed, _ := opt.CompressSchema("customer details", cat)
	assert.Len(t, strings.Split(compressed, "; "), maxRelevantTables)
}

func TestMetricsTokensSaved(t *testing.T) {
	m := Metrics{OriginalTokens: 100, OptimizedTokens: 30}
	assert.Equal(t, 70, m.TokensSaved())

	m = Metrics{OriginalTokens: 10, OptimizedTokens: 30}
	assert.Equal(t, 0, m.TokensSaved())
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// chainCatalog builds customers <- orders -> products, orders <- order_items.
func chainCatalog() *models.Catalog {
	cat := models.NewCatalog("shop")
	cat.AddTable(table("customers", pk("id")))
	cat.AddTable(table("products", pk("id")))
	cat.AddTable(table("orders", pk("id"), col("customer_id"), col("product_id")))
	cat.AddTable(table("order_items", pk("id"), col("order_id")))
	cat.AddTable(table("audit_log", pk("id")))
	InferRelationships(cat)
	return cat
}

func TestFindRelatedTables_OneHop(t *testing.T) {
	cat := chainCatalog()
	related := FindRelatedTables(cat, "orders", 1)
	assert.Equal(t, []string{"customers", "order_items", "products"}, related)
}

func TestFindRelatedTables_TwoHops(t *testing.T) {
	cat := chainCatalog()
	related := FindRelatedTables(cat, "customers", 2)
	// Hop 1: orders. Hop 2: order_items and products, sorted.
	assert.Equal(t, []string{"orders", "order_items", "products"}, related)
}

func TestFindRelatedTables_Idempotent(t *testing.T) {
	cat := chainCatalog()
	first := FindRelatedTables(cat, "orders", 3)
	second := FindRelatedTables(cat, "orders", 3)
	assert.Equal(t, first, second)
}

func TestFindRelatedTables_IsolatedTable(t *testing.T) {
	cat := chainCatalog()
	assert.Empty(t, FindRelatedTables(cat, "audit_log", 3))
}

func TestFindRelatedTables_UnknownTable(t *testing.T) {
	cat := chainCatalog()
	assert.Nil(t, FindRelatedTables(cat, "missing", 2))
}

func TestFindRelatedTables_StopsWhenExhausted(t *testing.T) {
	cat := chainCatalog()
	// Depth far beyond the graph's diameter returns every reachable
	// table exactly once.
	related := FindRelatedTables(cat, "order_items", 10)
	assert.Equal(t, []string{"orders", "customers", "products"}, related)
}

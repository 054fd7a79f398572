package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

func TestStore_SwapAndBuilt(t *testing.T) {
	s := NewStore("1.0.0")
	assert.False(t, s.Built())
	assert.Nil(t, s.Snapshot())

	s.Swap(models.NewCatalog("shop"))
	assert.False(t, s.Built(), "an empty catalog does not count as built")

	s.Swap(chainCatalog())
	assert.True(t, s.Built())
	assert.False(t, s.LastUpdated().IsZero())
}

func TestStore_ReadersKeepOldSnapshot(t *testing.T) {
	s := NewStore("1.0.0")
	first := chainCatalog()
	s.Swap(first)

	held := s.Snapshot()
	s.Swap(models.NewCatalog("rebuilt"))

	// The reader's snapshot is untouched by the refresh.
	assert.Equal(t, 5, held.TableCount())
	assert.Equal(t, 0, s.Snapshot().TableCount())
}

func TestStore_BusinessContextAppends(t *testing.T) {
	s := NewStore("1.0.0")
	s.Swap(chainCatalog())

	s.AddBusinessMetric("revenue", "SUM(orders.amount)")
	s.AddBusinessDimension("region", "customers.region")
	s.AddCommonJoin("orders_customers", "orders JOIN customers ON orders.customer_id = customers.id")
	s.AddBusinessRule("Exclude test accounts")
	s.AddGlossaryTerm("churn", "no orders in 90 days")

	cat := s.Snapshot()
	require.NotNil(t, cat)
	assert.Equal(t, "SUM(orders.amount)", cat.BusinessMetrics["revenue"])
	assert.Equal(t, "customers.region", cat.BusinessDimensions["region"])
	assert.Len(t, cat.CommonJoins, 1)
	assert.Equal(t, []string{"Exclude test accounts"}, cat.BusinessRules)
	assert.Equal(t, "no orders in 90 days", cat.Glossary["churn"])
}

func TestStore_AppendsBeforeSwapAreNoOps(t *testing.T) {
	s := NewStore("1.0.0")
	s.AddBusinessRule("too early")
	assert.Nil(t, s.Snapshot())
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSemanticType(t *testing.T) {
	tests := []struct {
		name   string
		column string
		want   SemanticType
	}{
		{"email column", "customer_email", SemanticEmail},
		{"email wins over address", "email_address", SemanticEmail},
		{"phone", "contact_phone", SemanticPhone},
		{"url", "website_url", SemanticURL},
		{"datetime", "created_at", SemanticDatetime},
		{"updated is datetime", "last_updated", SemanticDatetime},
		{"identifier", "customer_id", SemanticIdentifier},
		{"currency", "order_total", SemanticCurrency},
		{"quantity", "line_qty", SemanticQuantity},
		{"address", "shipping_street", SemanticAddress},
		{"name", "product_name", SemanticName},
		{"description", "item_desc", SemanticDescription},
		{"status", "is_active", SemanticStatus},
		{"no match", "foo", SemanticNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferSemanticType(tt.column))
		})
	}
}

func TestDeriveBusinessName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"customer_dim", "Customer Dimension"},
		{"SALES_FACT", "Sales Facts"},
		{"product_master", "Product Master Data"},
		{"order_items", "Order Items"},
		{"customers", "Customers"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveBusinessName(tt.table))
		})
	}
}

func TestDeriveColumnBusinessName(t *testing.T) {
	tests := []struct {
		column string
		want   string
	}{
		{"customer_id", "Customer ID"},
		{"region_cd", "Region Code"},
		{"order_dt", "Order Date"},
		{"total_amt", "Total Amount"},
		{"line_qty", "Line Quantity"},
		{"first_name", "First Name"},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveColumnBusinessName(tt.column))
		})
	}
}

func TestTableQualifiedName(t *testing.T) {
	tbl := &Table{Name: "orders", Schema: "public", Database: "shop"}
	assert.Equal(t, "shop.public.orders", tbl.QualifiedName())
}

func TestTableGetColumn(t *testing.T) {
	tbl := &Table{Columns: []Column{
		{Name: "ID", IsPrimaryKey: true},
		{Name: "total_amt"},
	}}

	col := tbl.GetColumn("id")
	require.NotNil(t, col)
	assert.True(t, col.IsPrimaryKey)
	assert.Nil(t, tbl.GetColumn("missing"))
}

func TestCatalogGetTable(t *testing.T) {
	cat := NewCatalog("shop")
	cat.AddTable(&Table{Name: "ORDERS", Schema: "dbo", Database: "shop"})

	assert.NotNil(t, cat.GetTable("shop.dbo.ORDERS"), "exact qualified name")
	assert.NotNil(t, cat.GetTable("orders"), "case-insensitive short name")
	assert.Nil(t, cat.GetTable("customers"))
}

func TestCatalogStats(t *testing.T) {
	cat := NewCatalog("shop")
	cat.AddTable(&Table{
		Name: "orders", Schema: "dbo", Database: "shop",
		Columns:       []Column{{Name: "id"}, {Name: "customer_id"}},
		Relationships: []Relationship{{SourceTable: "orders", TargetTable: "customers"}},
	})
	cat.AddTable(&Table{
		Name: "customers", Schema: "dbo", Database: "shop",
		Columns: []Column{{Name: "id"}},
	})
	cat.BusinessMetrics["revenue"] = "SUM(orders.total_amt)"
	cat.Glossary["churn"] = "customers with no orders in 90 days"

	s := cat.Stats()
	assert.Equal(t, 2, s.TableCount)
	assert.Equal(t, 3, s.ColumnCount)
	assert.Equal(t, 1, s.RelationshipCount)
	assert.Equal(t, 1, s.BusinessMetrics)
	assert.Equal(t, 1, s.GlossaryTerms)
}

func TestCatalogJSONRoundTrip(t *testing.T) {
	cat := NewCatalog("shop")
	rc := int64(42)
	cat.AddTable(&Table{
		Name: "orders", Schema: "public", Database: "shop",
		TableType: "TABLE",
		RowCount:  &rc,
		Columns: []Column{
			{Name: "id", DataType: "integer", IsPrimaryKey: true, SemanticType: SemanticIdentifier},
		},
	})

	data, err := json.Marshal(cat)
	require.NoError(t, err)

	var got Catalog
	require.NoError(t, json.Unmarshal(data, &got))
	tbl := got.GetTable("orders")
	require.NotNil(t, tbl)
	require.NotNil(t, tbl.RowCount)
	assert.Equal(t, int64(42), *tbl.RowCount)
	assert.Equal(t, SemanticIdentifier, tbl.Columns[0].SemanticType)
}

func TestRelationshipIsSelfReferential(t *testing.T) {
	r := &Relationship{SourceTable: "employees", TargetTable: "EMPLOYEES"}
	assert.True(t, r.IsSelfReferential())

	r = &Relationship{SourceTable: "orders", TargetTable: "customers"}
	assert.False(t, r.IsSelfReferential())
}

func TestWorkflowResultAddStep(t *testing.T) {
	res := NewWorkflowResult("total sales")
	assert.NotEmpty(t, res.WorkflowID)
	assert.Equal(t, StepError, res.Status)

	res.AddStep(StepSchemaContext, StepSuccess, "", 0)
	res.AddStep(StepSQLGeneration, StepError, "timeout", 0)

	require.Len(t, res.Steps, 2)
	assert.Equal(t, StepSchemaContext, res.Steps[0].Step)
	assert.Equal(t, StepError, res.Steps[1].Status)
	assert.False(t, res.Succeeded())
}

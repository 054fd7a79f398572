package catalog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

func TestValidate_IsolatedTables(t *testing.T) {
	cat := chainCatalog()
	f := Validate(cat)

	require.Len(t, f.Warnings, 1)
	assert.Contains(t, f.Warnings[0], "audit_log")
	assert.NotContains(t, f.Warnings[0], "orders")
	assert.Empty(t, f.Errors)
}

func TestValidate_DanglingRelationship(t *testing.T) {
	cat := models.NewCatalog("shop")
	tbl := table("orders", pk("id"))
	tbl.Relationships = append(tbl.Relationships, models.Relationship{
		SourceTable: "orders", SourceColumn: "ghost_id",
		TargetTable: "ghosts", TargetColumn: "id",
		Type: models.ManyToOne,
	})
	cat.AddTable(tbl)

	f := Validate(cat)
	require.Len(t, f.Errors, 1)
	assert.Contains(t, f.Errors[0], "orders.ghost_id -> ghosts")
}

func TestValidate_MissingBusinessNames(t *testing.T) {
	cat := models.NewCatalog("shop")
	cat.AddTable(table("orders", pk("id")))

	f := Validate(cat)
	found := false
	for _, s := range f.Suggestions {
		if strings.Contains(s, "business names") && strings.Contains(s, "orders") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_CapsColumnAdvisories(t *testing.T) {
	cat := models.NewCatalog("shop")
	tbl := &models.Table{Name: "wide", Schema: "public", Database: "shop", BusinessName: "Wide"}
	for i := 0; i < 25; i++ {
		tbl.Columns = append(tbl.Columns, models.Column{Name: fmt.Sprintf("c%02d", i), DataType: "text"})
	}
	cat.AddTable(tbl)

	f := Validate(cat)
	var columnAdvisory string
	for _, s := range f.Suggestions {
		if strings.Contains(s, "descriptions for columns") {
			columnAdvisory = s
		}
	}
	require.NotEmpty(t, columnAdvisory)
	assert.Contains(t, columnAdvisory, "wide.c00")
	assert.NotContains(t, columnAdvisory, "wide.c20", "advisory is capped")
}

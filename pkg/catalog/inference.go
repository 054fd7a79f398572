// Package catalog builds and serves the semantic layer: discovery,
// relationship inference, traversal, context rendering, persistence.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/genbi-ai/genbi-engine/pkg/adapters/datasource"
	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// keySuffix marks a column as a probable foreign key.
const keySuffix = "_id"

// ApplyForeignKeys consumes declared constraints verbatim as enforced
// many-to-one relationships.
func ApplyForeignKeys(cat *models.Catalog, fks []datasource.ForeignKeyInfo) {
	for _, fk := range fks {
		source := cat.GetTable(fk.Table)
		target := cat.GetTable(fk.ReferencedTable)
		if source == nil || target == nil {
			continue
		}
		source.Relationships = append(source.Relationships, models.Relationship{
			SourceTable:  source.Name,
			TargetTable:  target.Name,
			SourceColumn: fk.Column,
			TargetColumn: fk.ReferencedColumn,
			Type:         models.ManyToOne,
			Name:         fk.ConstraintName,
			IsEnforced:   true,
		})
		if col := source.GetColumn(fk.Column); col != nil {
			col.IsForeignKey = true
		}
	}
}

// InferRelationships runs the heuristic naming-pattern pass: every
// non-key column ending in _id is matched against candidate target
// tables derived from the column's stem. The variant order is fixed
// (stem, plural, singular, _dim, _fact, _master) and the first match
// wins, so repeated runs over an unchanged catalog agree.
func InferRelationships(cat *models.Catalog) {
	byBareName := make(map[string]*models.Table)
	qualified := make([]string, 0, len(cat.Tables))
	for name, tbl := range cat.Tables {
		qualified = append(qualified, name)
		byBareName[strings.ToLower(tbl.Name)] = tbl
	}
	sort.Strings(qualified)

	for _, name := range qualified {
		tbl := cat.Tables[name]
		for i := range tbl.Columns {
			col := &tbl.Columns[i]
			lower := strings.ToLower(col.Name)
			if !strings.HasSuffix(lower, keySuffix) || col.IsPrimaryKey || col.IsForeignKey {
				continue
			}
			stem := lower[:len(lower)-len(keySuffix)]

			target := findTargetTable(byBareName, stem)
			if target == nil {
				continue
			}
			targetCol := findTargetColumn(target)
			if targetCol == "" {
				continue
			}

			// Self-references (manager hierarchies and the like) are
			// kept, flagged through the description.
			desc := fmt.Sprintf("Inferred from naming pattern: %s", col.Name)
			if strings.EqualFold(target.Name, tbl.Name) {
				desc += " (self-referential)"
			}

			tbl.Relationships = append(tbl.Relationships, models.Relationship{
				SourceTable:  tbl.Name,
				TargetTable:  target.Name,
				SourceColumn: col.Name,
				TargetColumn: targetCol,
				Type:         models.ManyToOne,
				Description:  desc,
				IsEnforced:   false,
			})
			col.IsForeignKey = true
		}
	}
}

// findTargetTable tries the fixed variant order against bare table
// names, case-insensitively.
func findTargetTable(byBareName map[string]*models.Table, stem string) *models.Table {
	variants := []string{
		stem,
		inflection.Plural(stem),
		inflection.Singular(stem),
		stem + "_dim",
		stem + "_fact",
		stem + "_master",
	}

	for _, v := range variants {
		if tbl, ok := byBareName[v]; ok {
			return tbl
		}
	}
	return nil
}

// findTargetColumn picks the join column inside a matched table: the
// primary key if declared, else a column literally named id, else
// <table>_id.
func findTargetColumn(tbl *models.Table) string {
	for _, col := range tbl.Columns {
		if col.IsPrimaryKey {
			return col.Name
		}
	}
	tableID := strings.ToLower(tbl.Name) + keySuffix
	for _, col := range tbl.Columns {
		lower := strings.ToLower(col.Name)
		if lower == "id" || lower == tableID {
			return col.Name
		}
	}
	return ""
}

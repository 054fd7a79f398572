package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// maxReportedColumns caps the missing-description advisory.
const maxReportedColumns = 10

// Findings are advisory validation results. Nothing here ever blocks
// an operation.
type Findings struct {
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Validate inspects the catalog without mutating it: dangling
// relationship targets are errors, isolated tables are warnings,
// missing business names and column descriptions are suggestions.
func Validate(cat *models.Catalog) Findings {
	var f Findings

	var isolated, unnamed, undescribed, dangling []string
	referenced := make(map[string]bool)
	for _, tbl := range cat.Tables {
		for _, rel := range tbl.Relationships {
			referenced[strings.ToLower(rel.TargetTable)] = true
			referenced[strings.ToLower(rel.SourceTable)] = true
			if cat.GetTable(rel.TargetTable) == nil {
				dangling = append(dangling,
					fmt.Sprintf("%s.%s -> %s", rel.SourceTable, rel.SourceColumn, rel.TargetTable))
			}
		}
	}

	for _, qualified := range sortedKeys(cat.Tables) {
		tbl := cat.Tables[qualified]
		if len(tbl.Relationships) == 0 && !referenced[strings.ToLower(tbl.Name)] {
			isolated = append(isolated, tbl.Name)
		}
		if tbl.BusinessName == "" {
			unnamed = append(unnamed, tbl.Name)
		}
		for _, col := range tbl.Columns {
			if col.Description == "" && col.BusinessName == "" {
				undescribed = append(undescribed, fmt.Sprintf("%s.%s", tbl.Name, col.Name))
			}
		}
	}
	sort.Strings(dangling)

	if len(dangling) > 0 {
		f.Errors = append(f.Errors,
			fmt.Sprintf("Relationships referencing missing tables: %s", strings.Join(dangling, ", ")))
	}
	if len(isolated) > 0 {
		f.Warnings = append(f.Warnings,
			fmt.Sprintf("Tables without relationships: %s", strings.Join(isolated, ", ")))
	}
	if len(unnamed) > 0 {
		f.Suggestions = append(f.Suggestions,
			fmt.Sprintf("Consider adding business names for: %s", strings.Join(unnamed, ", ")))
	}
	if n := len(undescribed); n > 0 {
		if n > maxReportedColumns {
			undescribed = undescribed[:maxReportedColumns]
		}
		f.Suggestions = append(f.Suggestions,
			fmt.Sprintf("Consider adding descriptions for columns: %s", strings.Join(undescribed, ", ")))
	}

	return f
}

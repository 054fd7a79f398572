package catalog

import (
	"sort"
	"strings"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// FindRelatedTables walks the relationship graph breadth-first from a
// starting table, treating edges as undirected, up to maxDepth hops.
// Each frontier is processed in sorted order, so repeated calls over
// an unchanged catalog return the same tables in the same order.
func FindRelatedTables(cat *models.Catalog, tableName string, maxDepth int) []string {
	start := cat.GetTable(tableName)
	if start == nil {
		return nil
	}

	visited := map[string]bool{strings.ToLower(start.Name): true}
	frontier := []string{start.Name}
	var related []string

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		nextSet := make(map[string]string)

		for _, current := range frontier {
			for _, neighbor := range neighbors(cat, current) {
				key := strings.ToLower(neighbor)
				if !visited[key] {
					nextSet[key] = neighbor
				}
			}
		}

		next := make([]string, 0, len(nextSet))
		for _, name := range nextSet {
			next = append(next, name)
		}
		sort.Strings(next)

		for _, name := range next {
			visited[strings.ToLower(name)] = true
			related = append(related, name)
		}
		frontier = next
	}

	return related
}

// neighbors collects every table sharing an edge with the given one,
// scanning all tables since edges are stored on their source.
func neighbors(cat *models.Catalog, tableName string) []string {
	var out []string
	for _, tbl := range cat.Tables {
		for _, rel := range tbl.Relationships {
			if strings.EqualFold(rel.SourceTable, tableName) && !strings.EqualFold(rel.TargetTable, tableName) {
				out = append(out, rel.TargetTable)
			}
			if strings.EqualFold(rel.TargetTable, tableName) && !strings.EqualFold(rel.SourceTable, tableName) {
				out = append(out, rel.SourceTable)
			}
		}
	}
	return out
}

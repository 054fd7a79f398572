package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/genbi-ai/genbi-engine/pkg/apperrors"
	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// minTokenLength keeps short stopwords like "by" or "of" from
// matching inside every identifier.
const minTokenLength = 3

// SuggestTables returns bare names of tables whose name, business
// name, or column names overlap the question's tokens (substring
// match in either direction), sorted for stable downstream rendering.
// A question naming a business metric also pulls in the tables the
// metric's expression reads from.
func SuggestTables(cat *models.Catalog, question string) []string {
	lower := strings.ToLower(question)
	var tokens []string
	for _, w := range strings.Fields(lower) {
		if len(w) >= minTokenLength {
			tokens = append(tokens, w)
		}
	}

	seen := make(map[string]bool)
	var suggestions []string
	add := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			suggestions = append(suggestions, name)
		}
	}

	for _, tbl := range cat.Tables {
		if overlaps(lower, tokens, tbl.Name) || overlaps(lower, tokens, tbl.BusinessName) {
			add(tbl.Name)
			continue
		}
		for _, col := range tbl.Columns {
			if overlaps(lower, tokens, col.Name) || overlaps(lower, tokens, col.BusinessName) {
				add(tbl.Name)
				break
			}
		}
	}

	for name, expr := range cat.BusinessMetrics {
		if !overlaps(lower, tokens, name) {
			continue
		}
		exprLower := strings.ToLower(expr)
		for _, tbl := range cat.Tables {
			if strings.Contains(exprLower, strings.ToLower(tbl.Name)) {
				add(tbl.Name)
			}
		}
	}

	sort.Strings(suggestions)
	return suggestions
}

// overlaps reports whether an identifier appears in the question or
// any question token appears in the identifier.
func overlaps(question string, tokens []string, identifier string) bool {
	if identifier == "" {
		return false
	}
	ident := strings.ToLower(identifier)
	if strings.Contains(question, ident) {
		return true
	}
	for _, tok := range tokens {
		if strings.Contains(ident, tok) {
			return true
		}
	}
	return false
}

// ResolveContext selects the catalog subset relevant to a question,
// expands it by relatedDepth relationship hops, and renders it as a
// bounded natural-language description. An empty catalog is a hard
// error: nothing downstream can work without schema context.
func ResolveContext(cat *models.Catalog, question, userContext string, relatedDepth int) (string, error) {
	if cat == nil || cat.TableCount() == 0 {
		return "", apperrors.ErrCatalogNotBuilt
	}

	selected := SuggestTables(cat, question)
	if len(selected) > 0 && relatedDepth > 0 {
		seen := make(map[string]bool, len(selected))
		for _, name := range selected {
			seen[strings.ToLower(name)] = true
		}
		for _, name := range selected {
			for _, related := range FindRelatedTables(cat, name, relatedDepth) {
				if !seen[strings.ToLower(related)] {
					seen[strings.ToLower(related)] = true
					selected = append(selected, related)
				}
			}
		}
		sort.Strings(selected)
	}

	// Nothing matched: describe the whole catalog rather than guess.
	rendered := RenderContext(cat, selected)

	return AppendUserContext(rendered, userContext), nil
}

// AppendUserContext attaches free-form caller-supplied context to a
// rendered schema description.
func AppendUserContext(rendered, userContext string) string {
	uc := strings.TrimSpace(userContext)
	if uc == "" {
		return rendered
	}
	return rendered + "\n=== ADDITIONAL USER CONTEXT ===\n" + uc + "\n"
}

// RenderContext renders the named tables (all tables when names is
// empty) plus the business layer as LLM-ready text. Map iteration is
// sorted throughout so the output is stable.
func RenderContext(cat *models.Catalog, names []string) string {
	var b strings.Builder

	if len(cat.Glossary) > 0 {
		b.WriteString("=== BUSINESS GLOSSARY ===\n")
		for _, term := range sortedKeys(cat.Glossary) {
			fmt.Fprintf(&b, "%s: %s\n", term, cat.Glossary[term])
		}
		b.WriteString("\n")
	}

	if len(cat.BusinessMetrics) > 0 {
		b.WriteString("=== BUSINESS METRICS ===\n")
		for _, metric := range sortedKeys(cat.BusinessMetrics) {
			fmt.Fprintf(&b, "%s: %s\n", metric, cat.BusinessMetrics[metric])
		}
		b.WriteString("\n")
	}

	b.WriteString("=== DATABASE SCHEMA ===\n")
	for _, tbl := range selectTables(cat, names) {
		fmt.Fprintf(&b, "\nTable: %s\n", tbl.Name)
		if tbl.BusinessName != "" {
			fmt.Fprintf(&b, "Business Name: %s\n", tbl.BusinessName)
		}
		if tbl.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", tbl.Description)
		}

		b.WriteString("Columns:\n")
		for _, col := range tbl.Columns {
			fmt.Fprintf(&b, "  - %s (%s)", col.Name, col.DataType)
			if col.BusinessName != "" {
				fmt.Fprintf(&b, " [Business: %s]", col.BusinessName)
			}
			if col.Description != "" {
				fmt.Fprintf(&b, " - %s", col.Description)
			}
			if col.IsPrimaryKey {
				b.WriteString(" [PRIMARY KEY]")
			}
			if col.IsForeignKey {
				b.WriteString(" [FOREIGN KEY]")
			}
			b.WriteString("\n")
		}

		if len(tbl.Relationships) > 0 {
			b.WriteString("Relationships:\n")
			for _, rel := range tbl.Relationships {
				fmt.Fprintf(&b, "  - %s.%s -> %s.%s (%s)\n",
					rel.SourceTable, rel.SourceColumn,
					rel.TargetTable, rel.TargetColumn, rel.Type)
			}
		}
	}

	if len(cat.CommonJoins) > 0 {
		b.WriteString("\n=== COMMON JOINS ===\n")
		for _, name := range sortedKeys(cat.CommonJoins) {
			fmt.Fprintf(&b, "%s: %s\n", name, cat.CommonJoins[name])
		}
	}

	if len(cat.BusinessRules) > 0 {
		b.WriteString("\n=== BUSINESS RULES ===\n")
		for _, rule := range cat.BusinessRules {
			fmt.Fprintf(&b, "- %s\n", rule)
		}
	}

	return b.String()
}

func selectTables(cat *models.Catalog, names []string) []*models.Table {
	var tables []*models.Table
	if len(names) == 0 {
		for _, qualified := range sortedKeys(cat.Tables) {
			tables = append(tables, cat.Tables[qualified])
		}
		return tables
	}
	for _, name := range names {
		if tbl := cat.GetTable(name); tbl != nil {
			tables = append(tables, tbl)
		}
	}
	return tables
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

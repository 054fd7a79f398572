package models

import (
	"strings"
	"unicode"
)

// semanticPatterns maps a semantic type to the column-name substrings
// that indicate it. Order matters: more specific types first, so a
// column like "email_address" resolves to email rather than address.
var semanticPatterns = []struct {
	semanticType SemanticType
	patterns     []string
}{
	{SemanticEmail, []string{"email", "mail"}},
	{SemanticPhone, []string{"phone", "tel", "mobile", "contact"}},
	{SemanticURL, []string{"url", "link", "website", "web"}},
	{SemanticDatetime, []string{"date", "time", "created", "updated", "modified"}},
	{SemanticIdentifier, []string{"id", "_id", "key", "code"}},
	{SemanticCurrency, []string{"amount", "price", "cost", "value", "total", "sum"}},
	{SemanticQuantity, []string{"count", "qty", "quantity", "num", "number"}},
	{SemanticAddress, []string{"address", "street", "city", "state", "zip"}},
	{SemanticName, []string{"name", "title", "label"}},
	{SemanticDescription, []string{"description", "desc", "comment", "note"}},
	{SemanticStatus, []string{"status", "state", "flag", "active"}},
}

// InferSemanticType guesses a column's business meaning from its name.
// Returns SemanticNone when no pattern matches.
func InferSemanticType(columnName string) SemanticType {
	lower := strings.ToLower(columnName)
	for _, entry := range semanticPatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, pattern) {
				return entry.semanticType
			}
		}
	}
	return SemanticNone
}

// tableSuffixes expands warehouse naming conventions on table names.
var tableSuffixes = []struct{ from, to string }{
	{" Dim", " Dimension"},
	{" Fact", " Facts"},
	{" Master", " Master Data"},
}

// columnSuffixes expands common column-name abbreviations.
var columnSuffixes = []struct{ from, to string }{
	{" Id", " ID"},
	{" Cd", " Code"},
	{" Dt", " Date"},
	{" Amt", " Amount"},
	{" Qty", " Quantity"},
}

// DeriveBusinessName turns a physical table name into a display name:
// snake_case becomes Title Case and warehouse suffixes are expanded,
// so CUSTOMER_DIM becomes "Customer Dimension".
func DeriveBusinessName(tableName string) string {
	name := titleCase(tableName)
	for _, s := range tableSuffixes {
		if strings.HasSuffix(name, s.from) {
			return strings.TrimSuffix(name, s.from) + s.to
		}
	}
	return name
}

// DeriveColumnBusinessName turns a physical column name into a display
// name, expanding abbreviations like order_amt -> "Order Amount".
func DeriveColumnBusinessName(columnName string) string {
	name := titleCase(columnName)
	for _, s := range columnSuffixes {
		if strings.HasSuffix(name, s.from) {
			return strings.TrimSuffix(name, s.from) + s.to
		}
	}
	return name
}

// titleCase converts snake_case to space-separated Title Case.
func titleCase(s string) string {
	words := strings.Split(strings.ToLower(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

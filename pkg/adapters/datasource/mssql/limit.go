package mssql

import (
	"fmt"
	"strconv"
	"strings"
)

// limitQuery bounds a query's row count. Plain SELECTs are wrapped as
// a derived table with an outer TOP; WITH queries instead get TOP
// injected into their outer SELECT, because SQL Server rejects a CTE
// inside a subquery.
func limitQuery(query string, limit int) string {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "WITH") {
		if injected, ok := injectTop(trimmed, limit); ok {
			return injected
		}
		return trimmed
	}
	return fmt.Sprintf("SELECT TOP (%d) * FROM (%s) AS _limited", limit, trimmed)
}

// injectTop rewrites the outer SELECT of a WITH query as
// "SELECT TOP (n)". The outer SELECT is the first SELECT keyword
// outside parentheses and string literals; a DISTINCT or ALL
// qualifier stays ahead of TOP.
func injectTop(query string, limit int) (string, bool) {
	depth := 0
	inString := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case inString:
			if ch == '\'' {
				inString = false
			}
		case ch == '\'':
			inString = true
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case depth == 0 && (ch == 's' || ch == 'S') && keywordAt(query, i, "SELECT"):
			insert := i + len("SELECT")
			rest := strings.TrimLeft(query[insert:], " \t\r\n")
			for _, q := range []string{"DISTINCT", "ALL"} {
				if len(rest) > len(q) && strings.EqualFold(rest[:len(q)], q) && !isWordByte(rest[len(q)]) {
					insert = len(query) - len(rest) + len(q)
					break
				}
			}
			return query[:insert] + " TOP (" + strconv.Itoa(limit) + ")" + query[insert:], true
		}
	}
	return "", false
}

// keywordAt reports whether query[i:] starts the given keyword as a
// whole word.
func keywordAt(query string, i int, keyword string) bool {
	end := i + len(keyword)
	if end > len(query) || !strings.EqualFold(query[i:end], keyword) {
		return false
	}
	if i > 0 && isWordByte(query[i-1]) {
		return false
	}
	return end == len(query) || !isWordByte(query[end])
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

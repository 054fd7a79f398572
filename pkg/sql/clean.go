// Package sql validates, sanitizes, and inspects generated SQL before
// it is allowed anywhere near a database.
package sql

import "strings"

// Clean strips markdown code fences, surrounding whitespace, and
// trailing semicolons from LLM output, leaving bare SQL. Synthesizers
// are told to return raw SQL but wrap it in fences often enough that
// we strip defensively; the semicolon has to go because executors
// embed the query inside a row-limit wrapper.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop a language tag like "sql" on the opening fence line.
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			first := strings.TrimSpace(s[:idx])
			if len(first) <= 10 && !strings.ContainsAny(first, " \t") {
				s = s[idx+1:]
			}
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s
}

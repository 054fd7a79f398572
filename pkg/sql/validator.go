package sql

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// Statement keywords that mutate state or escalate privileges. Matched
// as standalone tokens so column names like "updated_at" pass.
var blockedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER",
	"TRUNCATE", "MERGE", "COPY", "GRANT", "REVOKE",
	"EXEC", "EXECUTE", "CALL",
}

var blockedKeywordPattern = regexp.MustCompile(
	`(?i)\b(` + strings.Join(blockedKeywords, "|") + `)\b`)

// System-catalog references worth flagging but not blocking: reads of
// metadata tables are legal yet rarely what a business question wants.
var systemCatalogPattern = regexp.MustCompile(
	`(?i)\b(pg_catalog\.|pg_shadow|pg_authid|information_schema\.|sys\.|sysobjects|syscolumns)`)

// Result is the outcome of validating one query.
type Result struct {
	Valid    bool
	Reason   string
	Warnings []string
}

// Validate decides whether a generated query is safe to execute. Only
// a single read-only statement passes; injection fingerprints and
// system-catalog reads are surfaced as warnings without blocking.
func Validate(query string) Result {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Result{Reason: "empty SQL query"}
	}

	normalized := stripTrailingSemicolon(trimmed)
	if hasSemicolonOutsideStrings(normalized) {
		return Result{Reason: "multiple SQL statements are not allowed"}
	}

	upper := strings.ToUpper(normalized)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return Result{Reason: "only SELECT queries are allowed"}
	}

	if m := blockedKeywordPattern.FindString(normalized); m != "" {
		return Result{Reason: fmt.Sprintf("query contains prohibited keyword: %s", strings.ToUpper(m))}
	}

	var warnings []string
	if isSQLi, fingerprint := libinjection.IsSQLi(normalized); isSQLi {
		warnings = append(warnings,
			fmt.Sprintf("injection fingerprint detected: %s", string(fingerprint)))
	}
	if m := systemCatalogPattern.FindString(normalized); m != "" {
		warnings = append(warnings,
			fmt.Sprintf("query reads system catalog: %s", strings.ToLower(m)))
	}

	return Result{Valid: true, Warnings: warnings}
}

// stripTrailingSemicolon removes one trailing semicolon plus the
// whitespace around it.
func stripTrailingSemicolon(query string) string {
	query = strings.TrimRight(query, " \t\n\r")
	if strings.HasSuffix(query, ";") {
		query = strings.TrimRight(strings.TrimSuffix(query, ";"), " \t\n\r")
	}
	return query
}

// hasSemicolonOutsideStrings reports whether any semicolon remains
// outside single- or double-quoted literals. With the trailing
// semicolon already stripped, any hit means a second statement.
func hasSemicolonOutsideStrings(query string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prev := rune(0)

	for _, ch := range query {
		switch state {
		case stateNormal:
			switch ch {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// A doubled quote ('') exits and immediately re-enters,
			// which keeps the scan correct.
			if ch == '\'' && prev != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if ch == '"' && prev != '\\' {
				state = stateNormal
			}
		}
		prev = ch
	}

	return false
}

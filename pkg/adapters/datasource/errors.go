package datasource

import "fmt"

// ErrorKind buckets executor failures for repair-prompt routing.
type ErrorKind string

const (
	KindObjectNotFound    ErrorKind = "object-not-found"
	KindInvalidIdentifier ErrorKind = "invalid-identifier"
	KindSyntaxError       ErrorKind = "syntax-error"
	KindConnection        ErrorKind = "connection-error"
	KindGeneric           ErrorKind = "generic"
)

// ExecError is a classified execution failure. Message carries the
// database's own text verbatim so the repair prompt sees exactly what
// the database said.
type ExecError struct {
	Kind    ErrorKind
	Message string
	Code    string // driver-native code, e.g. SQLSTATE or MSSQL number
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Friendly renders the failure for end users without driver jargon.
func (e *ExecError) Friendly() string {
	switch e.Kind {
	case KindObjectNotFound:
		return "The query references a table that does not exist."
	case KindInvalidIdentifier:
		return "The query references a column that does not exist."
	case KindSyntaxError:
		return "The generated query has a syntax error."
	case KindConnection:
		return "The database is currently unreachable."
	default:
		return "The query failed to execute."
	}
}

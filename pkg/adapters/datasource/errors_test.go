package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecErrorFriendly(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindObjectNotFound, "The query references a table that does not exist."},
		{KindInvalidIdentifier, "The query references a column that does not exist."},
		{KindSyntaxError, "The generated query has a syntax error."},
		{KindConnection, "The database is currently unreachable."},
		{KindGeneric, "The query failed to execute."},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := &ExecError{Kind: tt.kind, Message: "raw"}
			assert.Equal(t, tt.want, e.Friendly())
		})
	}
}

func TestExecErrorKeepsDatabaseText(t *testing.T) {
	e := &ExecError{Kind: KindObjectNotFound, Message: `relation "orders" does not exist`, Code: "42P01"}
	assert.Contains(t, e.Error(), `relation "orders" does not exist`)
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, MaxRowLimit, EffectiveLimit(0))
	assert.Equal(t, MaxRowLimit, EffectiveLimit(-5))
	assert.Equal(t, MaxRowLimit, EffectiveLimit(5000))
	assert.Equal(t, 100, EffectiveLimit(100))
}

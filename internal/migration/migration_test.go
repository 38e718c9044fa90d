package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunner_StatementsAreIdempotent(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.0.0", r.Version())

	stmts := r.Statements()
	assert.Len(t, stmts, 2)
	for _, s := range stmts {
		assert.Contains(t, s, "IF NOT EXISTS")
	}
	assert.True(t, strings.Contains(stmts[0], "group_name"))
}

package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SuffixedWithAccountID(t *testing.T) {
	tok := New("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.True(t, strings.HasSuffix(tok, "01ARZ3NDEKTSV4RRFFQ69G5FAV"))
	assert.Greater(t, len(tok), 26+30, "random part must not be trivial")
}

func TestNew_UniquePerCall(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok := New("a1")
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}

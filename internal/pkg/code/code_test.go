package code

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AlwaysSixDigitsInRange(t *testing.T) {
	for i := 0; i < 2000; i++ {
		c, err := New()
		require.NoError(t, err)
		require.Len(t, c, 6)
		n, err := strconv.Atoi(c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestNew_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		c, err := New()
		require.NoError(t, err)
		seen[c] = true
	}
	assert.Greater(t, len(seen), 1)
}

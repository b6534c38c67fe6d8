package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextString(t *testing.T) {
	require.NoError(t, Init(1, 1))

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id, err := NextString()
		require.NoError(t, err)
		require.NotEmpty(t, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

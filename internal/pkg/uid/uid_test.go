package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	g := NewUUID()

	a, b := g.Generate(), g.Generate()

	assert.True(t, IsUUID(a))
	assert.NotEqual(t, a, b)
	assert.False(t, IsUUID("not-a-uuid"))
}

func TestSnowflake_Generate(t *testing.T) {
	g, err := NewSnowflakeWithNode(7)
	require.NoError(t, err)

	prev := g.Generate()
	for range 100 {
		next := g.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewSnowflakeWithNode_OutOfRange(t *testing.T) {
	_, err := NewSnowflakeWithNode(4096)
	assert.Error(t, err)
}

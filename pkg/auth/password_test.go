package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("changeme123")
	require.NoError(t, err)
	assert.NotEqual(t, "changeme123", hash)

	assert.True(t, CheckPasswordHash("changeme123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

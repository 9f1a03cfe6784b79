package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)
	assert.True(t, CompareHashAndPassword(digest, "secret1"))
	assert.False(t, CompareHashAndPassword(digest, "secret2"))
}

func TestHashPasswordSelfSalting(t *testing.T) {
	first, err := HashPassword("secret1")
	require.NoError(t, err)
	second, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, CompareHashAndPassword(first, "secret1"))
	assert.True(t, CompareHashAndPassword(second, "secret1"))
}

package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret_CompareSecretRoundTrip(t *testing.T) {
	hash, err := HashSecret("sup3r-secret-value")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3r-secret-value", hash)

	match, err := CompareSecret(hash, "sup3r-secret-value")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CompareSecret(hash, "wrong-value")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashSecret_UniqueSaltPerCall(t *testing.T) {
	h1, err := HashSecret("same-input")
	require.NoError(t, err)
	h2, err := HashSecret("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

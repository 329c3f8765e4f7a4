package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewFakeCache()

	_, err := c.Get(ctx, TokenKey("jti-1"))
	require.Error(t, err)
	assert.True(t, IsMiss(err))

	require.NoError(t, c.SetWithTTL(ctx, TokenKey("jti-1"), []byte("payload"), time.Minute))
	got, err := c.Get(ctx, TokenKey("jti-1"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	require.NoError(t, c.Delete(ctx, TokenKey("jti-1")))
	_, err = c.Get(ctx, TokenKey("jti-1"))
	assert.True(t, IsMiss(err))
}

func TestFakeCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewFakeCache()

	require.NoError(t, c.SetWithTTL(ctx, TokenKey("jti-2"), []byte("payload"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, err := c.Get(ctx, TokenKey("jti-2"))
	assert.True(t, IsMiss(err))
}

func TestFakeCache_InvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewFakeCache()

	require.NoError(t, c.SetWithTTL(ctx, ClientIndexKey("acme", "jti-1"), []byte("jti-1"), time.Minute))
	require.NoError(t, c.SetWithTTL(ctx, ClientIndexKey("acme", "jti-2"), []byte("jti-2"), time.Minute))
	require.NoError(t, c.SetWithTTL(ctx, ClientIndexKey("other", "jti-3"), []byte("jti-3"), time.Minute))

	keys, err := c.ScanPrefix(ctx, ClientIndexPrefix("acme"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, c.InvalidatePrefix(ctx, ClientIndexPrefix("acme")))

	keys, err = c.ScanPrefix(ctx, ClientIndexPrefix("acme"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = c.ScanPrefix(ctx, ClientIndexPrefix("other"))
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestSealer_SealOpenRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	sealer, err := NewSealer(key)
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("signing-key-material"))
	require.NoError(t, err)
	assert.NotEqual(t, "signing-key-material", string(sealed))

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "signing-key-material", string(opened))
}

func TestSealer_OpenRejectsTamperedCiphertext(t *testing.T) {
	key := make([]byte, 32)
	sealer, err := NewSealer(key)
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xFF

	_, err = sealer.Open(sealed)
	assert.Error(t, err)
}

package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = b
	}
	return k
}

func TestCodec_MintVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	keys := NewKeyRing("v1", testKey(1))
	codec := NewCodec(keys, Config{Issuer: "authgateway", Audience: []string{"payments-backend"}, TTL: time.Minute})

	signed, minted, err := codec.Mint(ctx, "acme-corp", []string{"payments:read"}, false)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	verified, err := codec.Verify(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, minted.ID, verified.ID)
	assert.Equal(t, "acme-corp", verified.Subject)
	assert.True(t, verified.HasPermission("payments:read"))
	assert.False(t, verified.Degraded)
}

func TestCodec_VerifyRejectsTamperedSignature(t *testing.T) {
	ctx := context.Background()
	keys := NewKeyRing("v1", testKey(1))
	codec := NewCodec(keys, Config{Issuer: "authgateway", TTL: time.Minute})

	signed, _, err := codec.Mint(ctx, "acme-corp", nil, false)
	require.NoError(t, err)

	tampered := signed[:len(signed)-1] + "x"
	_, err = codec.Verify(ctx, tampered)
	assert.Error(t, err)
}

func TestCodec_VerifyDuringKeyRotationGraceWindow(t *testing.T) {
	ctx := context.Background()
	keys := NewKeyRing("v1", testKey(1))
	codec := NewCodec(keys, Config{Issuer: "authgateway", TTL: time.Minute})

	signed, _, err := codec.Mint(ctx, "acme-corp", nil, false)
	require.NoError(t, err)

	keys.Rotate("v2", testKey(2), time.Hour)

	// Old token, signed under v1, still verifies during grace.
	verified, err := codec.Verify(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", verified.Subject)

	// New tokens are signed under v2.
	signedV2, _, err := codec.Mint(ctx, "acme-corp", nil, false)
	require.NoError(t, err)
	_, err = codec.Verify(ctx, signedV2)
	require.NoError(t, err)
}

func TestCodec_VerifyRejectsKeyAfterGraceWindowExpires(t *testing.T) {
	ctx := context.Background()
	keys := NewKeyRing("v1", testKey(1))
	codec := NewCodec(keys, Config{Issuer: "authgateway", TTL: time.Minute})

	signed, _, err := codec.Mint(ctx, "acme-corp", nil, false)
	require.NoError(t, err)

	keys.Rotate("v2", testKey(2), 0)
	time.Sleep(time.Millisecond)

	_, err = codec.Verify(ctx, signed)
	assert.Error(t, err)
}

func TestCodec_RenewalDue(t *testing.T) {
	ctx := context.Background()
	keys := NewKeyRing("v1", testKey(1))
	codec := NewCodec(keys, Config{TTL: time.Minute, RenewalWindow: 90 * time.Second})

	_, claims, err := codec.Mint(ctx, "acme-corp", nil, false)
	require.NoError(t, err)
	assert.True(t, codec.RenewalDue(claims))
}

func TestCodec_MintMarksDegraded(t *testing.T) {
	ctx := context.Background()
	keys := NewKeyRing("v1", testKey(1))
	codec := NewCodec(keys, Config{TTL: time.Minute})

	_, claims, err := codec.Mint(ctx, "acme-corp", nil, true)
	require.NoError(t, err)
	assert.True(t, claims.Degraded)
}

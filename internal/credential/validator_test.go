package credential

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/secretstore"
)

func seedRecord(t *testing.T, store *secretstore.FakeStore, clientID, secret string, status Status) {
	t.Helper()
	hash, err := HashSecret(secret)
	require.NoError(t, err)
	record := &Record{
		ClientID:    clientID,
		Version:     "v1",
		SecretHash:  hash,
		Status:      status,
		Permissions: []string{"payments:read"},
		CreatedAt:   time.Now(),
	}
	raw, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, store.PutSecret(context.Background(), secretstore.CredentialPath(clientID), raw))
}

func TestValidator_ValidatesActiveCredential(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedRecord(t, store, "acme-corp", "shared-secret", StatusActive)

	v := NewValidator(store, c, ValidatorConfig{})
	record, degraded, err := v.Validate(ctx, "acme-corp", "shared-secret")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, StatusActive, record.Status)
}

func TestValidator_RejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedRecord(t, store, "acme-corp", "shared-secret", StatusActive)

	v := NewValidator(store, c, ValidatorConfig{})
	_, _, err := v.Validate(ctx, "acme-corp", "wrong-secret")
	assert.Error(t, err)
}

func TestValidator_RejectsDisabledCredential(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedRecord(t, store, "acme-corp", "shared-secret", StatusDisabled)

	v := NewValidator(store, c, ValidatorConfig{})
	_, _, err := v.Validate(ctx, "acme-corp", "shared-secret")
	assert.Error(t, err)
}

func TestValidator_DeprecatedRejectedByDefault(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedRecord(t, store, "acme-corp", "shared-secret", StatusDeprecated)

	v := NewValidator(store, c, ValidatorConfig{})
	_, _, err := v.Validate(ctx, "acme-corp", "shared-secret")
	assert.Error(t, err)
}

func TestValidator_DeprecatedAllowedWithGraceFlag(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedRecord(t, store, "acme-corp", "shared-secret", StatusDeprecated)

	v := NewValidator(store, c, ValidatorConfig{AllowDeprecatedGrace: true})
	record, degraded, err := v.Validate(ctx, "acme-corp", "shared-secret")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, StatusDeprecated, record.Status)
}

func TestValidator_FallsBackToCacheWhenStoreUnreachable(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedRecord(t, store, "acme-corp", "shared-secret", StatusActive)

	v := NewValidator(store, c, ValidatorConfig{})
	_, degraded, err := v.Validate(ctx, "acme-corp", "shared-secret")
	require.NoError(t, err)
	require.False(t, degraded)

	store.SetForceFailGet(true)
	record, degraded, err := v.Validate(ctx, "acme-corp", "shared-secret")
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, "acme-corp", record.ClientID)
}

func TestValidator_SealsFallbackRecordAtRest(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedRecord(t, store, "acme-corp", "shared-secret", StatusActive)

	sealer, err := cache.NewSealer([]byte("abcdefghijklmnopqrstuvwxyz012345"))
	require.NoError(t, err)
	v := NewValidator(store, c, ValidatorConfig{Sealer: sealer})

	_, degraded, err := v.Validate(ctx, "acme-corp", "shared-secret")
	require.NoError(t, err)
	require.False(t, degraded)

	sealed, err := c.Get(ctx, fallbackKey("acme-corp"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "shared-secret")
	assert.NotContains(t, string(sealed), "acme-corp")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Contains(t, string(opened), "acme-corp")

	store.SetForceFailGet(true)
	record, degraded, err := v.Validate(ctx, "acme-corp", "shared-secret")
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, "acme-corp", record.ClientID)
}

func TestValidator_UnknownClientWithNoFallback(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()

	v := NewValidator(store, c, ValidatorConfig{})
	_, _, err := v.Validate(ctx, "ghost-corp", "shared-secret")
	assert.Error(t, err)
}

package secretstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()

	_, err := store.GetSecret(ctx, CredentialPath("acme"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	require.NoError(t, store.PutSecret(ctx, CredentialPath("acme"), []byte("super-secret")))

	got, err := store.GetSecret(ctx, CredentialPath("acme"))
	require.NoError(t, err)
	assert.Equal(t, "super-secret", string(got))

	require.NoError(t, store.DeleteSecret(ctx, CredentialPath("acme")))
	_, err = store.GetSecret(ctx, CredentialPath("acme"))
	assert.True(t, IsNotFound(err))
}

func TestFakeStore_ConnectionFailureClassification(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	store.SetForceFailGet(true)

	_, err := store.GetSecret(ctx, CredentialPath("acme"))
	require.Error(t, err)
	assert.True(t, IsConnectionFailure(err))
	assert.False(t, IsNotFound(err))
}

func TestFakeStore_AuthenticationFailure(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	store.SetAuthError(ErrAuthentication)

	err := store.Authenticate(ctx)
	require.Error(t, err)
	assert.True(t, IsAuthenticationFailure(err))
	assert.False(t, store.IsConnected())
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "creds/acme", CredentialPath("acme"))
	assert.Equal(t, "creds/acme/v2", CredentialVersionPath("acme", "v2"))
	assert.Equal(t, "transitions/acme", TransitionPath("acme"))
}

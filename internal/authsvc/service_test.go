package authsvc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/credential"
	"github.com/meridianpay/authgateway/internal/errors"
	"github.com/meridianpay/authgateway/internal/events"
	"github.com/meridianpay/authgateway/internal/secretstore"
	"github.com/meridianpay/authgateway/internal/token"
)

type fakeForwarder struct {
	lastToken string
	resp      *ForwardResponse
}

func (f *fakeForwarder) Forward(ctx context.Context, tok string, req *ForwardRequest) (*ForwardResponse, error) {
	f.lastToken = tok
	return f.resp, nil
}

func seedCredential(t *testing.T, store *secretstore.FakeStore, clientID, version, secret string, status credential.Status) {
	t.Helper()
	hash, err := credential.HashSecret(secret)
	require.NoError(t, err)
	record := credential.Record{
		ClientID:    clientID,
		Version:     version,
		SecretHash:  hash,
		Status:      status,
		Permissions: []string{"payments.write"},
		CreatedAt:   time.Now(),
	}
	raw, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, store.PutSecret(context.Background(), secretstore.CredentialPath(clientID), raw))
}

func newTestService(t *testing.T) (*Service, *secretstore.FakeStore, *cache.FakeCache, *fakeForwarder) {
	t.Helper()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	validator := credential.NewValidator(store, c, credential.ValidatorConfig{})
	keys := token.NewKeyRing("k1", []byte("test-signing-key-0123456789abcd"))
	codec := token.NewCodec(keys, token.Config{Issuer: "gateway", Audience: []string{"backend"}})
	forwarder := &fakeForwarder{resp: &ForwardResponse{StatusCode: 200, Body: []byte(`{"ok":true}`)}}
	svc := NewService(store, c, validator, codec, forwarder, events.NewMultiEmitter(events.NewLogxEmitter()), Config{})
	return svc, store, c, forwarder
}

func TestService_AuthenticateMintsAndCachesToken(t *testing.T) {
	ctx := context.Background()
	svc, store, c, _ := newTestService(t)
	seedCredential(t, store, "acme", "v1", "sekret", credential.StatusActive)

	result, err := svc.Authenticate(ctx, "acme", "sekret", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.False(t, result.Degraded)

	keys, err := c.ScanPrefix(ctx, cache.ClientIndexPrefix("acme"))
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestService_AuthenticateSealsCachedTokenAtRest(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	validator := credential.NewValidator(store, c, credential.ValidatorConfig{})
	keys := token.NewKeyRing("k1", []byte("test-signing-key-0123456789abcd"))
	codec := token.NewCodec(keys, token.Config{Issuer: "gateway", Audience: []string{"backend"}})
	forwarder := &fakeForwarder{resp: &ForwardResponse{StatusCode: 200, Body: []byte(`{"ok":true}`)}}
	sealer, err := cache.NewSealer([]byte("abcdefghijklmnopqrstuvwxyz012345"[:32]))
	require.NoError(t, err)
	svc := NewService(store, c, validator, codec, forwarder, events.NewMultiEmitter(events.NewLogxEmitter()), Config{Sealer: sealer})

	seedCredential(t, store, "acme", "v1", "sekret", credential.StatusActive)
	result, err := svc.Authenticate(ctx, "acme", "sekret", "10.0.0.1")
	require.NoError(t, err)

	jtis, err := c.ScanPrefix(ctx, cache.ClientIndexPrefix("acme"))
	require.NoError(t, err)
	require.Len(t, jtis, 1)
	indexRaw, err := c.Get(ctx, jtis[0])
	require.NoError(t, err)
	sealedEntry, err := c.Get(ctx, cache.TokenKey(string(indexRaw)))
	require.NoError(t, err)
	assert.NotContains(t, string(sealedEntry), result.Token)

	opened, err := sealer.Open(sealedEntry)
	require.NoError(t, err)
	assert.Contains(t, string(opened), result.Token)

	// A second call must still find and reuse the sealed entry.
	second, err := svc.Authenticate(ctx, "acme", "sekret", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, result.Token, second.Token)
}

func TestService_AuthenticateReusesLiveCachedToken(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	seedCredential(t, store, "acme", "v1", "sekret", credential.StatusActive)

	first, err := svc.Authenticate(ctx, "acme", "sekret", "10.0.0.1")
	require.NoError(t, err)

	second, err := svc.Authenticate(ctx, "acme", "sekret", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}

func TestService_AuthenticateRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestService(t)
	seedCredential(t, store, "acme", "v1", "sekret", credential.StatusActive)

	_, err := svc.Authenticate(ctx, "acme", "wrong", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindAuthentication))
}

func TestService_AuthenticateFallsBackToCacheWhenStoreDown(t *testing.T) {
	ctx := context.Background()
	svc, store, c, _ := newTestService(t)
	seedCredential(t, store, "acme", "v1", "sekret", credential.StatusActive)

	// Warm the validator's fallback cache with one successful pass, then
	// evict the cached token so the next call must re-validate rather
	// than short-circuit on a live cache hit.
	_, err := svc.Authenticate(ctx, "acme", "sekret", "10.0.0.1")
	require.NoError(t, err)
	require.NoError(t, c.InvalidatePrefix(ctx, cache.ClientIndexPrefix("acme")))

	store.SetForceFailGet(true)

	result, err := svc.Authenticate(ctx, "acme", "sekret", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.Degraded)
}

func TestService_AuthenticateAndForwardSendsBearerToken(t *testing.T) {
	ctx := context.Background()
	svc, store, _, forwarder := newTestService(t)
	seedCredential(t, store, "acme", "v1", "sekret", credential.StatusActive)

	resp, err := svc.AuthenticateAndForward(ctx, "acme", "sekret", "10.0.0.1", &ForwardRequest{
		Method: "POST",
		Path:   "/api/v1/payments",
		Body:   []byte(`{"amount":10}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, forwarder.lastToken)
}

func TestService_AuthenticateRejectsMissingCredentials(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Authenticate(context.Background(), "", "", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindValidation))
}

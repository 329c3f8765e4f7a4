package rotation

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
	"github.com/meridianpay/authgateway/internal/secretstore"
)

func seedActiveCredential(t *testing.T, store *secretstore.FakeStore, clientID, version string) {
	t.Helper()
	hash, err := credential.HashSecret("original-secret")
	require.NoError(t, err)
	record := credential.Record{
		ClientID:   clientID,
		Version:    version,
		SecretHash: hash,
		Status:     credential.StatusActive,
		CreatedAt:  time.Now(),
	}
	raw, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, store.PutSecret(context.Background(), secretstore.CredentialPath(clientID), raw))
}

func TestStateMachine_FullHappyPathRotation(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedActiveCredential(t, store, "acme", "v1")

	sm := NewStateMachine(store, c)

	record, plaintext, err := sm.Initiate(ctx, "acme", time.Minute, []string{"payments.read"}, false)
	require.NoError(t, err)
	assert.Equal(t, StateInitiated, record.CurrentState)
	assert.NotEmpty(t, plaintext)
	assert.Equal(t, "v1", record.OldVersion)

	record, err = sm.AdvanceToDualActive(ctx, record.RotationID)
	require.NoError(t, err)
	assert.Equal(t, StateDualActive, record.CurrentState)

	raw, err := store.GetSecret(ctx, secretstore.TransitionPath("acme"))
	require.NoError(t, err)
	var tr TransitionRecord
	require.NoError(t, json.Unmarshal(raw, &tr))
	assert.Equal(t, "v1", tr.OldVersion)
	assert.Equal(t, record.NewVersion, tr.NewVersion)

	record, err = sm.AdvanceToOldDeprecated(ctx, record.RotationID)
	require.NoError(t, err)
	assert.Equal(t, StateOldDeprecated, record.CurrentState)

	raw, err = store.GetSecret(ctx, secretstore.CredentialVersionPath("acme", "v1"))
	require.NoError(t, err)
	var oldRecord credential.Record
	require.NoError(t, json.Unmarshal(raw, &oldRecord))
	assert.Equal(t, credential.StatusDeprecated, oldRecord.Status)

	// Cache a stale token for the client so we can confirm NEW_ACTIVE
	// invalidates it.
	require.NoError(t, c.SetWithTTL(ctx, cache.ClientIndexKey("acme", "jti-1"), []byte("x"), time.Minute))

	record, err = sm.AdvanceToNewActive(ctx, record.RotationID)
	require.NoError(t, err)
	assert.Equal(t, StateNewActive, record.CurrentState)
	assert.NotNil(t, record.CompletedAt)

	_, err = store.GetSecret(ctx, secretstore.CredentialVersionPath("acme", "v1"))
	assert.True(t, secretstore.IsNotFound(err))

	_, err = store.GetSecret(ctx, secretstore.TransitionPath("acme"))
	assert.True(t, secretstore.IsNotFound(err))

	keys, err := c.ScanPrefix(ctx, cache.ClientIndexPrefix("acme"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, ok := sm.ActiveRotation("acme")
	assert.False(t, ok)
}

func TestStateMachine_RejectsIllegalTransition(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedActiveCredential(t, store, "acme", "v1")
	sm := NewStateMachine(store, c)

	record, _, err := sm.Initiate(ctx, "acme", time.Minute, nil, false)
	require.NoError(t, err)

	_, err = sm.AdvanceToNewActive(ctx, record.RotationID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInvalidStateTrans))
}

func TestStateMachine_InitiateRejectsConcurrentRotationWithoutForce(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedActiveCredential(t, store, "acme", "v1")
	sm := NewStateMachine(store, c)

	_, _, err := sm.Initiate(ctx, "acme", time.Minute, nil, false)
	require.NoError(t, err)

	_, _, err = sm.Initiate(ctx, "acme", time.Minute, nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindRotationConflict))

	_, _, err = sm.Initiate(ctx, "acme", time.Minute, nil, true)
	assert.NoError(t, err)
}

func TestStateMachine_FailFromDualActiveRestoresOldAsDefault(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedActiveCredential(t, store, "acme", "v1")
	sm := NewStateMachine(store, c)

	record, _, err := sm.Initiate(ctx, "acme", time.Minute, nil, false)
	require.NoError(t, err)
	record, err = sm.AdvanceToDualActive(ctx, record.RotationID)
	require.NoError(t, err)

	record, err = sm.Fail(ctx, record.RotationID, "vendor rejected new secret")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, record.CurrentState)

	raw, err := store.GetSecret(ctx, secretstore.CredentialPath("acme"))
	require.NoError(t, err)
	var liveRecord credential.Record
	require.NoError(t, json.Unmarshal(raw, &liveRecord))
	assert.Equal(t, "v1", liveRecord.Version)

	_, err = store.GetSecret(ctx, secretstore.TransitionPath("acme"))
	assert.True(t, secretstore.IsNotFound(err))

	_, err = store.GetSecret(ctx, secretstore.CredentialVersionPath("acme", record.NewVersion))
	assert.True(t, secretstore.IsNotFound(err))
}

func TestDriver_AutoAdvancesExpiredDualActiveRotation(t *testing.T) {
	ctx := context.Background()
	store := secretstore.NewFakeStore()
	c := cache.NewFakeCache()
	seedActiveCredential(t, store, "acme", "v1")
	sm := NewStateMachine(store, c)

	record, _, err := sm.Initiate(ctx, "acme", MinTransitionPeriod, nil, false)
	require.NoError(t, err)
	_, err = sm.AdvanceToDualActive(ctx, record.RotationID)
	require.NoError(t, err)

	// Move the stored window's end into the past so the driver sees it
	// as expired.
	raw, err := store.GetSecret(ctx, secretstore.TransitionPath("acme"))
	require.NoError(t, err)
	var tr TransitionRecord
	require.NoError(t, json.Unmarshal(raw, &tr))
	tr.EndTime = time.Now().Add(-time.Second)
	raw, err = json.Marshal(tr)
	require.NoError(t, err)
	require.NoError(t, store.PutSecret(ctx, secretstore.TransitionPath("acme"), raw))

	driver := NewDriver(sm, DriverConfig{CheckInterval: time.Hour})
	driver.tick()

	updated, ok := sm.ActiveRotation("acme")
	require.True(t, ok)
	assert.Equal(t, StateOldDeprecated, updated.CurrentState)
}

package verifysvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/authgateway/internal/errors"
	"github.com/meridianpay/authgateway/internal/events"
	"github.com/meridianpay/authgateway/internal/token"
)

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, e events.Event) {
	r.events = append(r.events, e)
}

type fakeRenewer struct {
	newToken string
	err      error
	called   bool
}

func (f *fakeRenewer) Renew(ctx context.Context, expiredToken string) (string, error) {
	f.called = true
	return f.newToken, f.err
}

func newTestCodec(ttl time.Duration) *token.Codec {
	keys := token.NewKeyRing("k1", []byte("test-signing-key-0123456789abcd"))
	return token.NewCodec(keys, token.Config{
		Issuer:    "gateway",
		Audience:  []string{"backend"},
		TTL:       ttl,
		ClockSkew: time.Millisecond,
	})
}

func TestVerifyAndAuthorize_AcceptsValidTokenWithPermission(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(time.Hour)
	signed, _, err := codec.Mint(ctx, "acme", []string{"payments.write"}, false)
	require.NoError(t, err)

	rec := &recordingEmitter{}
	svc := NewService(codec, nil, rec, Config{})

	result, err := svc.VerifyAndAuthorize(ctx, signed, "payments.write", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, result.Forbidden)
	assert.Equal(t, "acme", result.Claims.Subject)
	require.Len(t, rec.events, 1)
	assert.Equal(t, events.TypeTokenVerified, rec.events[0].EventType)
}

func TestVerifyAndAuthorize_RejectsMissingPermission(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(time.Hour)
	signed, _, err := codec.Mint(ctx, "acme", []string{"payments.read"}, false)
	require.NoError(t, err)

	svc := NewService(codec, nil, nil, Config{})

	result, err := svc.VerifyAndAuthorize(ctx, signed, "payments.write", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindAuthorization))
	assert.True(t, result.Forbidden)
}

func TestVerifyAndAuthorize_RejectsMissingToken(t *testing.T) {
	svc := NewService(newTestCodec(time.Hour), nil, nil, Config{})
	_, err := svc.VerifyAndAuthorize(context.Background(), "", "payments.write", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindValidation))
}

func TestVerifyAndAuthorize_RejectsGarbageToken(t *testing.T) {
	svc := NewService(newTestCodec(time.Hour), nil, nil, Config{})
	_, err := svc.VerifyAndAuthorize(context.Background(), "not-a-token", "payments.write", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindAuthentication))
}

func TestVerifyAndAuthorize_RenewsExpiredTokenWhenEnabled(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(time.Millisecond)
	signed, _, err := codec.Mint(ctx, "acme", []string{"payments.write"}, false)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	freshCodec := newTestCodec(time.Hour)
	fresh, _, err := freshCodec.Mint(ctx, "acme", []string{"payments.write"}, false)
	require.NoError(t, err)

	renewer := &fakeRenewer{newToken: fresh}
	rec := &recordingEmitter{}
	svc := NewService(codec, renewer, rec, Config{RenewalEnabled: true})

	result, err := svc.VerifyAndAuthorize(ctx, signed, "payments.write", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, renewer.called)
	assert.True(t, result.Renewed)
	assert.Equal(t, fresh, result.RenewedTokenString)

	var sawRenewed bool
	for _, e := range rec.events {
		if e.EventType == events.TypeTokenRenewed {
			sawRenewed = true
		}
	}
	assert.True(t, sawRenewed)
}

func TestVerifyAndAuthorize_RejectsExpiredTokenWhenRenewalDisabled(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(time.Millisecond)
	signed, _, err := codec.Mint(ctx, "acme", []string{"payments.write"}, false)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	svc := NewService(codec, nil, nil, Config{RenewalEnabled: false})
	_, err = svc.VerifyAndAuthorize(ctx, signed, "payments.write", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindAuthentication))
}

func TestVerifyAndAuthorize_FailsClosedWhenRenewalFails(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(time.Millisecond)
	signed, _, err := codec.Mint(ctx, "acme", []string{"payments.write"}, false)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	renewer := &fakeRenewer{err: errors.New(errors.KindDependencyUnavail, "gateway unreachable")}
	svc := NewService(codec, renewer, nil, Config{RenewalEnabled: true})

	_, err = svc.VerifyAndAuthorize(ctx, signed, "payments.write", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, renewer.called)
	assert.True(t, errors.Is(err, errors.KindAuthentication))
}

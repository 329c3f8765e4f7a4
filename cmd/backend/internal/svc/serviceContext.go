// Code scaffolded in the goctl layout. Safe to edit.
package svc

import (
	"time"

	"github.com/meridianpay/authgateway/cmd/backend/internal/config"
	"github.com/meridianpay/authgateway/cmd/backend/internal/renewer"
	"github.com/meridianpay/authgateway/internal/events"
	"github.com/meridianpay/authgateway/internal/token"
	"github.com/meridianpay/authgateway/internal/verifysvc"
)

// ServiceContext wires the backend verification service's one
// collaborator graph: a token codec sharing the gateway's signing key,
// and a verifysvc.Service configured to call back to the gateway for
// renewal when a presented token has expired within its grace window.
type ServiceContext struct {
	Config config.Config

	Codec   *token.Codec
	Verify  *verifysvc.Service
}

func NewServiceContext(c config.Config) *ServiceContext {
	keys := c.Token.ToKeyRing()
	codec := token.NewCodec(keys, c.Token.ToCodecConfig())

	timeout := time.Duration(c.Gateway.TimeoutMs) * time.Millisecond
	r := renewer.NewHTTPRenewer(c.Gateway.BaseURL, timeout)
	emitter := events.NewMultiEmitter(events.NewLogxEmitter())

	verify := verifysvc.NewService(codec, r, emitter, verifysvc.Config{
		RenewalEnabled: c.Token.RenewalEnabled,
	})

	return &ServiceContext{
		Config: c,
		Codec:  codec,
		Verify: verify,
	}
}

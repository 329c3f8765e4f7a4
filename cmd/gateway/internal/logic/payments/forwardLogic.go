// Code scaffolded in the goctl layout. Safe to edit.
package payments

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/internal/authsvc"
	"github.com/meridianpay/authgateway/internal/errors"
)

type ForwardLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewForwardLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ForwardLogic {
	return &ForwardLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Forward authenticates clientID/clientSecret then relays body/method/
// path to the backend, the same two vendor headers also accepted on
// business endpoints (spec §6).
func (l *ForwardLogic) Forward(clientID, clientSecret, sourceAddr, method, path string, body []byte) (*authsvc.ForwardResponse, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New(errors.KindValidation, "missing client credentials")
	}

	return l.svcCtx.Auth.AuthenticateAndForward(l.ctx, clientID, clientSecret, sourceAddr, &authsvc.ForwardRequest{
		Method: method,
		Path:   path,
		Body:   body,
	})
}

// Code scaffolded in the goctl layout. Safe to edit.
package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/types"
	"github.com/meridianpay/authgateway/internal/errors"
)

type TokenLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTokenLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TokenLogic {
	return &TokenLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Token implements spec §4.5 end to end, modulo the forwarding step —
// this endpoint is the token-only half of the algorithm used directly by
// vendors that want a token without a business call attached.
func (l *TokenLogic) Token(clientID, clientSecret, sourceAddr string) (*types.TokenResponse, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New(errors.KindValidation, "missing client credentials")
	}

	result, err := l.svcCtx.Auth.Authenticate(l.ctx, clientID, clientSecret, sourceAddr)
	if err != nil {
		return nil, err
	}

	return &types.TokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Unix(),
		TokenType: "Bearer",
	}, nil
}

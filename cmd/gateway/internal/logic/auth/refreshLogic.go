// Code scaffolded in the goctl layout. Safe to edit.
package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/types"
	"github.com/meridianpay/authgateway/internal/errors"
)

type RefreshLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefreshLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefreshLogic {
	return &RefreshLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Refresh implements the gateway-side half of spec §4.6 step 3: a
// backend (via internal/renewer.HTTPRenewer) or a vendor presents a
// token that no longer verifies on expiry alone; if it is still within
// the configured grace window, mint a fresh one for the same client.
func (l *RefreshLogic) Refresh(req *types.RefreshRequest, sourceAddr string) (*types.TokenResponse, error) {
	claims, err := l.svcCtx.Codec.VerifyIgnoringExpiry(l.ctx, req.Token)
	if err != nil {
		return nil, errors.Wrap(errors.KindAuthentication, "invalid token", err)
	}
	if !l.svcCtx.Codec.WithinRenewalGrace(claims) {
		return nil, errors.New(errors.KindAuthentication, "token outside renewal grace window")
	}

	result, err := l.svcCtx.Auth.Refresh(l.ctx, claims.Subject, sourceAddr)
	if err != nil {
		return nil, err
	}

	return &types.TokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Unix(),
		TokenType: "Bearer",
	}, nil
}

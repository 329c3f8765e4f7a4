// Code scaffolded in the goctl layout. Safe to edit.
package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/types"
)

type ValidateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewValidateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ValidateLogic {
	return &ValidateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Validate reports whether req.Token currently verifies (spec §6:
// "body: token string -> boolean"), never surfacing an error for an
// invalid token — invalid just means valid=false.
func (l *ValidateLogic) Validate(req *types.ValidateRequest) (*types.ValidateResponse, error) {
	_, err := l.svcCtx.Codec.Verify(l.ctx, req.Token)
	return &types.ValidateResponse{Valid: err == nil}, nil
}

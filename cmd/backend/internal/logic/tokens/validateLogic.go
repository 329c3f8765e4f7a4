// Code scaffolded in the goctl layout. Safe to edit.
package tokens

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/cmd/backend/internal/svc"
	"github.com/meridianpay/authgateway/cmd/backend/internal/types"
	"github.com/meridianpay/authgateway/internal/errors"
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

// Validate implements POST /internal/v1/tokens/validate (spec §4.6, §6):
// verify the presented token and, if valid, that it carries
// requiredPermission. A verify failure never surfaces as a transport
// error here — the wire contract reports validity as a field in a 200
// response, not as an HTTP error status.
func (l *ValidateLogic) Validate(req *types.TokenCheckRequest, sourceAddr string) (*types.TokenCheckResponse, error) {
	result, err := l.svcCtx.Verify.VerifyAndAuthorize(l.ctx, req.TokenString, req.RequiredPermission, sourceAddr)
	if err != nil {
		return &types.TokenCheckResponse{
			IsValid:      false,
			IsExpired:    result != nil && result.Expired,
			IsForbidden:  result != nil && result.Forbidden,
			ErrorMessage: errors.MessageOf(err),
		}, nil
	}

	return &types.TokenCheckResponse{
		IsValid:            true,
		IsRenewed:          result.Renewed,
		RenewedTokenString: result.RenewedTokenString,
	}, nil
}

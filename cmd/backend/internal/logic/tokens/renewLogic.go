// Code scaffolded in the goctl layout. Safe to edit.
package tokens

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/cmd/backend/internal/svc"
	"github.com/meridianpay/authgateway/cmd/backend/internal/types"
)

type RenewLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRenewLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RenewLogic {
	return &RenewLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Renew implements POST /internal/v1/tokens/renew (spec §4.6, §6): a
// thin alias over the same verify-then-maybe-renew path validate uses,
// without a required permission to enforce. A backend that already
// knows a token is expired calls this directly instead of re-deriving
// the expiry condition itself.
func (l *RenewLogic) Renew(req *types.TokenCheckRequest, sourceAddr string) (*types.TokenCheckResponse, error) {
	logic := &ValidateLogic{Logger: l.Logger, ctx: l.ctx, svcCtx: l.svcCtx}
	return logic.Validate(&types.TokenCheckRequest{TokenString: req.TokenString}, sourceAddr)
}

// Code scaffolded in the goctl layout. Safe to edit.
package auth

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/logic/auth"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/types"
)

// ValidateHandler implements POST /api/v1/auth/validate (spec §6).
func ValidateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ValidateRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewValidateLogic(r.Context(), svcCtx)
		resp, err := l.Validate(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

// Code scaffolded in the goctl layout. Safe to edit.
package tokens

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/meridianpay/authgateway/cmd/backend/internal/logic/tokens"
	"github.com/meridianpay/authgateway/cmd/backend/internal/svc"
	"github.com/meridianpay/authgateway/cmd/backend/internal/types"
)

// ValidateHandler implements POST /internal/v1/tokens/validate (spec §6).
func ValidateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TokenCheckRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := tokens.NewValidateLogic(r.Context(), svcCtx)
		resp, err := l.Validate(&req, r.RemoteAddr)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

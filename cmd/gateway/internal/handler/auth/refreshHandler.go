// Code scaffolded in the goctl layout. Safe to edit.
package auth

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/logic/auth"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/types"
)

// RefreshHandler implements POST /api/v1/auth/refresh (spec §6), also
// the gateway-side target of the backend's renewal call (spec §4.6
// step 3, see cmd/backend/internal/renewer).
func RefreshHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RefreshRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := auth.NewRefreshLogic(r.Context(), svcCtx)
		resp, err := l.Refresh(&req, r.RemoteAddr)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

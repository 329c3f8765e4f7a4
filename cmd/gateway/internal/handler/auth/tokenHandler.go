// Code scaffolded in the goctl layout. Safe to edit.
package auth

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/logic/auth"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/types"
)

// TokenHandler implements POST /api/v1/auth/token (spec §6): client_id
// and client_secret arrive as the X-Client-ID/X-Client-Secret headers,
// or as the JSON body's fields when a header is absent.
func TokenHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := r.Header.Get("X-Client-ID")
		clientSecret := r.Header.Get("X-Client-Secret")
		if clientID == "" || clientSecret == "" {
			var req types.TokenRequest
			if err := httpx.Parse(r, &req); err != nil {
				httpx.ErrorCtx(r.Context(), w, err)
				return
			}
			if clientID == "" {
				clientID = req.ClientID
			}
			if clientSecret == "" {
				clientSecret = req.ClientSecret
			}
		}

		l := auth.NewTokenLogic(r.Context(), svcCtx)
		resp, err := l.Token(clientID, clientSecret, r.RemoteAddr)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

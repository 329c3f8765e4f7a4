// Code scaffolded in the goctl layout. Safe to edit.
package payments

import (
	"io"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/logic/payments"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
)

// ForwardHandler implements POST /api/v1/payments (spec §6): the
// business payload is opaque to the gateway, which only authenticates
// the caller and relays the request body/headers verbatim.
func ForwardHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		clientID := r.Header.Get("X-Client-ID")
		clientSecret := r.Header.Get("X-Client-Secret")

		l := payments.NewForwardLogic(r.Context(), svcCtx)
		resp, err := l.Forward(clientID, clientSecret, r.RemoteAddr, r.Method, r.URL.Path, body)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(resp.Body)
	}
}

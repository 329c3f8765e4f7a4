// Code scaffolded in the goctl layout. Safe to edit.
package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/handler/auth"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/handler/payments"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/internal/correlation"
)

// RegisterHandlers wires every route spec §6 fixes for the vendor-facing
// gateway onto server, each behind correlation.Middleware so a request's
// X-Correlation-ID (or one generated for it) is available to logging,
// event records and the error encoder for its whole lifetime.
func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/auth/token",
				Handler: correlation.Middleware(auth.TokenHandler(serverCtx)),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/auth/validate",
				Handler: correlation.Middleware(auth.ValidateHandler(serverCtx)),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/auth/refresh",
				Handler: correlation.Middleware(auth.RefreshHandler(serverCtx)),
			},
		},
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/payments",
				Handler: correlation.Middleware(payments.ForwardHandler(serverCtx)),
			},
		},
	)
}

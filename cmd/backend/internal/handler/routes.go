// Code scaffolded in the goctl layout. Safe to edit.
package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/meridianpay/authgateway/cmd/backend/internal/handler/tokens"
	"github.com/meridianpay/authgateway/cmd/backend/internal/svc"
	"github.com/meridianpay/authgateway/internal/correlation"
)

// RegisterHandlers wires the backend-facing routes spec §6 fixes.
func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/internal/v1/tokens/validate",
				Handler: correlation.Middleware(tokens.ValidateHandler(serverCtx)),
			},
			{
				Method:  http.MethodPost,
				Path:    "/internal/v1/tokens/renew",
				Handler: correlation.Middleware(tokens.RenewHandler(serverCtx)),
			},
		},
	)
}

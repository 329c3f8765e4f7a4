// Package wireerr registers the gateway/backend's go-zero error encoder,
// turning any *errors.Error crossing an HTTP handler into the wire body
// spec §6 fixes: {errorCode, message, requestId, timestamp}. Grounded on
// go-zero's httpx.SetErrorHandlerCtx idiom (the framework's own hook for
// this, used instead of hand-rolling response writing in every handler
// the way the teacher's scaffolded handlers call httpx.ErrorCtx).
package wireerr

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/meridianpay/authgateway/internal/correlation"
	"github.com/meridianpay/authgateway/internal/errors"
)

// Body is the wire-facing error shape fixed by spec §6.
type Body struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	Timestamp int64  `json:"timestamp"`
}

// Register installs the handler go-zero calls whenever a handler
// returns a non-nil error to httpx.ErrorCtx. Call once at process
// startup, before the REST server starts accepting connections.
func Register() {
	httpx.SetErrorHandlerCtx(func(ctx context.Context, err error) (int, interface{}) {
		kind := errors.KindOf(err)

		requestID := correlation.FromContext(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		return errors.HTTPStatus(kind), Body{
			ErrorCode: string(kind),
			Message:   errors.MessageOf(err),
			RequestID: requestID,
			Timestamp: time.Now().Unix(),
		}
	})
}

// Package correlation propagates the X-Correlation-ID a caller supplies
// (or the gateway generates) from the external request through to
// backend verification calls and event-sink entries, so one vendor
// request can be traced end to end across both services (spec §4.5
// supplemented feature; the teacher has no cross-service correlation
// of its own — go-zero's own request-scoped logx fields cover only a
// single service).
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey struct{}

// HeaderName is the header callers may supply and the gateway always
// forwards downstream.
const HeaderName = "X-Correlation-ID"

// WithID returns a context carrying id for downstream propagation.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation ID carried by ctx, or "" if none
// was set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// EnsureID returns the correlation ID in ctx, generating and attaching
// a new one if none is present.
func EnsureID(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithID(ctx, id), id
}

// Middleware reads HeaderName off the inbound request, falling back to
// a generated ID, attaches it to the request context and echoes it back
// on the response, then calls next. Both cmd/gateway and cmd/backend
// install it ahead of every handler (shape grounded on the teacher's
// RequiredAuthMiddleware.Handle: a func(http.HandlerFunc) http.HandlerFunc
// wrapper, generalized here from bearer-token checking to ID propagation).
func Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderName)
		ctx := r.Context()
		if id == "" {
			ctx, id = EnsureID(ctx)
		} else {
			ctx = WithID(ctx, id)
		}
		w.Header().Set(HeaderName, id)
		next(w, r.WithContext(ctx))
	}
}

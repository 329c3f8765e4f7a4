package authsvc

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/zeromicro/go-zero/core/httpc"

	"github.com/meridianpay/authgateway/internal/correlation"
	"github.com/meridianpay/authgateway/internal/errors"
)

// ForwardRequest is the inbound vendor request being relayed to the
// backend once authentication succeeds (spec §4.5 step 7: "forward the
// request to the backend with the token in the authorization header").
type ForwardRequest struct {
	Method string
	Path   string
	Body   []byte
}

// ForwardResponse is the backend's reply, relayed back to the vendor
// byte-for-byte.
type ForwardResponse struct {
	StatusCode int
	Body       []byte
}

// Forwarder relays an authenticated request to the backend. Separated
// from Service so tests can substitute a fake without standing up an
// HTTP server.
type Forwarder interface {
	Forward(ctx context.Context, token string, req *ForwardRequest) (*ForwardResponse, error)
}

// HTTPForwarder forwards over HTTPS using go-zero's core/httpc client,
// which already wraps net/http with the framework's own breaker/metrics
// instrumentation — the idiomatic choice over a bare http.Client given
// the rest of this service is built on go-zero. Grounded on the
// teacher's blanket adoption of go-zero packages for every concern that
// has one.
type HTTPForwarder struct {
	baseURL string
}

func NewHTTPForwarder(baseURL string) *HTTPForwarder {
	return &HTTPForwarder{baseURL: baseURL}
}

func (f *HTTPForwarder) Forward(ctx context.Context, token string, req *ForwardRequest) (*ForwardResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, f.baseURL+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "build backend request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	if id := correlation.FromContext(ctx); id != "" {
		httpReq.Header.Set(correlation.HeaderName, id)
	}

	resp, err := httpc.Do(ctx, httpReq)
	if err != nil {
		return nil, errors.Wrap(errors.KindDependencyUnavail, "call backend", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.KindDependencyUnavail, "read backend response", err)
	}

	return &ForwardResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

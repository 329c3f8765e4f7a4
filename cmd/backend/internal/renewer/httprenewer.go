// Package renewer implements verifysvc.Renewer by calling back out to
// the gateway's own /api/v1/auth/refresh endpoint (spec §4.6 step 3):
// the backend never re-mints a token itself, it only knows how to ask
// the gateway to. Grounded on internal/authsvc.HTTPForwarder, the
// pack's one existing go-zero httpc-based outbound HTTP client.
package renewer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/httpc"

	"github.com/meridianpay/authgateway/internal/correlation"
	"github.com/meridianpay/authgateway/internal/errors"
)

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	TokenType string `json:"token_type"`
}

// HTTPRenewer implements verifysvc.Renewer.
type HTTPRenewer struct {
	gatewayBaseURL string
	timeout        time.Duration
}

func NewHTTPRenewer(gatewayBaseURL string, timeout time.Duration) *HTTPRenewer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPRenewer{gatewayBaseURL: gatewayBaseURL, timeout: timeout}
}

// Renew asks the gateway to re-mint expiredToken, returning the new
// token string on success. Any failure — including the gateway
// rejecting the token as outside its renewal grace window — surfaces
// as a single KindAuthentication error, matching spec §4.6 step 3's
// "on failure, fail with unauthorized".
func (r *HTTPRenewer) Renew(ctx context.Context, expiredToken string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(refreshRequest{Token: expiredToken})
	if err != nil {
		return "", errors.Wrap(errors.KindInternal, "encode refresh request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.gatewayBaseURL+"/api/v1/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(errors.KindInternal, "build refresh request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if id := correlation.FromContext(ctx); id != "" {
		httpReq.Header.Set(correlation.HeaderName, id)
	}

	resp, err := httpc.Do(ctx, httpReq)
	if err != nil {
		return "", errors.Wrap(errors.KindAuthentication, "call gateway refresh", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.KindAuthentication, "read gateway refresh response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.KindAuthentication, "token not renewable")
	}

	var out refreshResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errors.Wrap(errors.KindAuthentication, "decode gateway refresh response", err)
	}
	return out.Token, nil
}

// Code scaffolded in the goctl layout. Safe to edit.
package types

// TokenRequest is the body of POST /api/v1/auth/token. client_id and
// client_secret are also accepted as the X-Client-ID/X-Client-Secret
// headers (spec §6); the header form takes precedence when both are
// present.
type TokenRequest struct {
	ClientID     string `json:"client_id,optional"`
	ClientSecret string `json:"client_secret,optional"`
}

// TokenResponse is the vendor-facing shape of a minted token (spec §6).
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	TokenType string `json:"token_type"`
}

// ValidateRequest is the body of POST /api/v1/auth/validate.
type ValidateRequest struct {
	Token string `json:"token"`
}

// ValidateResponse reports whether Token is currently valid.
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// RefreshRequest is the body of POST /api/v1/auth/refresh.
type RefreshRequest struct {
	Token string `json:"token"`
}

package token

import (
	"encoding/json"
	"time"

	"github.com/meridianpay/authgateway/internal/errors"
)

// CacheEntryStatus mirrors the token cache entry's "status" field (spec
// §3: "compact token-metadata record (token string, exp, status)").
type CacheEntryStatus string

const (
	CacheEntryStatusLive     CacheEntryStatus = "LIVE"
	CacheEntryStatusRevoked  CacheEntryStatus = "REVOKED"
)

// CacheEntry is the compact value stored under cache.TokenKey(jti).
type CacheEntry struct {
	ClientID  string           `json:"client_id"`
	JTI       string           `json:"jti"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Status    CacheEntryStatus `json:"status"`
	Degraded  bool             `json:"degraded"`
}

// Live reports whether the entry is usable as of now, with skew applied
// as a safety margin before the real expiry (spec §4.5 step 2: "exp >
// now + skew").
func (e *CacheEntry) Live(now time.Time, skew time.Duration) bool {
	return e.Status == CacheEntryStatusLive && e.ExpiresAt.After(now.Add(skew))
}

func MarshalCacheEntry(e *CacheEntry) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "encode token cache entry", err)
	}
	return raw, nil
}

func UnmarshalCacheEntry(raw []byte) (*CacheEntry, error) {
	var e CacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "decode token cache entry", err)
	}
	return &e, nil
}

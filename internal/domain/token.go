package domain

import "time"

// TokenEntry is one cached access token, keyed by appid in the store.
// The JSON shape matches the on-disk cache file contract.
type TokenEntry struct {
	AccessToken string  `json:"access_token"`
	ExpiresAt   float64 `json:"expires_at"`
}

// Valid reports whether the entry holds a usable token at the given instant.
func (e TokenEntry) Valid(now time.Time) bool {
	return e.AccessToken != "" && float64(now.Unix()) < e.ExpiresAt
}

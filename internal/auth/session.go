package auth

import "time"

// Session holds the credentials for one authorized account.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the session carries a usable access token.
//
// A zero expiry means the service issued no lifetime; treat it as usable and
// let the remote reject it if it has in fact lapsed.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(s.ExpiresAt)
}

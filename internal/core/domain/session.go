package domain

import "time"

// Session is the server-side state behind a session cookie. The cookie only
// carries the opaque ID; everything else lives in the session store.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CSRFToken string    `json:"csrf_token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

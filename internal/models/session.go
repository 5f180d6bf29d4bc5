package models

import "time"

// UserSession is a signed-in admin session. The JWT handed to the client carries its ID.
type UserSession struct {
	ID        string     `json:"id"`
	UserID    uint       `json:"user_id"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the session may still authenticate requests at now.
func (s *UserSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

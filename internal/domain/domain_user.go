package domain

import (
	"maps"
	"time"
)

// Identity is the authenticated user as seen by the client.
type Identity struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Clone returns a copy of i with its own metadata map.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Metadata = maps.Clone(i.Metadata)
	return &c
}

// Session is a live authenticated-identity handle.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *Identity `json:"user"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthEvent names a session transition delivered to change listeners.
type AuthEvent string

const (
	AuthEventInitialSession AuthEvent = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthListener receives session transitions. session is nil on sign-out.
type AuthListener func(event AuthEvent, session *Session)

// User 用户领域模型 (backend side: credentials and privilege column)
type User struct {
	ID           string
	Email        string
	Password     string
	IsAdmin      bool
	LastSignInAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity projects the backend user into the client identity.
func (u *User) Identity() *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Metadata:  map[string]any{"provider": "email"},
		CreatedAt: u.CreatedAt,
	}
}

// AuthSession is a server-side session row; deleting it revokes the token.
type AuthSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

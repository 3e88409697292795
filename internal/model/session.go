package model

import "time"

// RefreshToken models an entry in the `sessions` table. Only the
// SHA-256 hash of the token is stored, never the token itself.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA-256 hex digest of the refresh token.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the session was revoked (nil while active).
type RefreshToken struct {
    ID        string
    UserID    string
    TokenHash string
    ExpiresAt time.Time
    RevokedAt *time.Time
    CreatedAt time.Time
}

// Active reports whether the token can still be exchanged at now.
func (t RefreshToken) Active(now time.Time) bool {
    return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// Session is what sign-up, sign-in and refresh hand back to clients.
type Session struct {
    UserID           string     `json:"user_id"`
    AccessToken      string     `json:"access_token"`
    AccessExpiresAt  time.Time  `json:"access_expires_at"`
    RefreshToken     string     `json:"refresh_token,omitempty"`
    RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
}

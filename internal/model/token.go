package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation.  The token handed to the client is never stored as-is;
// only its SHA-256 hex digest lands in the database.
//
// A row is usable only while RevokedAt is null AND (ExpiresAt is null
// OR ExpiresAt is strictly in the future).  Rotation revokes the old
// row and inserts a new one; rows for a deleted user are removed by
// the database's ON DELETE CASCADE.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt *time.Time // refresh_tokens.expires_at (nullable)
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Usable reports whether the token row may still be exchanged at the
// given instant.  A row whose expiry equals now exactly is already
// expired, not valid.
func (t RefreshToken) Usable(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	if t.ExpiresAt != nil && !t.ExpiresAt.After(now) {
		return false
	}
	return true
}

package model

import "time"

// Role names stored in the users.role column and carried in the JWT
// "role" claim.  ADMIN manages companies, stores and users; STAFF is
// the default role assigned at registration.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// ValidRole reports whether the given string is a known role name.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleStaff
}

// User represents a row in the `users` table.  The primary key is an
// immutable UUID generated at registration.  Email matching is
// byte-exact against the stored value; the repository never normalizes
// case.  The password is stored only as a bcrypt hash.
type User struct {
	ID                string    // users.id
	StoreID           *uint64   // users.store_id (nullable)
	Name              string    // users.name
	Email             string    // users.email
	PasswordHash      string    // users.password_hash
	Role              string    // users.role
	IsVerified        bool      // users.is_verified
	VerificationToken *string   // users.verification_token (nullable)
	CreatedAt         time.Time // users.created_at
	UpdatedAt         time.Time // users.updated_at
}

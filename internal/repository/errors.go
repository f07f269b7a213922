// Package repository defines error values shared across repositories.
// These sentinels let handlers and services distinguish failure modes
// without parsing driver errors: for example ErrEmailExists maps to an
// HTTP 409 while a plain sql.ErrNoRows stays a 404/401 depending on
// the call site.
package repository

import "errors"

// ErrEmailExists is returned when inserting a user whose email is
// already taken (unique index violation).
var ErrEmailExists = errors.New("email already exists")

// ErrVerificationToken is returned when a verification token does not
// resolve to a user, either because it never existed or because it was
// already redeemed.  Callers must not distinguish the two cases.
var ErrVerificationToken = errors.New("invalid or expired verification token")

package utils // package utils provides helpers for token creation, verification and hashing

import (
	"crypto/sha256" // SHA-256 hashing for refresh tokens at rest
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel errors for verification outcomes
	"time"          // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for signed tokens
)

// Verification failures are collapsed to two cases: a structurally
// valid token past its expiry, and everything else (bad signature,
// malformed, wrong algorithm).  Callers usually map both to 401 but
// the distinction matters for logging and tests.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessToken is a signed short-lived JWT together with its expiry.
// The token string travels in the Authorization header of protected
// requests.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is a longer-lived signed JWT used to obtain new access
// tokens.  The Raw string is handed to the client; the database keeps
// only its SHA-256 hash.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// Claims is the decoded identity carried by a verified token.
type Claims struct {
	Subject string // user id (sub)
	Email   string // email claim (empty on refresh tokens)
	Role    string // role claim (empty on refresh tokens)
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The JWT
// carries the subject (user UUID), email and role claims plus exp/iat.
func NewAccessToken(secret, userID, email, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT carrying only the
// subject claim.  Refresh tokens live for ttlDays and are rotated on
// every successful exchange.
func NewRefreshToken(secret, userID string, ttlDays int) (RefreshToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: signed, Exp: exp}, nil
}

// VerifyToken checks signature and expiry of a signed token and
// returns its claims.  Only HMAC-signed tokens are accepted; a token
// signed with any other method fails with ErrTokenInvalid.
func VerifyToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	var c Claims
	if v, ok := mc["sub"].(string); ok {
		c.Subject = v
	}
	if c.Subject == "" {
		return Claims{}, ErrTokenInvalid
	}
	if v, ok := mc["email"].(string); ok {
		c.Email = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	return c, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as
// a hex string.  Storing only the hash prevents a leaked database from
// yielding usable refresh tokens.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

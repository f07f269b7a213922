// Package service holds the authentication orchestration: credential
// validation, registration, token rotation and the email verification
// flow.  Handlers stay thin and translate the sentinel errors defined
// here into HTTP responses.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poslane/pos-admin/internal/config"
	"github.com/poslane/pos-admin/internal/model"
	"github.com/poslane/pos-admin/internal/repository"
	"github.com/poslane/pos-admin/internal/utils"
)

// Sentinel errors surfaced to handlers.  Messages are deliberately
// generic: a failed refresh never reveals whether the token was
// unknown, revoked or expired.
var (
	ErrInvalidRefresh = errors.New("invalid or expired refresh token")
	ErrAuthentication = errors.New("authentication failed")
)

// Notifier delivers out-of-band verification messages.  Delivery is
// best-effort: registration succeeds even when the notifier fails.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}

// TokenPair is the access/refresh credential pair returned by login
// and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput carries the validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string  // empty defaults to STAFF
	StoreID  *uint64 // optional store attachment
}

// Auth orchestrates credential and token state.  It is the only
// component that mutates users' credential fields or refresh-token
// rows.
type Auth struct {
	cfg      config.Config
	users    *repository.UserRepo
	tokens   *repository.TokenRepo
	stores   *repository.StoreRepo
	notifier Notifier
	log      zerolog.Logger
}

func NewAuth(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo,
	stores *repository.StoreRepo, notifier Notifier, log zerolog.Logger) *Auth {
	return &Auth{cfg: cfg, users: users, tokens: tokens, stores: stores, notifier: notifier, log: log}
}

// ValidateCredentials looks up a user by exact email and checks the
// password.  It returns nil (not an error) for both unknown email and
// wrong password; the unknown-email path burns a bcrypt comparison so
// the two are indistinguishable by timing.  Only infrastructure
// failures produce an error, wrapped as a generic ErrAuthentication.
func (a *Auth) ValidateCredentials(ctx context.Context, email, password string) (*model.User, error) {
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.BurnPasswordCheck(password)
			return nil, nil
		}
		a.log.Error().Err(err).Msg("auth: user lookup failed")
		return nil, ErrAuthentication
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return &u, nil
}

// Login issues a fresh access token and a persisted refresh token for
// an already-validated user.  The caller is responsible for having
// rejected unverified users beforehand.
func (a *Auth) Login(ctx context.Context, u *model.User) (TokenPair, error) {
	access, err := utils.NewAccessToken(a.cfg.JWTSecret, u.ID, u.Email, u.Role, a.cfg.AccessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(a.cfg.JWTSecret, u.ID, a.cfg.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if err := a.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access.Token, RefreshToken: refresh.Raw}, nil
}

// Register creates an unverified user, stores a fresh verification
// token on the row and dispatches the verification email.  A taken
// email surfaces as repository.ErrEmailExists.  An unknown store id is
// ignored rather than rejected, matching the admin UI which drops the
// field when the store has been deleted meanwhile.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleStaff
	}
	var storeID *uint64
	if in.StoreID != nil {
		if _, err := a.stores.GetByID(ctx, *in.StoreID); err == nil {
			storeID = in.StoreID
		}
	}
	hash, err := utils.HashPassword(in.Password, a.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	token := uuid.NewString()
	u := model.User{
		ID:                uuid.NewString(),
		StoreID:           storeID,
		Name:              in.Name,
		Email:             in.Email,
		PasswordHash:      hash,
		Role:              role,
		IsVerified:        false,
		VerificationToken: &token,
	}
	if err := a.users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}
	if err := a.notifier.SendVerificationEmail(ctx, u.Email, token); err != nil {
		// Best-effort delivery: the account exists either way and the
		// token can be re-sent out of band.
		a.log.Warn().Err(err).Str("email", u.Email).Msg("auth: verification email dispatch failed")
	}
	return u, nil
}

// Refresh rotates a refresh token: the old token is verified, its
// stored row checked and revoked, and a new access/refresh pair
// issued.  Every failure mode along the way collapses into
// ErrInvalidRefresh so callers leak nothing about why the exchange was
// rejected.  The conditional revoke means that of two concurrent calls
// presenting the same token, at most one rotates.
func (a *Auth) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	claims, err := utils.VerifyToken(a.cfg.JWTSecret, raw)
	if err != nil {
		a.log.Debug().Err(err).Msg("auth: refresh token signature/expiry check failed")
		return TokenPair{}, ErrInvalidRefresh
	}
	hash := utils.HashRefreshRaw(raw)
	rec, err := a.tokens.FindByHash(ctx, hash)
	if err != nil {
		if err != sql.ErrNoRows {
			a.log.Error().Err(err).Msg("auth: refresh token lookup failed")
		}
		return TokenPair{}, ErrInvalidRefresh
	}
	if !rec.Usable(nowUTC()) {
		return TokenPair{}, ErrInvalidRefresh
	}
	u, err := a.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return TokenPair{}, ErrInvalidRefresh
	}
	flipped, err := a.tokens.RevokeByHash(ctx, hash)
	if err != nil {
		a.log.Error().Err(err).Msg("auth: refresh token revoke failed")
		return TokenPair{}, ErrInvalidRefresh
	}
	if !flipped {
		// Lost the race against a concurrent refresh of the same token.
		return TokenPair{}, ErrInvalidRefresh
	}
	pair, err := a.Login(ctx, &u)
	if err != nil {
		a.log.Error().Err(err).Msg("auth: issuing rotated pair failed")
		return TokenPair{}, ErrInvalidRefresh
	}
	return pair, nil
}

// Logout revokes the given refresh token.  Revoking an unknown or
// already-revoked token is a no-op, not an error; only infrastructure
// failures propagate.
func (a *Auth) Logout(ctx context.Context, raw string) error {
	_, err := a.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	return err
}

func nowUTC() time.Time { return time.Now().UTC() }

// VerifyEmail redeems a verification token: the user's verified flag
// flips and the token is cleared, exactly once.  Unknown and
// already-used tokens fail identically with
// repository.ErrVerificationToken.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (model.User, error) {
	return a.users.RedeemVerificationToken(ctx, token)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/poslane/pos-admin/internal/config"
	"github.com/poslane/pos-admin/internal/model"
	"github.com/poslane/pos-admin/internal/repository"
	"github.com/poslane/pos-admin/internal/utils"
)

const testSecret = "test-secret"

// stubNotifier records dispatched verification mails.
type stubNotifier struct {
	emails []string
	tokens []string
	err    error
}

func (s *stubNotifier) SendVerificationEmail(_ context.Context, email, token string) error {
	s.emails = append(s.emails, email)
	s.tokens = append(s.tokens, token)
	return s.err
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      testSecret,
		AccessTTLMin:   60,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
}

func newTestAuth(t *testing.T) (*Auth, sqlmock.Sqlmock, *stubNotifier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	notifier := &stubNotifier{}
	a := NewAuth(testConfig(),
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		repository.NewStoreRepo(db),
		notifier, zerolog.Nop())
	return a, mock, notifier
}

func userRow(u model.User) *sqlmock.Rows {
	var token interface{}
	if u.VerificationToken != nil {
		token = *u.VerificationToken
	}
	return sqlmock.NewRows([]string{
		"id", "store_id", "name", "email", "password_hash", "role",
		"is_verified", "verification_token", "created_at", "updated_at",
	}).AddRow(u.ID, nil, u.Name, u.Email, u.PasswordHash, u.Role,
		u.IsVerified, token, time.Now(), time.Now())
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

// ----- ValidateCredentials -----

func TestValidateCredentials_Correct(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	hash := mustHash(t, "P@ssw0rd1")

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("j@x.com").
		WillReturnRows(userRow(model.User{ID: "uuid-1", Email: "j@x.com", PasswordHash: hash, Role: model.RoleStaff, IsVerified: true}))

	u, err := a.ValidateCredentials(context.Background(), "j@x.com", "P@ssw0rd1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "uuid-1", u.ID)
}

func TestValidateCredentials_WrongPassword(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	hash := mustHash(t, "P@ssw0rd1")

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("j@x.com").
		WillReturnRows(userRow(model.User{ID: "uuid-1", Email: "j@x.com", PasswordHash: hash, Role: model.RoleStaff}))

	u, err := a.ValidateCredentials(context.Background(), "j@x.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestValidateCredentials_UnknownEmail(t *testing.T) {
	a, mock, _ := newTestAuth(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	// Unknown email is indistinguishable from a wrong password: nil
	// user, nil error.
	u, err := a.ValidateCredentials(context.Background(), "nobody@x.com", "anything")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestValidateCredentials_InfraFailure(t *testing.T) {
	a, mock, _ := newTestAuth(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WillReturnError(errors.New("connection refused"))

	_, err := a.ValidateCredentials(context.Background(), "j@x.com", "pw")
	assert.ErrorIs(t, err, ErrAuthentication)
	// The raw driver error never leaks through the service boundary.
	assert.NotContains(t, err.Error(), "connection refused")
}

// ----- Login -----

func TestLogin_IssuesDistinctTokens(t *testing.T) {
	a, mock, _ := newTestAuth(t)

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	u := model.User{ID: "uuid-1", Email: "j@x.com", Role: model.RoleAdmin, IsVerified: true}
	pair, err := a.Login(context.Background(), &u)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// The access token carries the full identity; the refresh token
	// only the subject.
	claims, err := utils.VerifyToken(testSecret, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	rclaims, err := utils.VerifyToken(testSecret, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", rclaims.Subject)
	assert.Empty(t, rclaims.Role)
}

// ----- Register -----

func TestRegister_CreatesUnverifiedUserAndNotifies(t *testing.T) {
	a, mock, notifier := newTestAuth(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := a.Register(context.Background(), RegisterInput{
		Name: "John", Email: "j@x.com", Password: "P@ssw0rd1",
	})
	require.NoError(t, err)

	assert.False(t, u.IsVerified)
	assert.Equal(t, model.RoleStaff, u.Role)
	require.NoError(t, uuid.Validate(u.ID))
	require.NotNil(t, u.VerificationToken)
	require.NoError(t, uuid.Validate(*u.VerificationToken))
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "P@ssw0rd1"))

	require.Equal(t, []string{"j@x.com"}, notifier.emails)
	assert.Equal(t, []string{*u.VerificationToken}, notifier.tokens)
}

func TestRegister_EmailConflict(t *testing.T) {
	a, mock, notifier := newTestAuth(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	_, err := a.Register(context.Background(), RegisterInput{
		Name: "John", Email: "j@x.com", Password: "P@ssw0rd1",
	})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
	assert.Empty(t, notifier.emails)
}

func TestRegister_NotifierFailureIsNotFatal(t *testing.T) {
	a, mock, notifier := newTestAuth(t)
	notifier.err = errors.New("broker down")

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := a.Register(context.Background(), RegisterInput{
		Name: "John", Email: "j@x.com", Password: "P@ssw0rd1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

// ----- Refresh -----

func refreshTokenRow(userID string, expiresAt, revokedAt interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}).
		AddRow(1, userID, "stored-hash", expiresAt, revokedAt, time.Now())
}

func TestRefresh_RotatesToken(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	rt, err := utils.NewRefreshToken(testSecret, "uuid-1", 7)
	require.NoError(t, err)
	exp := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectQuery("SELECT id, user_id, token_hash").
		WithArgs(utils.HashRefreshRaw(rt.Raw)).
		WillReturnRows(refreshTokenRow("uuid-1", exp, nil))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs("uuid-1").
		WillReturnRows(userRow(model.User{ID: "uuid-1", Email: "j@x.com", Role: model.RoleStaff, IsVerified: true}))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs(utils.HashRefreshRaw(rt.Raw)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(2, 1))

	pair, err := a.Refresh(context.Background(), rt.Raw)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, rt.Raw, pair.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_GarbageToken(t *testing.T) {
	a, _, _ := newTestAuth(t)

	// Signature check fails before any database access.
	_, err := a.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_UnknownToken(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	rt, err := utils.NewRefreshToken(testSecret, "uuid-1", 7)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, user_id, token_hash").
		WillReturnError(sql.ErrNoRows)

	_, err = a.Refresh(context.Background(), rt.Raw)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_RevokedToken(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	rt, err := utils.NewRefreshToken(testSecret, "uuid-1", 7)
	require.NoError(t, err)
	exp := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectQuery("SELECT id, user_id, token_hash").
		WillReturnRows(refreshTokenRow("uuid-1", exp, time.Now().UTC().Add(-time.Minute)))

	_, err = a.Refresh(context.Background(), rt.Raw)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_ExpiryBoundary(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	rt, err := utils.NewRefreshToken(testSecret, "uuid-1", 7)
	require.NoError(t, err)

	// A stored expiry at or before the current instant counts as
	// expired even though the JWT itself is still within its window.
	mock.ExpectQuery("SELECT id, user_id, token_hash").
		WillReturnRows(refreshTokenRow("uuid-1", time.Now().UTC(), nil))

	_, err = a.Refresh(context.Background(), rt.Raw)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_LostRevocationRace(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	rt, err := utils.NewRefreshToken(testSecret, "uuid-1", 7)
	require.NoError(t, err)
	exp := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectQuery("SELECT id, user_id, token_hash").
		WillReturnRows(refreshTokenRow("uuid-1", exp, nil))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WillReturnRows(userRow(model.User{ID: "uuid-1", Email: "j@x.com", Role: model.RoleStaff, IsVerified: true}))
	// A concurrent refresh flipped revoked_at first: zero rows, no
	// rotation for this caller.
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW()").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = a.Refresh(context.Background(), rt.Raw)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

// ----- Logout -----

func TestLogout_Idempotent(t *testing.T) {
	a, mock, _ := newTestAuth(t)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW()").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW()").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, a.Logout(context.Background(), "some-token"))
	assert.NoError(t, a.Logout(context.Background(), "some-token"))
}

func TestLogout_UnknownTokenIsNoOp(t *testing.T) {
	a, mock, _ := newTestAuth(t)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW()").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, a.Logout(context.Background(), "never-issued"))
}

// ----- VerifyEmail -----

func TestVerifyEmail_SingleUse(t *testing.T) {
	a, mock, _ := newTestAuth(t)
	token := "tok-1"

	mock.ExpectQuery("SELECT .+ FROM users WHERE verification_token=").
		WithArgs("tok-1").
		WillReturnRows(userRow(model.User{ID: "uuid-1", Email: "j@x.com", Role: model.RoleStaff, VerificationToken: &token}))
	mock.ExpectExec("UPDATE users SET is_verified=1").
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := a.VerifyEmail(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Nil(t, u.VerificationToken)

	// The token column is cleared, so the same string cannot resolve
	// again.
	mock.ExpectQuery("SELECT .+ FROM users WHERE verification_token=").
		WithArgs("tok-1").
		WillReturnError(sql.ErrNoRows)

	_, err = a.VerifyEmail(context.Background(), "tok-1")
	assert.ErrorIs(t, err, repository.ErrVerificationToken)
}

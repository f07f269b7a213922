package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/poslane/pos-admin/internal/model"
)

// UserRepo persists and queries rows of the `users` table.  Email
// lookups are byte-exact against the stored value; no case folding is
// applied anywhere.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,store_id,name,email,password_hash,role,is_verified,verification_token,created_at,updated_at"

// Create inserts a user row.  The caller supplies the UUID, the bcrypt
// hash and the verification token; duplicate emails surface as
// ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, store_id, name, email, password_hash, role, is_verified, verification_token) VALUES (?,?,?,?,?,?,?,?)",
		u.ID, u.StoreID, u.Name, u.Email, u.PasswordHash, u.Role, u.IsVerified, u.VerificationToken)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by its UUID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// RedeemVerificationToken flips is_verified and clears the token in a
// single conditional UPDATE keyed on the token value, then returns the
// affected user.  Because the token column is cleared by the UPDATE, a
// second redemption of the same string matches zero rows and fails
// with ErrVerificationToken, which also settles concurrent redeems.
func (r *UserRepo) RedeemVerificationToken(ctx context.Context, token string) (model.User, error) {
	u, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE verification_token=? LIMIT 1", token))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrVerificationToken
		}
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=1, verification_token=NULL, updated_at=NOW() WHERE verification_token=?",
		token)
	if err != nil {
		return model.User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.User{}, err
	}
	if n == 0 {
		return model.User{}, ErrVerificationToken
	}
	u.IsVerified = true
	u.VerificationToken = nil
	return u, nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.StoreID, &u.Name, &u.Email, &u.PasswordHash,
			&u.Role, &u.IsVerified, &u.VerificationToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes a user row.  Refresh tokens cascade at the database
// level; sql.ErrNoRows is returned when no row matched.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.StoreID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsVerified, &u.VerificationToken, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

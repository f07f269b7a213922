package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/poslane/pos-admin/internal/model"
)

// ErrStoreNotFound is returned when a store lookup matches no row.
var ErrStoreNotFound = errors.New("store not found")

// ErrCompanyMissing is returned when a store insert or update
// references a company that does not exist (foreign key violation).
var ErrCompanyMissing = errors.New("referenced company does not exist")

// StoreRepo provides CRUD access to the `stores` table.
type StoreRepo struct{ DB *sql.DB }

func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{DB: db} }

const storeColumns = "id,company_id,name,location,phone,email,created_at,updated_at"

// Create inserts a store and fills in its generated ID.  A foreign key
// violation on company_id (MySQL error 1452) maps to ErrCompanyMissing.
func (r *StoreRepo) Create(ctx context.Context, s *model.Store) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stores (company_id, name, location, phone, email) VALUES (?,?,?,?,?)",
		s.CompanyID, s.Name, s.Location, s.Phone, s.Email)
	if err != nil {
		if strings.Contains(err.Error(), "1452") {
			return ErrCompanyMissing
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a single store.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (model.Store, error) {
	var s model.Store
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+storeColumns+" FROM stores WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.CompanyID, &s.Name, &s.Location, &s.Phone, &s.Email, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Store{}, ErrStoreNotFound
	}
	return s, err
}

// List returns all stores.
func (r *StoreRepo) List(ctx context.Context) ([]model.Store, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+storeColumns+" FROM stores ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Store
	for rows.Next() {
		var s model.Store
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Location, &s.Phone, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a store.  RowsAffected is
// not consulted: MySQL reports zero for a no-change update, which would
// be indistinguishable from a missing row.
func (r *StoreRepo) Update(ctx context.Context, s *model.Store) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE stores SET company_id=?, name=?, location=?, phone=?, email=?, updated_at=NOW() WHERE id=?",
		s.CompanyID, s.Name, s.Location, s.Phone, s.Email, s.ID)
	if err != nil && strings.Contains(err.Error(), "1452") {
		return ErrCompanyMissing
	}
	return err
}

// Delete removes a store row.
func (r *StoreRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM stores WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStoreNotFound
	}
	return nil
}

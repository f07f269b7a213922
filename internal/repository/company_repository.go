package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/poslane/pos-admin/internal/model"
)

// ErrCompanyNotFound is returned when a company lookup matches no row.
// Handlers translate it into an HTTP 404 response.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyRepo provides CRUD access to the `companies` table.
type CompanyRepo struct{ DB *sql.DB }

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{DB: db} }

const companyColumns = "id,name,address,phone,email,created_at,updated_at"

// Create inserts a company and fills in its generated ID.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO companies (name, address, phone, email) VALUES (?,?,?,?)",
		c.Name, c.Address, c.Phone, c.Email)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a single company.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (model.Company, error) {
	var c model.Company
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Company{}, ErrCompanyNotFound
	}
	return c, err
}

// List returns all companies.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+companyColumns+" FROM companies ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a company.  RowsAffected is
// not consulted: MySQL reports zero for a no-change update, which would
// be indistinguishable from a missing row.
func (r *CompanyRepo) Update(ctx context.Context, c *model.Company) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE companies SET name=?, address=?, phone=?, email=?, updated_at=NOW() WHERE id=?",
		c.Name, c.Address, c.Phone, c.Email, c.ID)
	return err
}

// Delete removes a company row.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM companies WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

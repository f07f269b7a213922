package model

import "time"

// Store represents a row in the `stores` table.  Every store belongs
// to a company; staff users may be attached to a store via
// users.store_id.
type Store struct {
	ID        uint64    `json:"id"`
	CompanyID uint64    `json:"company_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

// Supplier is a vendor the shop buys stock from.
type Supplier struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierInput is used for creating/updating suppliers.
type SupplierInput struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

func (s *SupplierInput) Validate() string {
	if s.Name == "" {
		return "name is required"
	}
	return ""
}

package models

import "time"

// Customer is a buyer that invoices are issued to.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Computed: exact sum of recorded payments across the customer's
	// invoices
	TotalPaid Money `json:"total_paid"`
}

// CustomerInput is used for creating/updating customers.
type CustomerInput struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

func (c *CustomerInput) Validate() string {
	if c.Name == "" {
		return "name is required"
	}
	return ""
}

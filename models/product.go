package models

import "time"

// Product is a catalog entry.
type Product struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	SKU           *string   `json:"sku"`
	UnitPrice     Money     `json:"unit_price"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductInput is used for creating/updating products.
type ProductInput struct {
	Name          string  `json:"name"`
	SKU           *string `json:"sku"`
	UnitPrice     Money   `json:"unit_price"`
	StockQuantity int     `json:"stock_quantity"`
}

func (p *ProductInput) Validate() string {
	if p.Name == "" {
		return "name is required"
	}
	if p.UnitPrice < 0 {
		return "unit_price must be non-negative"
	}
	if p.StockQuantity < 0 {
		return "stock_quantity must be non-negative"
	}
	return ""
}

package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migrate runs all table creation statements. Safe to call multiple times
// due to IF NOT EXISTS clauses.
func Migrate(db *sql.DB) error {
	slog.Info("running database migrations")

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nstatement: %s", err, stmt)
		}
	}

	slog.Info("database migrations complete")
	return nil
}

var migrations = []string{
	// Customers: invoices are issued to these
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Suppliers: vendor list for purchasing
	`CREATE TABLE IF NOT EXISTS suppliers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		notes TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Products: catalog entries, prices in integer cents
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		sku TEXT,
		unit_price INTEGER NOT NULL DEFAULT 0,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Invoices: two independent status axes; totals are never stored,
	// always recomputed from invoice_items
	`CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER,
		invoice_number TEXT NOT NULL,
		issue_date DATE,
		due_date DATE,
		tax_rate_percent INTEGER NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'draft' CHECK(payment_status IN ('draft', 'sent', 'partially_paid', 'paid', 'cancelled')),
		fulfillment_status TEXT NOT NULL DEFAULT 'pending' CHECK(fulfillment_status IN ('pending', 'out_for_delivery', 'delivered', 'picked_up')),
		delivery_type TEXT CHECK(delivery_type IN ('pickup', 'delivery')),
		delivery_scheduled_date DATE,
		delivery_completed_date DATETIME,
		delivery_recipient_name TEXT,
		delivery_recipient_phone TEXT,
		delivery_address TEXT,
		delivery_notes TEXT,
		notes TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE SET NULL
	)`,

	// Invoice line items, amounts in integer cents
	`CREATE TABLE IF NOT EXISTS invoice_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL,
		description TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK(quantity > 0),
		unit_price INTEGER NOT NULL CHECK(unit_price >= 0),
		discount_percent INTEGER NOT NULL DEFAULT 0 CHECK(discount_percent BETWEEN 0 AND 100),
		FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE
	)`,

	// Payments: append-only; rows are never updated or deleted while
	// the invoice lives. id is a client-suppliable UUID so replays of
	// the same payment are detectable.
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		invoice_id INTEGER NOT NULL,
		amount INTEGER NOT NULL CHECK(amount > 0),
		method TEXT NOT NULL CHECK(method IN ('cash', 'mpesa', 'bank_transfer')),
		reference TEXT,
		notes TEXT,
		processed_at DATETIME NOT NULL,
		FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE
	)`,

	// Payment feed transactions awaiting reconciliation
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		amount INTEGER NOT NULL CHECK(amount > 0),
		payment_method TEXT NOT NULL CHECK(payment_method IN ('cash', 'mpesa', 'bank_transfer')),
		reference TEXT,
		processed_at DATE,
		reconciliation_status TEXT NOT NULL DEFAULT 'pending' CHECK(reconciliation_status IN ('pending', 'matched', 'disputed')),
		invoice_id INTEGER,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE SET NULL
	)`,

	// Indexes for common queries
	`CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_payment_status ON invoices(payment_status)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_invoice ON payments(invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(reconciliation_status)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_invoice ON transactions(invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)`,
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukahub/backoffice/ledger"
	"github.com/dukahub/backoffice/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same query
// code serves transactional and non-transactional paths.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements ledger.Store over SQLite, plus the aggregate CRUD
// helpers the invoice handlers use.
type Store struct {
	db *sql.DB
	q  querier
}

// NewStore wraps an open database.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database, q: database}
}

// InTx runs fn against a transactional view. Nested calls reuse the
// outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ledger.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

const invoiceSelectQuery = `SELECT i.id, i.customer_id, i.invoice_number, i.issue_date, i.due_date,
	i.tax_rate_percent, i.payment_status, i.fulfillment_status,
	i.delivery_type, i.delivery_scheduled_date, i.delivery_completed_date,
	i.delivery_recipient_name, i.delivery_recipient_phone, i.delivery_address, i.delivery_notes,
	i.notes, i.created_at, i.updated_at,
	c.name
	FROM invoices i
	LEFT JOIN customers c ON i.customer_id = c.id`

func (s *Store) scanInvoice(scanner interface{ Scan(...any) error }) (*models.Invoice, error) {
	var inv models.Invoice
	var deliveryType, schedDate, recName, recPhone, address, dNotes *string
	var completed *time.Time
	err := scanner.Scan(&inv.ID, &inv.CustomerID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate,
		&inv.TaxRatePercent, &inv.PaymentStatus, &inv.FulfillmentStatus,
		&deliveryType, &schedDate, &completed,
		&recName, &recPhone, &address, &dNotes,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.CustomerName)
	if err != nil {
		return nil, err
	}
	if deliveryType != nil {
		inv.Delivery = &models.DeliveryInfo{
			Type:           models.DeliveryType(*deliveryType),
			ScheduledDate:  schedDate,
			CompletedDate:  completed,
			RecipientName:  recName,
			RecipientPhone: recPhone,
			Address:        address,
			Notes:          dNotes,
		}
	}
	return &inv, nil
}

// Invoice loads the full aggregate and refreshes derived fields.
func (s *Store) Invoice(ctx context.Context, id int) (*models.Invoice, error) {
	inv, err := s.scanInvoice(s.q.QueryRowContext(ctx, invoiceSelectQuery+" WHERE i.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("loading invoice %d: %w", id, err)
	}
	if err := s.loadInvoiceChildren(ctx, inv); err != nil {
		return nil, err
	}
	if err := ledger.Refresh(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Store) loadInvoiceChildren(ctx context.Context, inv *models.Invoice) error {
	rows, err := s.q.QueryContext(ctx, `SELECT id, description, quantity, unit_price, discount_percent
		FROM invoice_items WHERE invoice_id = ? ORDER BY id`, inv.ID)
	if err != nil {
		return fmt.Errorf("loading items for invoice %d: %w", inv.ID, err)
	}
	defer rows.Close()
	inv.Items = []models.InvoiceItem{}
	for rows.Next() {
		var it models.InvoiceItem
		if err := rows.Scan(&it.ID, &it.Description, &it.Quantity, &it.UnitPrice, &it.DiscountPercent); err != nil {
			return err
		}
		inv.Items = append(inv.Items, it)
	}

	prows, err := s.q.QueryContext(ctx, `SELECT id, invoice_id, amount, method, reference, notes, processed_at
		FROM payments WHERE invoice_id = ? ORDER BY processed_at, id`, inv.ID)
	if err != nil {
		return fmt.Errorf("loading payments for invoice %d: %w", inv.ID, err)
	}
	defer prows.Close()
	inv.Payments = []models.Payment{}
	for prows.Next() {
		var p models.Payment
		if err := prows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.Notes, &p.ProcessedAt); err != nil {
			return err
		}
		inv.Payments = append(inv.Payments, p)
	}
	return nil
}

// SaveInvoice persists the mutable parts of the aggregate: the two
// status axes, delivery completion, and newly appended payments.
// Payments are insert-only; existing rows are never touched.
func (s *Store) SaveInvoice(ctx context.Context, inv *models.Invoice) error {
	var completed *time.Time
	if inv.Delivery != nil {
		completed = inv.Delivery.CompletedDate
	}
	res, err := s.q.ExecContext(ctx, `UPDATE invoices SET payment_status = ?, fulfillment_status = ?,
		delivery_completed_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		inv.PaymentStatus, inv.FulfillmentStatus, completed, inv.ID)
	if err != nil {
		return fmt.Errorf("updating invoice %d: %w", inv.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrInvoiceNotFound
	}

	for _, p := range inv.Payments {
		_, err := s.q.ExecContext(ctx, `INSERT OR IGNORE INTO payments (id, invoice_id, amount, method, reference, notes, processed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, inv.ID, p.Amount, p.Method, p.Reference, p.Notes, p.ProcessedAt)
		if err != nil {
			return fmt.Errorf("inserting payment %s: %w", p.ID, err)
		}
	}
	return nil
}

// Transaction loads one feed transaction.
func (s *Store) Transaction(ctx context.Context, id int) (*models.Transaction, error) {
	var t models.Transaction
	err := s.q.QueryRowContext(ctx, `SELECT id, amount, payment_method, reference, processed_at,
		reconciliation_status, invoice_id, created_at, updated_at
		FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.Amount, &t.PaymentMethod, &t.Reference, &t.ProcessedAt,
			&t.ReconciliationStatus, &t.InvoiceID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("loading transaction %d: %w", id, err)
	}
	return &t, nil
}

// SaveTransaction persists reconciliation status and invoice link, the
// only transaction fields this system mutates.
func (s *Store) SaveTransaction(ctx context.Context, t *models.Transaction) error {
	res, err := s.q.ExecContext(ctx, `UPDATE transactions SET reconciliation_status = ?, invoice_id = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.ReconciliationStatus, t.InvoiceID, t.ID)
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

// UnmatchedInvoices returns invoices awaiting payment. The balance
// check happens in Go because cent rounding lives there, not in SQL.
func (s *Store) UnmatchedInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.listByQuery(ctx, invoiceSelectQuery+
		` WHERE i.payment_status IN ('sent', 'partially_paid') ORDER BY i.due_date, i.id`)
	if err != nil {
		return nil, err
	}
	unmatched := invoices[:0]
	for _, inv := range invoices {
		if inv.RemainingBalance > 0 {
			unmatched = append(unmatched, inv)
		}
	}
	return unmatched, nil
}

// InvoiceHasMatch reports whether a different matched transaction
// already covers this invoice for the same amount.
func (s *Store) InvoiceHasMatch(ctx context.Context, invoiceID int, amount models.Money) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions
		WHERE invoice_id = ? AND reconciliation_status = 'matched' AND amount = ?`,
		invoiceID, amount).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking matches for invoice %d: %w", invoiceID, err)
	}
	return n > 0, nil
}

// InvoiceFilters narrows ListInvoices.
type InvoiceFilters struct {
	PaymentStatus string
	CustomerID    string
	Search        string
}

// ListInvoices loads full aggregates matching the filters, newest
// first. Totals come from the ledger computation per invoice rather
// than SQL sums so rounding is identical everywhere.
func (s *Store) ListInvoices(ctx context.Context, f InvoiceFilters) ([]models.Invoice, error) {
	query := invoiceSelectQuery
	var conditions []string
	var args []any
	if f.PaymentStatus != "" {
		conditions = append(conditions, "i.payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "i.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.Search != "" {
		conditions = append(conditions, "(i.invoice_number LIKE ? OR i.notes LIKE ? OR c.name LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.created_at DESC"
	return s.listByQuery(ctx, query, args...)
}

func (s *Store) listByQuery(ctx context.Context, query string, args ...any) ([]models.Invoice, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := s.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	for i := range invoices {
		if err := s.loadInvoiceChildren(ctx, &invoices[i]); err != nil {
			return nil, err
		}
		if err := ledger.Refresh(&invoices[i]); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// CreateInvoice inserts a draft invoice with its items and returns the
// stored aggregate.
func (s *Store) CreateInvoice(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error) {
	var created *models.Invoice
	err := s.InTx(ctx, func(st ledger.Store) error {
		ts := st.(*Store)
		var id int
		d := deliveryColumns(in.Delivery)
		err := ts.q.QueryRowContext(ctx, `INSERT INTO invoices (customer_id, invoice_number, issue_date, due_date,
			tax_rate_percent, delivery_type, delivery_scheduled_date, delivery_recipient_name,
			delivery_recipient_phone, delivery_address, delivery_notes, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			in.CustomerID, in.InvoiceNumber, in.IssueDate, in.DueDate,
			in.TaxRatePercent, d.typ, d.scheduled, d.recipientName,
			d.recipientPhone, d.address, d.notes, in.Notes).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting invoice: %w", err)
		}
		if err := ts.insertItems(ctx, id, in.Items); err != nil {
			return err
		}
		created, err = st.Invoice(ctx, id)
		return err
	})
	return created, err
}

// UpdateDraftInvoice replaces the header and item list of a draft.
// Invoices that have left draft reject edits with ErrIllegalTransition:
// finalized amounts change only through payments and cancellation.
func (s *Store) UpdateDraftInvoice(ctx context.Context, id int, in models.InvoiceInput) (*models.Invoice, error) {
	var updated *models.Invoice
	err := s.InTx(ctx, func(st ledger.Store) error {
		ts := st.(*Store)
		current, err := st.Invoice(ctx, id)
		if err != nil {
			return err
		}
		if current.PaymentStatus != models.PaymentStatusDraft {
			return fmt.Errorf("edit invoice in %s: %w", current.PaymentStatus, ledger.ErrIllegalTransition)
		}
		d := deliveryColumns(in.Delivery)
		_, err = ts.q.ExecContext(ctx, `UPDATE invoices SET customer_id = ?, invoice_number = ?, issue_date = ?,
			due_date = ?, tax_rate_percent = ?, delivery_type = ?, delivery_scheduled_date = ?,
			delivery_recipient_name = ?, delivery_recipient_phone = ?, delivery_address = ?,
			delivery_notes = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			in.CustomerID, in.InvoiceNumber, in.IssueDate, in.DueDate, in.TaxRatePercent,
			d.typ, d.scheduled, d.recipientName, d.recipientPhone, d.address, d.notes, in.Notes, id)
		if err != nil {
			return fmt.Errorf("updating invoice %d: %w", id, err)
		}
		if _, err := ts.q.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", id); err != nil {
			return fmt.Errorf("clearing items for invoice %d: %w", id, err)
		}
		if err := ts.insertItems(ctx, id, in.Items); err != nil {
			return err
		}
		updated, err = st.Invoice(ctx, id)
		return err
	})
	return updated, err
}

// DeleteDraftInvoice removes a draft. Anything past draft is part of
// the books and cannot be deleted.
func (s *Store) DeleteDraftInvoice(ctx context.Context, id int) error {
	inv, err := s.Invoice(ctx, id)
	if err != nil {
		return err
	}
	if inv.PaymentStatus != models.PaymentStatusDraft {
		return fmt.Errorf("delete invoice in %s: %w", inv.PaymentStatus, ledger.ErrIllegalTransition)
	}
	_, err = s.q.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting invoice %d: %w", id, err)
	}
	return nil
}

func (s *Store) insertItems(ctx context.Context, invoiceID int, items []models.InvoiceItemInput) error {
	for _, it := range items {
		_, err := s.q.ExecContext(ctx, `INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, discount_percent)
			VALUES (?, ?, ?, ?, ?)`,
			invoiceID, it.Description, it.Quantity, it.UnitPrice, it.DiscountPercent)
		if err != nil {
			return fmt.Errorf("inserting item: %w", err)
		}
	}
	return nil
}

type deliveryCols struct {
	typ, scheduled, recipientName, recipientPhone, address, notes *string
}

func deliveryColumns(d *models.DeliveryInput) deliveryCols {
	if d == nil {
		return deliveryCols{}
	}
	typ := string(d.Type)
	return deliveryCols{
		typ:            &typ,
		scheduled:      d.ScheduledDate,
		recipientName:  d.RecipientName,
		recipientPhone: d.RecipientPhone,
		address:        d.Address,
		notes:          d.Notes,
	}
}

package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/dukahub/backoffice/models"
)

// memStore is an in-memory Store for exercising the service without a
// database.
type memStore struct {
	mu       sync.Mutex
	invoices map[int]*models.Invoice
	txns     map[int]*models.Transaction

	saveInvoiceErr     error // injected failure
	saveTransactionErr error
}

func newMemStore() *memStore {
	return &memStore{
		invoices: map[int]*models.Invoice{},
		txns:     map[int]*models.Transaction{},
	}
}

func cloneInvoice(inv *models.Invoice) *models.Invoice {
	c := *inv
	c.Items = append([]models.InvoiceItem(nil), inv.Items...)
	c.Payments = append([]models.Payment(nil), inv.Payments...)
	if inv.Delivery != nil {
		d := *inv.Delivery
		c.Delivery = &d
	}
	return &c
}

func (m *memStore) putInvoice(inv *models.Invoice) {
	if err := Refresh(inv); err != nil {
		panic(err)
	}
	m.invoices[inv.ID] = cloneInvoice(inv)
}

func (m *memStore) putTransaction(t *models.Transaction) {
	c := *t
	m.txns[t.ID] = &c
}

func (m *memStore) Invoice(_ context.Context, id int) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	c := cloneInvoice(inv)
	if err := Refresh(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *memStore) SaveInvoice(_ context.Context, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveInvoiceErr != nil {
		return m.saveInvoiceErr
	}
	m.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (m *memStore) Transaction(_ context.Context, id int) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	c := *t
	return &c, nil
}

func (m *memStore) SaveTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveTransactionErr != nil {
		return m.saveTransactionErr
	}
	c := *t
	m.txns[t.ID] = &c
	return nil
}

func (m *memStore) UnmatchedInvoices(_ context.Context) ([]models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Invoice
	for _, inv := range m.invoices {
		c := cloneInvoice(inv)
		if err := Refresh(c); err != nil {
			return nil, err
		}
		if (c.PaymentStatus == models.PaymentStatusSent || c.PaymentStatus == models.PaymentStatusPartiallyPaid) &&
			c.RemainingBalance > 0 {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (m *memStore) InvoiceHasMatch(_ context.Context, invoiceID int, amount models.Money) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.ReconciliationStatus == models.ReconciliationMatched &&
			t.InvoiceID != nil && *t.InvoiceID == invoiceID && t.Amount == amount {
			return true, nil
		}
	}
	return false, nil
}

// InTx runs fn directly; atomicity across the fake's maps is not
// exercised here, only the error path.
func (m *memStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(m)
}

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []any
}

func (n *recordingNotifier) Notify(_ context.Context, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) all() []any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]any(nil), n.events...)
}

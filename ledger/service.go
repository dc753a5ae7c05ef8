package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dukahub/backoffice/models"
)

// Service orchestrates the engine against the persistence and
// notification collaborators. Operations touching the same invoice are
// serialized through a per-invoice mutex; operations on different
// invoices run independently. Ranking is a pure read and takes no lock.
type Service struct {
	store    Store
	notifier Notifier
	now      func() time.Time

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewService wires the engine to its collaborators.
func NewService(store Store, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		locks:    map[int]*sync.Mutex{},
	}
}

// lockInvoice serializes work on one invoice id and returns the unlock.
func (s *Service) lockInvoice(id int) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// RecordPayment applies a payment to an invoice and persists the
// result. A storage failure after the in-memory transition is surfaced
// as a wrapped save error, distinct from validation failures — the
// computation was not wrong, the write just did not happen.
func (s *Service) RecordPayment(ctx context.Context, invoiceID int, in models.PaymentInput) (*models.Invoice, error) {
	defer s.lockInvoice(invoiceID)()

	inv, err := s.store.Invoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	before := inv.DisplayStatus
	payment, replayed, err := RecordPayment(inv, in, s.now())
	if err != nil {
		return nil, err
	}
	if replayed {
		return inv, nil
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving invoice %d: %w", invoiceID, err)
	}

	s.notifier.Notify(ctx, PaymentRecorded{
		InvoiceID: inv.ID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Method:    payment.Method,
		Reference: payment.Reference,
	})
	s.notifyStatusChange(ctx, inv, before)
	return inv, nil
}

// Finalize moves a draft invoice to sent.
func (s *Service) Finalize(ctx context.Context, invoiceID int) (*models.Invoice, error) {
	return s.transition(ctx, invoiceID, Finalize)
}

// Cancel terminates the payment axis.
func (s *Service) Cancel(ctx context.Context, invoiceID int) (*models.Invoice, error) {
	return s.transition(ctx, invoiceID, Cancel)
}

// Dispatch marks a delivery invoice out for delivery.
func (s *Service) Dispatch(ctx context.Context, invoiceID int) (*models.Invoice, error) {
	return s.transition(ctx, invoiceID, Dispatch)
}

// CompleteFulfillment marks the invoice delivered or picked up.
func (s *Service) CompleteFulfillment(ctx context.Context, invoiceID int) (*models.Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *models.Invoice) error {
		return ConfirmCompletion(inv, s.now())
	})
}

func (s *Service) transition(ctx context.Context, invoiceID int, apply func(*models.Invoice) error) (*models.Invoice, error) {
	defer s.lockInvoice(invoiceID)()

	inv, err := s.store.Invoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	before := inv.DisplayStatus
	if err := apply(inv); err != nil {
		return nil, err
	}
	if err := Refresh(inv); err != nil {
		return nil, err
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving invoice %d: %w", invoiceID, err)
	}
	s.notifyStatusChange(ctx, inv, before)
	return inv, nil
}

func (s *Service) notifyStatusChange(ctx context.Context, inv *models.Invoice, before string) {
	if inv.DisplayStatus == before {
		return
	}
	s.notifier.Notify(ctx, InvoiceStatusChanged{
		InvoiceID: inv.ID,
		From:      before,
		To:        inv.DisplayStatus,
	})
}

// Candidates ranks unmatched invoices for a transaction. Read-only; may
// run concurrently with anything, possibly against a momentarily stale
// snapshot — ConfirmMatch re-validates.
func (s *Service) Candidates(ctx context.Context, transactionID int) (*models.Transaction, []Candidate, error) {
	txn, err := s.store.Transaction(ctx, transactionID)
	if err != nil {
		return nil, nil, err
	}
	unmatched, err := s.store.UnmatchedInvoices(ctx)
	if err != nil {
		return nil, nil, err
	}
	return txn, RankCandidates(*txn, unmatched), nil
}

// ConfirmMatch links a transaction to an invoice and records the
// payment. Both effects commit atomically. A transaction already
// matched fails with ErrAlreadyMatched regardless of the candidate; so
// does an invoice already fully matched by a different transaction for
// the same amount. Disputed transactions may still be confirmed —
// disputed and pending are both unresolved.
func (s *Service) ConfirmMatch(ctx context.Context, transactionID, invoiceID int) (*models.Transaction, error) {
	defer s.lockInvoice(invoiceID)()

	var (
		confirmed *models.Transaction
		payment   *models.Payment
		invoice   *models.Invoice
		before    string
	)
	err := s.store.InTx(ctx, func(st Store) error {
		txn, err := st.Transaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.ReconciliationStatus == models.ReconciliationMatched {
			return fmt.Errorf("transaction %d: %w", transactionID, ErrAlreadyMatched)
		}
		inv, err := st.Invoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		taken, err := st.InvoiceHasMatch(ctx, invoiceID, txn.Amount)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("invoice %d already matched for this amount: %w", invoiceID, ErrAlreadyMatched)
		}

		before = inv.DisplayStatus
		p, _, err := RecordPayment(inv, models.PaymentInput{
			Amount:    txn.Amount,
			Method:    txn.PaymentMethod,
			Reference: txn.Reference,
		}, s.now())
		if err != nil {
			return err
		}
		txn.ReconciliationStatus = models.ReconciliationMatched
		txn.InvoiceID = &invoiceID
		if err := st.SaveInvoice(ctx, inv); err != nil {
			return fmt.Errorf("saving invoice %d: %w", invoiceID, err)
		}
		if err := st.SaveTransaction(ctx, txn); err != nil {
			return fmt.Errorf("saving transaction %d: %w", transactionID, err)
		}
		confirmed, payment, invoice = txn, p, inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, TransactionMatched{
		TransactionID: confirmed.ID,
		InvoiceID:     invoiceID,
		Amount:        confirmed.Amount,
	})
	s.notifier.Notify(ctx, PaymentRecorded{
		InvoiceID: invoiceID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Method:    payment.Method,
		Reference: payment.Reference,
	})
	s.notifyStatusChange(ctx, invoice, before)
	return confirmed, nil
}

// MarkDisputed flags a pending transaction for operator triage. It does
// not touch any invoice, and the transaction remains matchable.
func (s *Service) MarkDisputed(ctx context.Context, transactionID int) (*models.Transaction, error) {
	txn, err := s.store.Transaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.ReconciliationStatus != models.ReconciliationPending {
		return nil, fmt.Errorf("dispute from %s: %w", txn.ReconciliationStatus, ErrTransactionNotPending)
	}
	txn.ReconciliationStatus = models.ReconciliationDisputed
	if err := s.store.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("saving transaction %d: %w", transactionID, err)
	}
	return txn, nil
}

package ledger

import (
	"sort"

	"github.com/dukahub/backoffice/models"
)

// MatchQuality classifies a candidate invoice for a transaction by
// amount proximity.
type MatchQuality string

const (
	MatchExact MatchQuality = "exact"
	MatchClose MatchQuality = "close"
	MatchNone  MatchQuality = "none"
)

// Candidate is one ranked invoice proposal for a transaction.
type Candidate struct {
	Invoice     models.Invoice `json:"invoice"`
	AmountDelta models.Money   `json:"amount_delta"`
	Quality     MatchQuality   `json:"quality"`
}

// maxCandidates bounds the returned list; a presentation concern, not a
// correctness one. An exact match can never be dropped by the cap since
// delta zero always sorts first.
const maxCandidates = 10

// Classify labels the delta between an invoice total and a transaction
// amount: zero is exact, under 10% of the transaction amount is close.
// Integer comparison, no floats: delta < amount/10 <=> delta*10 < amount.
func Classify(delta, amount models.Money) MatchQuality {
	switch {
	case delta == 0:
		return MatchExact
	case delta*10 < amount:
		return MatchClose
	}
	return MatchNone
}

// RankCandidates orders unmatched invoices by how closely their total
// matches the transaction amount, ascending by absolute delta. Ties
// break by earlier due date (the most actionable candidate first), then
// by id so the order is deterministic. Pure read: no state is touched,
// and re-running with the same inputs yields the same order. Callers
// must not trust this snapshot for confirmation — ConfirmMatch
// re-validates against current state.
func RankCandidates(txn models.Transaction, unmatched []models.Invoice) []Candidate {
	candidates := make([]Candidate, 0, len(unmatched))
	for _, inv := range unmatched {
		delta := inv.TotalAmount - txn.Amount
		if delta < 0 {
			delta = -delta
		}
		candidates = append(candidates, Candidate{
			Invoice:     inv,
			AmountDelta: delta,
			Quality:     Classify(delta, txn.Amount),
		})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.AmountDelta != cb.AmountDelta {
			return ca.AmountDelta < cb.AmountDelta
		}
		da, db := dueDateKey(ca.Invoice), dueDateKey(cb.Invoice)
		if da != db {
			return da < db
		}
		return ca.Invoice.ID < cb.Invoice.ID
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// dueDateKey sorts invoices without a due date last.
func dueDateKey(inv models.Invoice) string {
	if inv.DueDate == nil || *inv.DueDate == "" {
		return "9999-12-31"
	}
	return *inv.DueDate
}

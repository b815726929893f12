package expense

import (
	"time"

	"github.com/splitnest/splitnest/internal/money"
)

// ShareKind distinguishes how a share came to exist.
type ShareKind string

const (
	// KindOrdinary is a share generated by splitting an expense.
	KindOrdinary ShareKind = "ordinary"
	// KindOverpaymentReturn is a reversed share created when a payment
	// exceeded the remaining balance of its target share.
	KindOverpaymentReturn ShareKind = "overpayment_return"
)

// openTolerance absorbs floating residue when deciding whether a share
// still has anything outstanding.
const openTolerance = 0.009

// Expense represents a shared expense paid by one participant.
type Expense struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	PayerID   string    `json:"payer_id"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Shares are loaded with the expense, ordered by creation.
	Shares []*Share `json:"shares,omitempty"`
}

// DebtorIDs returns the debtors of the ordinary shares, in share order.
func (e *Expense) DebtorIDs() []string {
	ids := make([]string, 0, len(e.Shares))
	for _, s := range e.Shares {
		if s.Kind == KindOrdinary {
			ids = append(ids, s.DebtorID)
		}
	}
	return ids
}

// HasPayments reports whether any share of this expense, ordinary or
// overpayment return, has at least one payment recorded. Once true, the
// split parameters are locked.
func (e *Expense) HasPayments() bool {
	for _, s := range e.Shares {
		if len(s.Payments) > 0 {
			return true
		}
	}
	return false
}

// Share is a directed debt: DebtorID owes CreditorID Amount, arising
// from ExpenseID. A share's amount never changes after creation; its
// state is derived from the payments applied to it.
type Share struct {
	ID            string    `json:"id"`
	ExpenseID     string    `json:"expense_id"`
	DebtorID      string    `json:"debtor_id"`
	CreditorID    string    `json:"creditor_id"`
	Amount        float64   `json:"amount"`
	Kind          ShareKind `json:"kind"`
	OriginShareID *string   `json:"origin_share_id,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	Payments []*Payment `json:"payments,omitempty"`
}

// PaidAmount sums the payments applied to this share.
func (s *Share) PaidAmount() float64 {
	amounts := make([]float64, len(s.Payments))
	for i, p := range s.Payments {
		amounts[i] = p.Amount
	}
	return money.Sum(amounts...)
}

// Remaining is the share amount minus payments, floored at zero.
func (s *Share) Remaining() float64 {
	remaining := money.Round2(s.Amount - s.PaidAmount())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Open reports whether anything meaningful is still outstanding.
func (s *Share) Open() bool {
	return s.Remaining() > openTolerance
}

// Payment records money moving from a share's debtor to its creditor.
// Payments are append-only; amounts are clamped at apply time so that
// the sum of payments never exceeds the share amount.
type Payment struct {
	ID        string    `json:"id"`
	ShareID   string    `json:"share_id"`
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id"`
	Amount    float64   `json:"amount"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

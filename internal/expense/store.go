package expense

import "context"

// Store is the persistence collaborator for the ledger. The Postgres
// Repository implements it; tests use an in-memory fake.
//
// Each composite method is one atomic unit: implementations must write
// the expense row before its shares and either apply the whole call or
// none of it.
type Store interface {
	// GetExpense loads one expense with its shares and their payments.
	// Returns nil when the expense does not exist.
	GetExpense(ctx context.Context, id string) (*Expense, error)

	// ListExpenses loads the full ledger snapshot (every expense with
	// its shares and their payments) in one consistent read. Expenses
	// come newest first; shares and payments in creation order.
	ListExpenses(ctx context.Context) ([]*Expense, error)

	// InsertExpense persists a new expense together with its shares.
	InsertExpense(ctx context.Context, e *Expense, shares []*Share) error

	// UpdateExpense persists changed expense fields. When shares is
	// non-nil the existing shares are replaced (delete then insert) in
	// the same transaction.
	UpdateExpense(ctx context.Context, e *Expense, shares []*Share) error

	// DeleteExpense removes the expense; shares and payments go with it
	// via the store's cascade rules.
	DeleteExpense(ctx context.Context, id string) error

	// GetShare loads one share with its payments. Returns nil when the
	// share does not exist.
	GetShare(ctx context.Context, id string) (*Share, error)

	// RecordPayment persists a payment and, when spill is non-nil, the
	// reverse share spawned by an overpayment, atomically. Either may be
	// nil (a fully clamped payment spills without paying, an exact
	// payment pays without spilling), but not both.
	RecordPayment(ctx context.Context, p *Payment, spill *Share) error
}

package expense

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/splitnest/splitnest/internal/expense/split"
	"github.com/splitnest/splitnest/internal/money"
	"github.com/splitnest/splitnest/internal/observability"
)

// Common errors
var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrShareNotFound      = errors.New("share not found")
	ErrNonPositivePayment = errors.New("payment amount must be greater than zero")
	ErrPaymentMismatch    = errors.New("payment parties do not match the share's debtor and creditor")
	ErrSplitLocked        = errors.New("payments already recorded for this expense: amount, payer and participants are locked, create a correcting expense instead")
)

// Notifier receives ledger events. Implemented by the notification
// service; a nil Notifier disables notifications.
type Notifier interface {
	NotifyShareAssigned(ctx context.Context, debtorID, expenseID, title string, amount float64)
	NotifyPaymentReceived(ctx context.Context, creditorID, shareID string, amount float64)
	NotifyReturnCreated(ctx context.Context, debtorID, shareID string, amount float64)
}

// Service owns the ledger: it creates and edits expenses, keeps shares
// consistent with the split rule, and applies payments.
type Service struct {
	store    Store
	notifier Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewService creates a new expense service with dependencies injected
func NewService(store Store, notifier Notifier, metrics *observability.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, metrics: metrics, logger: logger}
}

// Create validates the request, splits the amount into per-debtor shares
// and persists expense plus shares as one unit.
func (s *Service) Create(ctx context.Context, req *CreateExpenseRequest) (*Expense, error) {
	amount := money.Round2(req.Amount)

	shares, err := split.Shares(amount, req.PayerID, req.DebtorIDs)
	if err != nil {
		return nil, err
	}

	e := &Expense{
		ID:      uuid.NewString(),
		Title:   req.Title,
		Amount:  amount,
		PayerID: req.PayerID,
		Note:    req.Note,
	}

	rows := make([]*Share, len(shares))
	for i, sh := range shares {
		rows[i] = &Share{
			ID:         uuid.NewString(),
			ExpenseID:  e.ID,
			DebtorID:   sh.DebtorID,
			CreditorID: req.PayerID,
			Amount:     sh.Amount,
			Kind:       KindOrdinary,
		}
	}

	if err := s.store.InsertExpense(ctx, e, rows); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrExpensesCreated()
	}
	if s.notifier != nil {
		for _, row := range rows {
			s.notifier.NotifyShareAssigned(ctx, row.DebtorID, e.ID, e.Title, row.Amount)
		}
	}

	s.logger.Info("expense created",
		zap.String("expense_id", e.ID),
		zap.Float64("amount", e.Amount),
		zap.Int("shares", len(rows)),
	)

	return e, nil
}

// Update edits an expense. Title and note can always change; amount,
// payer and debtor set are locked once any share of the expense has a
// payment recorded. An unlocked split change regenerates all shares.
func (s *Service) Update(ctx context.Context, id string, req *UpdateExpenseRequest) (*Expense, error) {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}

	amount := money.Round2(req.Amount)

	shares, err := split.Shares(amount, req.PayerID, req.DebtorIDs)
	if err != nil {
		return nil, err
	}

	splitChanged := amount != money.Round2(existing.Amount) ||
		req.PayerID != existing.PayerID ||
		!sameIDSet(debtorIDsOf(shares), existing.DebtorIDs())

	// Whole update is rejected, including the title/note part: the
	// caller asked for a split change that cannot happen.
	if splitChanged && existing.HasPayments() {
		return nil, ErrSplitLocked
	}

	updated := &Expense{
		ID:        existing.ID,
		Title:     req.Title,
		Amount:    amount,
		PayerID:   req.PayerID,
		Note:      req.Note,
		CreatedAt: existing.CreatedAt,
		Shares:    existing.Shares,
	}

	var rows []*Share
	if splitChanged {
		rows = make([]*Share, len(shares))
		for i, sh := range shares {
			rows[i] = &Share{
				ID:         uuid.NewString(),
				ExpenseID:  existing.ID,
				DebtorID:   sh.DebtorID,
				CreditorID: req.PayerID,
				Amount:     sh.Amount,
				Kind:       KindOrdinary,
			}
		}
	}

	if err := s.store.UpdateExpense(ctx, updated, rows); err != nil {
		return nil, err
	}

	s.logger.Info("expense updated",
		zap.String("expense_id", id),
		zap.Bool("split_regenerated", splitChanged),
	)

	return updated, nil
}

// Delete removes an expense; the store cascades shares and payments.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrExpenseNotFound
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.logger.Info("expense deleted", zap.String("expense_id", id))
	return nil
}

// GetByID retrieves an expense with shares and payments.
func (s *Service) GetByID(ctx context.Context, id string) (*Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// List retrieves the full ledger snapshot.
func (s *Service) List(ctx context.Context) ([]*Expense, error) {
	return s.store.ListExpenses(ctx)
}

// RecordPayment applies a payment against a share. The applied amount is
// clamped to the share's remaining balance; any excess becomes a new
// reverse share owed back to the payer. The share's own amount never
// changes.
func (s *Service) RecordPayment(ctx context.Context, shareID string, req *RecordPaymentRequest) (*Payment, *Share, error) {
	if req.Amount <= 0 {
		return nil, nil, ErrNonPositivePayment
	}

	share, err := s.store.GetShare(ctx, shareID)
	if err != nil {
		return nil, nil, err
	}
	if share == nil {
		return nil, nil, ErrShareNotFound
	}

	if req.FromID != share.DebtorID || req.ToID != share.CreditorID {
		return nil, nil, ErrPaymentMismatch
	}

	amount := money.Round2(req.Amount)
	remaining := share.Remaining()
	applied := money.Round2(amount)
	if remaining < applied {
		applied = remaining
	}
	extra := money.Round2(amount - applied)

	var payment *Payment
	if applied > 0 {
		payment = &Payment{
			ID:      uuid.NewString(),
			ShareID: share.ID,
			FromID:  share.DebtorID,
			ToID:    share.CreditorID,
			Amount:  applied,
			Note:    req.Note,
		}
	}

	var spill *Share
	if extra > 0 {
		origin := share.ID
		spill = &Share{
			ID:            uuid.NewString(),
			ExpenseID:     share.ExpenseID,
			DebtorID:      share.CreditorID,
			CreditorID:    share.DebtorID,
			Amount:        extra,
			Kind:          KindOverpaymentReturn,
			OriginShareID: &origin,
			Note:          req.Note,
		}
	}

	if err := s.store.RecordPayment(ctx, payment, spill); err != nil {
		return nil, nil, err
	}

	if s.metrics != nil {
		if payment != nil {
			s.metrics.IncrPaymentsRecorded()
		}
		if spill != nil {
			s.metrics.IncrReturnsCreated()
		}
	}
	if s.notifier != nil {
		if payment != nil {
			s.notifier.NotifyPaymentReceived(ctx, share.CreditorID, share.ID, payment.Amount)
		}
		if spill != nil {
			s.notifier.NotifyReturnCreated(ctx, spill.DebtorID, spill.ID, spill.Amount)
		}
	}

	s.logger.Info("payment recorded",
		zap.String("share_id", share.ID),
		zap.Float64("applied", applied),
		zap.Float64("returned", extra),
	)

	return payment, spill, nil
}

func debtorIDsOf(shares []split.Share) []string {
	ids := make([]string, len(shares))
	for i, sh := range shares {
		ids[i] = sh.DebtorID
	}
	return ids
}

// sameIDSet compares two id lists as sets.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if !seen[id] {
			return false
		}
	}
	return true
}

package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/splitnest/splitnest/internal/expense/split"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	expenses []*Expense
	now      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeStore) GetExpense(_ context.Context, id string) (*Expense, error) {
	for _, e := range f.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListExpenses(_ context.Context) ([]*Expense, error) {
	out := make([]*Expense, len(f.expenses))
	for i := range f.expenses {
		out[len(f.expenses)-1-i] = f.expenses[i] // newest first
	}
	return out, nil
}

func (f *fakeStore) InsertExpense(_ context.Context, e *Expense, shares []*Share) error {
	e.CreatedAt = f.tick()
	for _, s := range shares {
		s.CreatedAt = f.tick()
	}
	e.Shares = shares
	f.expenses = append(f.expenses, e)
	return nil
}

func (f *fakeStore) UpdateExpense(_ context.Context, e *Expense, shares []*Share) error {
	for i, old := range f.expenses {
		if old.ID == e.ID {
			if shares != nil {
				for _, s := range shares {
					s.CreatedAt = f.tick()
				}
				e.Shares = shares
			}
			f.expenses[i] = e
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) DeleteExpense(_ context.Context, id string) error {
	for i, e := range f.expenses {
		if e.ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) GetShare(_ context.Context, id string) (*Share, error) {
	for _, e := range f.expenses {
		for _, s := range e.Shares {
			if s.ID == id {
				return s, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeStore) RecordPayment(_ context.Context, p *Payment, spill *Share) error {
	if p != nil {
		share, _ := f.GetShare(context.Background(), p.ShareID)
		if share == nil {
			return errors.New("share not found")
		}
		p.CreatedAt = f.tick()
		share.Payments = append(share.Payments, p)
	}
	if spill != nil {
		for _, e := range f.expenses {
			if e.ID == spill.ExpenseID {
				spill.CreatedAt = f.tick()
				e.Shares = append(e.Shares, spill)
				return nil
			}
		}
		return errors.New("expense not found")
	}
	return nil
}

func newTestService(store Store) *Service {
	return NewService(store, nil, nil, nil)
}

func TestCreateSplitsEvenly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	e, err := svc.Create(context.Background(), &CreateExpenseRequest{
		Title:     "Groceries",
		Amount:    30.00,
		PayerID:   "alice",
		DebtorIDs: []string{"bob", "carol"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(e.Shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(e.Shares))
	}
	for _, s := range e.Shares {
		if s.Amount != 10.00 {
			t.Errorf("share %s: amount = %v, want 10.00", s.DebtorID, s.Amount)
		}
		if s.CreditorID != "alice" {
			t.Errorf("share %s: creditor = %s, want alice", s.DebtorID, s.CreditorID)
		}
		if s.Kind != KindOrdinary {
			t.Errorf("share %s: kind = %s, want ordinary", s.DebtorID, s.Kind)
		}
	}
}

func TestCreateFrontLoadsRemainder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	// 10.01 over 3 parts: base 3.33, remainder 2 cents to first two debtors.
	e, err := svc.Create(context.Background(), &CreateExpenseRequest{
		Title:     "Taxi",
		Amount:    10.01,
		PayerID:   "alice",
		DebtorIDs: []string{"bob", "carol"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := []float64{3.34, 3.34}
	for i, s := range e.Shares {
		if s.Amount != want[i] {
			t.Errorf("share %d: amount = %v, want %v", i, s.Amount, want[i])
		}
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateExpenseRequest{Title: "x", Amount: 10, PayerID: "alice", DebtorIDs: nil})
	if !errors.Is(err, split.ErrNoDebtors) {
		t.Errorf("no debtors: got %v, want ErrNoDebtors", err)
	}

	_, err = svc.Create(ctx, &CreateExpenseRequest{Title: "x", Amount: 10, PayerID: "alice", DebtorIDs: []string{"alice"}})
	if !errors.Is(err, split.ErrPayerIsDebtor) {
		t.Errorf("payer as debtor: got %v, want ErrPayerIsDebtor", err)
	}

	_, err = svc.Create(ctx, &CreateExpenseRequest{Title: "x", Amount: 0, PayerID: "alice", DebtorIDs: []string{"bob"}})
	if !errors.Is(err, split.ErrNonPositiveAmount) {
		t.Errorf("zero amount: got %v, want ErrNonPositiveAmount", err)
	}
}

func TestRecordPaymentExact(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Rent", Amount: 90, PayerID: "alice", DebtorIDs: []string{"bob", "carol"},
	})
	share := e.Shares[0]

	p, spill, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{
		FromID: share.DebtorID, ToID: "alice", Amount: 30,
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if p == nil || p.Amount != 30 {
		t.Fatalf("payment = %+v, want amount 30", p)
	}
	if spill != nil {
		t.Fatalf("unexpected spill share: %+v", spill)
	}
	if share.Remaining() != 0 {
		t.Errorf("remaining = %v, want 0", share.Remaining())
	}
	if share.Open() {
		t.Error("share should be settled")
	}
}

func TestRecordPaymentClampsAndSpills(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Utilities", Amount: 60, PayerID: "alice", DebtorIDs: []string{"bob"},
	})
	share := e.Shares[0] // bob owes alice 30.00

	// Pay 50 against a 30 share: 30 applied, 20 returned.
	p, spill, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{
		FromID: "bob", ToID: "alice", Amount: 50,
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if p.Amount != 30 {
		t.Errorf("applied = %v, want 30 (clamped)", p.Amount)
	}
	if spill == nil {
		t.Fatal("expected an overpayment return share")
	}
	if spill.Amount != 20 {
		t.Errorf("return amount = %v, want 20", spill.Amount)
	}
	if spill.DebtorID != "alice" || spill.CreditorID != "bob" {
		t.Errorf("return direction = %s->%s, want alice->bob", spill.DebtorID, spill.CreditorID)
	}
	if spill.Kind != KindOverpaymentReturn {
		t.Errorf("return kind = %s, want overpayment_return", spill.Kind)
	}
	if spill.OriginShareID == nil || *spill.OriginShareID != share.ID {
		t.Errorf("origin share = %v, want %s", spill.OriginShareID, share.ID)
	}
	if spill.ExpenseID != e.ID {
		t.Errorf("return expense = %s, want %s", spill.ExpenseID, e.ID)
	}
	if share.Amount != 30 {
		t.Errorf("original share amount changed to %v", share.Amount)
	}
}

func TestRecordPaymentFullyClampedOnlySpills(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Dinner", Amount: 20, PayerID: "alice", DebtorIDs: []string{"bob"},
	})
	share := e.Shares[0] // 10.00

	if _, _, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{FromID: "bob", ToID: "alice", Amount: 10}); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	// Share is settled; a further payment is all spillover.
	p, spill, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{FromID: "bob", ToID: "alice", Amount: 5})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if p != nil {
		t.Errorf("expected no payment row, got %+v", p)
	}
	if spill == nil || spill.Amount != 5 {
		t.Fatalf("spill = %+v, want 5.00 return", spill)
	}
}

func TestRecordPaymentErrors(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Snacks", Amount: 12, PayerID: "alice", DebtorIDs: []string{"bob"},
	})
	share := e.Shares[0]

	if _, _, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{FromID: "bob", ToID: "alice", Amount: 0}); !errors.Is(err, ErrNonPositivePayment) {
		t.Errorf("zero amount: got %v, want ErrNonPositivePayment", err)
	}
	if _, _, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{FromID: "carol", ToID: "alice", Amount: 5}); !errors.Is(err, ErrPaymentMismatch) {
		t.Errorf("wrong payer: got %v, want ErrPaymentMismatch", err)
	}
	if _, _, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{FromID: "bob", ToID: "carol", Amount: 5}); !errors.Is(err, ErrPaymentMismatch) {
		t.Errorf("wrong recipient: got %v, want ErrPaymentMismatch", err)
	}
	if _, _, err := svc.RecordPayment(ctx, "missing", &RecordPaymentRequest{FromID: "bob", ToID: "alice", Amount: 5}); !errors.Is(err, ErrShareNotFound) {
		t.Errorf("missing share: got %v, want ErrShareNotFound", err)
	}
}

func TestUpdateLocksSplitAfterPayment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Internet", Amount: 45, PayerID: "alice", DebtorIDs: []string{"bob", "carol"},
	})
	share := e.Shares[0]
	if _, _, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{FromID: share.DebtorID, ToID: "alice", Amount: 5}); err != nil {
		t.Fatalf("payment: %v", err)
	}

	// Amount change rejected.
	_, err := svc.Update(ctx, e.ID, &UpdateExpenseRequest{
		Title: "Internet", Amount: 60, PayerID: "alice", DebtorIDs: []string{"bob", "carol"},
	})
	if !errors.Is(err, ErrSplitLocked) {
		t.Errorf("amount change: got %v, want ErrSplitLocked", err)
	}

	// Debtor set change rejected, even with a changed title riding along.
	_, err = svc.Update(ctx, e.ID, &UpdateExpenseRequest{
		Title: "Internet (fibre)", Amount: 45, PayerID: "alice", DebtorIDs: []string{"bob", "dave"},
	})
	if !errors.Is(err, ErrSplitLocked) {
		t.Errorf("debtor change: got %v, want ErrSplitLocked", err)
	}
	got, _ := svc.GetByID(ctx, e.ID)
	if got.Title != "Internet" {
		t.Errorf("title changed despite rejected update: %q", got.Title)
	}

	// Payer change rejected.
	_, err = svc.Update(ctx, e.ID, &UpdateExpenseRequest{
		Title: "Internet", Amount: 45, PayerID: "bob", DebtorIDs: []string{"alice", "carol"},
	})
	if !errors.Is(err, ErrSplitLocked) {
		t.Errorf("payer change: got %v, want ErrSplitLocked", err)
	}
}

func TestUpdateTitleAndNoteAllowedUnderLock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Internet", Amount: 45, PayerID: "alice", DebtorIDs: []string{"bob", "carol"},
	})
	share := e.Shares[0]
	originalShareIDs := shareIDs(e.Shares)
	if _, _, err := svc.RecordPayment(ctx, share.ID, &RecordPaymentRequest{FromID: share.DebtorID, ToID: "alice", Amount: 5}); err != nil {
		t.Fatalf("payment: %v", err)
	}

	updated, err := svc.Update(ctx, e.ID, &UpdateExpenseRequest{
		Title: "Internet (fibre)", Amount: 45, PayerID: "alice", DebtorIDs: []string{"carol", "bob"}, Note: "upgraded plan",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Internet (fibre)" || updated.Note != "upgraded plan" {
		t.Errorf("title/note not updated: %+v", updated)
	}
	got, _ := svc.GetByID(ctx, e.ID)
	if !sameIDSet(shareIDs(got.Shares), originalShareIDs) {
		t.Error("shares were regenerated on a title/note-only update")
	}
}

func TestUpdateRegeneratesSharesWhenUnlocked(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Cleaning", Amount: 30, PayerID: "alice", DebtorIDs: []string{"bob"},
	})
	oldIDs := shareIDs(e.Shares)

	updated, err := svc.Update(ctx, e.ID, &UpdateExpenseRequest{
		Title: "Cleaning", Amount: 30, PayerID: "alice", DebtorIDs: []string{"bob", "carol"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Shares) != 2 {
		t.Fatalf("expected 2 regenerated shares, got %d", len(updated.Shares))
	}
	for _, s := range updated.Shares {
		if s.Amount != 10.00 {
			t.Errorf("share %s: amount = %v, want 10.00", s.DebtorID, s.Amount)
		}
	}
	for _, id := range shareIDs(updated.Shares) {
		for _, old := range oldIDs {
			if id == old {
				t.Errorf("share %s survived regeneration", id)
			}
		}
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &CreateExpenseRequest{
		Title: "Coffee", Amount: 6, PayerID: "alice", DebtorIDs: []string{"bob"},
	})

	if err := svc.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("after delete: got %v, want ErrExpenseNotFound", err)
	}
	if err := svc.Delete(ctx, e.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("double delete: got %v, want ErrExpenseNotFound", err)
	}
}

func shareIDs(shares []*Share) []string {
	ids := make([]string, len(shares))
	for i, s := range shares {
		ids[i] = s.ID
	}
	return ids
}

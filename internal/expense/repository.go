package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository is the Postgres implementation of Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// GetExpense retrieves an expense with its shares and payments
func (r *Repository) GetExpense(ctx context.Context, id string) (*Expense, error) {
	query := `
		SELECT id, title, amount, payer_id, note, created_at
		FROM expenses
		WHERE id = $1
	`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.Title,
		&e.Amount,
		&e.PayerID,
		&e.Note,
		&e.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := r.attachShares(ctx, []*Expense{e}); err != nil {
		return nil, err
	}

	return e, nil
}

// ListExpenses retrieves the full ledger snapshot, newest expense first
func (r *Repository) ListExpenses(ctx context.Context) ([]*Expense, error) {
	query := `
		SELECT id, title, amount, payer_id, note, created_at
		FROM expenses
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Amount,
			&e.PayerID,
			&e.Note,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	if err := r.attachShares(ctx, expenses); err != nil {
		return nil, err
	}

	return expenses, nil
}

// attachShares loads shares and payments for the given expenses in two
// queries and nests them in creation order.
func (r *Repository) attachShares(ctx context.Context, expenses []*Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byExpense := make(map[string]*Expense, len(expenses))
	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		byExpense[e.ID] = e
		ids = append(ids, e.ID)
	}

	shareQuery := `
		SELECT id, expense_id, debtor_id, creditor_id, amount, kind, origin_share_id, note, created_at
		FROM shares
		WHERE expense_id = ANY($1)
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, shareQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	byShare := make(map[string]*Share)
	for rows.Next() {
		s := &Share{}
		if err := rows.Scan(
			&s.ID,
			&s.ExpenseID,
			&s.DebtorID,
			&s.CreditorID,
			&s.Amount,
			&s.Kind,
			&s.OriginShareID,
			&s.Note,
			&s.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		byShare[s.ID] = s
		if e, ok := byExpense[s.ExpenseID]; ok {
			e.Shares = append(e.Shares, s)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to get shares: %w", err)
	}

	if len(byShare) == 0 {
		return nil
	}

	shareIDs := make([]string, 0, len(byShare))
	for id := range byShare {
		shareIDs = append(shareIDs, id)
	}

	paymentQuery := `
		SELECT id, share_id, from_id, to_id, amount, note, created_at
		FROM payments
		WHERE share_id = ANY($1)
		ORDER BY created_at, id
	`

	payRows, err := r.db.QueryContext(ctx, paymentQuery, pq.Array(shareIDs))
	if err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		p := &Payment{}
		if err := payRows.Scan(
			&p.ID,
			&p.ShareID,
			&p.FromID,
			&p.ToID,
			&p.Amount,
			&p.Note,
			&p.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		if s, ok := byShare[p.ShareID]; ok {
			s.Payments = append(s.Payments, p)
		}
	}
	if err := payRows.Err(); err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}

	return nil
}

// InsertExpense persists an expense and its shares in one transaction
func (r *Repository) InsertExpense(ctx context.Context, e *Expense, shares []*Share) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (id, title, amount, payer_id, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, query,
		e.ID, e.Title, e.Amount, e.PayerID, e.Note,
	).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertShares(ctx, tx, shares); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}

	e.Shares = shares
	return nil
}

// UpdateExpense persists changed fields; a non-nil shares slice replaces
// the existing shares in the same transaction
func (r *Repository) UpdateExpense(ctx context.Context, e *Expense, shares []*Share) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE expenses
		SET title = $2, amount = $3, payer_id = $4, note = $5
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, query, e.ID, e.Title, e.Amount, e.PayerID, e.Note)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("expense not found")
	}

	if shares != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shares WHERE expense_id = $1`, e.ID); err != nil {
			return fmt.Errorf("failed to delete shares: %w", err)
		}
		if err := insertShares(ctx, tx, shares); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense update: %w", err)
	}

	if shares != nil {
		e.Shares = shares
	}
	return nil
}

// DeleteExpense removes an expense; shares and payments cascade
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("expense not found")
	}

	return nil
}

// GetShare retrieves a share with its payments
func (r *Repository) GetShare(ctx context.Context, id string) (*Share, error) {
	query := `
		SELECT id, expense_id, debtor_id, creditor_id, amount, kind, origin_share_id, note, created_at
		FROM shares
		WHERE id = $1
	`

	s := &Share{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.ExpenseID,
		&s.DebtorID,
		&s.CreditorID,
		&s.Amount,
		&s.Kind,
		&s.OriginShareID,
		&s.Note,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	paymentQuery := `
		SELECT id, share_id, from_id, to_id, amount, note, created_at
		FROM payments
		WHERE share_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, paymentQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &Payment{}
		if err := rows.Scan(
			&p.ID,
			&p.ShareID,
			&p.FromID,
			&p.ToID,
			&p.Amount,
			&p.Note,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		s.Payments = append(s.Payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	return s, nil
}

// RecordPayment persists a payment and an optional spill share atomically
func (r *Repository) RecordPayment(ctx context.Context, p *Payment, spill *Share) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if p != nil {
		query := `
			INSERT INTO payments (id, share_id, from_id, to_id, amount, note)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at
		`
		if err := tx.QueryRowContext(ctx, query,
			p.ID, p.ShareID, p.FromID, p.ToID, p.Amount, p.Note,
		).Scan(&p.CreatedAt); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
	}

	if spill != nil {
		if err := insertShares(ctx, tx, []*Share{spill}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}

	return nil
}

// insertShares inserts shares inside an open transaction.
func insertShares(ctx context.Context, tx *sql.Tx, shares []*Share) error {
	query := `
		INSERT INTO shares (id, expense_id, debtor_id, creditor_id, amount, kind, origin_share_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	for _, s := range shares {
		if err := tx.QueryRowContext(ctx, query,
			s.ID, s.ExpenseID, s.DebtorID, s.CreditorID, s.Amount, s.Kind, s.OriginShareID, s.Note,
		).Scan(&s.CreatedAt); err != nil {
			return fmt.Errorf("failed to create share: %w", err)
		}
	}

	return nil
}

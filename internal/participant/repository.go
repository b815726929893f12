package participant

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles participant data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new participant repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateBatch inserts participants for the given names in one
// transaction and returns them in input order.
func (r *Repository) CreateBatch(ctx context.Context, participants []*Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO participants (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`

	for _, p := range participants {
		if err := tx.QueryRowContext(ctx, query, p.ID, p.Name).Scan(&p.CreatedAt); err != nil {
			return fmt.Errorf("failed to create participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit participants: %w", err)
	}

	return nil
}

// GetByID retrieves a participant by their ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Participant, error) {
	query := `
		SELECT id, name, created_at
		FROM participants
		WHERE id = $1
	`

	p := &Participant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return p, nil
}

// List retrieves all participants, oldest first: the order the
// household added them.
func (r *Repository) List(ctx context.Context) ([]*Participant, error) {
	query := `
		SELECT id, name, created_at
		FROM participants
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	return participants, nil
}

// Delete removes a participant; their shares and payments are handled by
// the store's cascade rules.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("participant not found")
	}

	return nil
}

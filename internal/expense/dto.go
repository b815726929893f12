package expense

import "time"

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	Title     string   `json:"title" validate:"required,min=1,max=255"`
	Amount    float64  `json:"amount" validate:"required,gt=0"`
	PayerID   string   `json:"payer_id" validate:"required"`
	DebtorIDs []string `json:"debtor_ids" validate:"required,min=1"`
	Note      string   `json:"note,omitempty"`
}

// UpdateExpenseRequest carries the full replacement state of an expense.
// Amount, payer and debtors are rejected with a conflict if the split is
// locked by recorded payments.
type UpdateExpenseRequest struct {
	Title     string   `json:"title" validate:"required,min=1,max=255"`
	Amount    float64  `json:"amount" validate:"required,gt=0"`
	PayerID   string   `json:"payer_id" validate:"required"`
	DebtorIDs []string `json:"debtor_ids" validate:"required,min=1"`
	Note      string   `json:"note,omitempty"`
}

// RecordPaymentRequest represents a payment against one share
type RecordPaymentRequest struct {
	FromID string  `json:"from_id" validate:"required"`
	ToID   string  `json:"to_id" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Amount    float64          `json:"amount"`
	PayerID   string           `json:"payer_id"`
	DebtorIDs []string         `json:"debtor_ids"`
	Note      string           `json:"note,omitempty"`
	CreatedAt string           `json:"created_at"`
	Shares    []*ShareResponse `json:"shares,omitempty"`
}

// ShareResponse represents the response for a share
type ShareResponse struct {
	ID            string             `json:"id"`
	ExpenseID     string             `json:"expense_id"`
	DebtorID      string             `json:"debtor_id"`
	CreditorID    string             `json:"creditor_id"`
	Amount        float64            `json:"amount"`
	PaidAmount    float64            `json:"paid_amount"`
	Remaining     float64            `json:"remaining"`
	Settled       bool               `json:"settled"`
	Kind          ShareKind          `json:"kind"`
	OriginShareID *string            `json:"origin_share_id,omitempty"`
	Note          string             `json:"note,omitempty"`
	CreatedAt     string             `json:"created_at"`
	Payments      []*PaymentResponse `json:"payments,omitempty"`
}

// PaymentResponse represents the response for a payment
type PaymentResponse struct {
	ID        string  `json:"id"`
	ShareID   string  `json:"share_id"`
	FromID    string  `json:"from_id"`
	ToID      string  `json:"to_id"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
}

const timeFormat = time.RFC3339

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount,
		PayerID:   e.PayerID,
		DebtorIDs: e.DebtorIDs(),
		Note:      e.Note,
		CreatedAt: e.CreatedAt.UTC().Format(timeFormat),
	}
	for _, s := range e.Shares {
		resp.Shares = append(resp.Shares, s.ToResponse())
	}
	return resp
}

// ToResponse converts a Share model to a ShareResponse DTO
func (s *Share) ToResponse() *ShareResponse {
	resp := &ShareResponse{
		ID:            s.ID,
		ExpenseID:     s.ExpenseID,
		DebtorID:      s.DebtorID,
		CreditorID:    s.CreditorID,
		Amount:        s.Amount,
		PaidAmount:    s.PaidAmount(),
		Remaining:     s.Remaining(),
		Settled:       !s.Open(),
		Kind:          s.Kind,
		OriginShareID: s.OriginShareID,
		Note:          s.Note,
		CreatedAt:     s.CreatedAt.UTC().Format(timeFormat),
	}
	for _, p := range s.Payments {
		resp.Payments = append(resp.Payments, p.ToResponse())
	}
	return resp
}

// ToResponse converts a Payment model to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:        p.ID,
		ShareID:   p.ShareID,
		FromID:    p.FromID,
		ToID:      p.ToID,
		Amount:    p.Amount,
		Note:      p.Note,
		CreatedAt: p.CreatedAt.UTC().Format(timeFormat),
	}
}

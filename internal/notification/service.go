package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic. The ledger event helpers
// never fail the calling operation: a notification that cannot be
// written is logged and dropped.
type Service struct {
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a new notification service
func NewService(repo *Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

// ListByRecipientID retrieves notifications for a participant
func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, unreadOnly bool) ([]*Notification, error) {
	return s.repo.ListByRecipientID(ctx, recipientID, unreadOnly)
}

// MarkAsRead marks a notification as read for its recipient
func (s *Service) MarkAsRead(ctx context.Context, id, recipientID string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientID != recipientID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all of a participant's notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, recipientID)
}

// Ledger event helpers. These satisfy the expense package's Notifier.

// NotifyShareAssigned tells a debtor they owe a share of a new expense.
func (s *Service) NotifyShareAssigned(ctx context.Context, debtorID, expenseID, title string, amount float64) {
	message := fmt.Sprintf("You owe %.2f for %q", amount, title)
	s.create(ctx, debtorID, message, "EXPENSE", expenseID)
}

// NotifyPaymentReceived tells a creditor a payment was recorded for them.
func (s *Service) NotifyPaymentReceived(ctx context.Context, creditorID, shareID string, amount float64) {
	message := fmt.Sprintf("A payment of %.2f was recorded for you", amount)
	s.create(ctx, creditorID, message, "SHARE", shareID)
}

// NotifyReturnCreated tells a participant an overpayment left them owing
// money back.
func (s *Service) NotifyReturnCreated(ctx context.Context, debtorID, shareID string, amount float64) {
	message := fmt.Sprintf("An overpayment of %.2f is now owed back by you", amount)
	s.create(ctx, debtorID, message, "SHARE", shareID)
}

func (s *Service) create(ctx context.Context, recipientID, message, entityType, entityID string) {
	n := &Notification{
		ID:                uuid.NewString(),
		RecipientID:       recipientID,
		Message:           message,
		RelatedEntityType: &entityType,
		RelatedEntityID:   &entityID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to create notification",
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
	}
}

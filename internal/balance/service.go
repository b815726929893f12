package balance

import (
	"context"

	"github.com/splitnest/splitnest/internal/expense"
)

// Overview is the whole-ledger netted view.
type Overview struct {
	Groups      []*Group          `json:"groups"`
	Adjustments []*PairAdjustment `json:"adjustments"`
}

// Service computes netted views over fresh ledger snapshots. It holds no
// state and caches nothing: the view is derived again on every call.
type Service struct {
	store expense.Store
}

// NewService creates a new balance service
func NewService(store expense.Store) *Service {
	return &Service{store: store}
}

// Overview fetches one consistent snapshot and nets it.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	groups, adjustments := Settle(BuildGroups(expenses))
	return &Overview{Groups: groups, Adjustments: adjustments}, nil
}

// ForParticipant nets a fresh snapshot and projects it for one
// participant.
func (s *Service) ForParticipant(ctx context.Context, participantID string) (*Summary, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	groups, adjustments := Settle(BuildGroups(expenses))
	return Summarize(groups, adjustments, participantID), nil
}

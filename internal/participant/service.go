package participant

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNoNames             = errors.New("at least one participant name is required")
)

// Service handles participant business logic
type Service struct {
	repo *Repository
}

// NewService creates a new participant service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateBatch creates participants from the given names. Names are
// trimmed and blanks dropped; at least one usable name is required.
func (s *Service) CreateBatch(ctx context.Context, names []string) ([]*Participant, error) {
	participants := make([]*Participant, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		participants = append(participants, &Participant{
			ID:   uuid.NewString(),
			Name: name,
		})
	}
	if len(participants) == 0 {
		return nil, ErrNoNames
	}

	if err := s.repo.CreateBatch(ctx, participants); err != nil {
		return nil, err
	}

	return participants, nil
}

// GetByID retrieves a participant by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*Participant, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

// List retrieves all participants
func (s *Service) List(ctx context.Context) ([]*Participant, error) {
	return s.repo.List(ctx)
}

// Delete removes a participant
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrParticipantNotFound
	}

	return s.repo.Delete(ctx, id)
}

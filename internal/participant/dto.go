package participant

import "time"

// CreateParticipantsRequest creates one or more participants at once;
// the admin form accepts a comma-separated list of names.
type CreateParticipantsRequest struct {
	Names []string `json:"names" validate:"required,min=1"`
}

// ParticipantResponse represents the response for a participant
type ParticipantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a Participant model to a ParticipantResponse DTO
func (p *Participant) ToResponse() *ParticipantResponse {
	return &ParticipantResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

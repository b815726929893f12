package participant

import "time"

// Participant represents a member of the household ledger
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

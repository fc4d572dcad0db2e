package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Interaction is one logged chat exchange: the visitor's message and the
// reply the service produced for it.
type Interaction struct {
	ID          string
	CreatedAt   time.Time
	PortfolioID string
	Mode        string // "mumu" (shared docent) or "popo" (owner coach)
	Message     string
	Reply       string
	Status      string // "completed" or "failed"
}

// UsageCount is the aggregate call counter for one prompt type.
type UsageCount struct {
	PromptType string
	Count      int
	UpdatedAt  time.Time
}

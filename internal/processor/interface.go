package processor

import (
	"time"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetResultsForPostProcessing() ([]*ladder.MatchResult, error)
	UpdateProcessingStatus(matchID string, status ladder.ProcessingStatus) error
	GetStalePending(olderThan time.Duration) ([]*ladder.MatchResult, error)
	MarkReminded(matchID string) error
	GetAllPlayers() ([]ladder.RatingProfile, error)
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}

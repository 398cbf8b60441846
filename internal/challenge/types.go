package challenge

import (
	"database/sql"
	"sync"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
)

// store handles database operations for challenges.
type store struct {
	db      *sql.DB
	results ladder.LadderStore
	mu      sync.RWMutex
}

// Status is the lifecycle state of a challenge.
type Status string

const (
	// StatusOpen means the opponent has not responded yet.
	StatusOpen Status = "OPEN"
	// StatusAccepted means both players agreed to play.
	StatusAccepted Status = "ACCEPTED"
	// StatusCompleted means a result was reported for the challenge.
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled means the challenger withdrew before a response.
	StatusCancelled Status = "CANCELLED"
)

// Challenge is a singles invitation from one player to another. A completed
// challenge produces a regular pending match result.
type Challenge struct {
	ID            string  `json:"id"`
	ChallengerID  string  `json:"challenger_id"`
	OpponentID    string  `json:"opponent_id"`
	LeagueID      *string `json:"league_id,omitempty"`
	Status        Status  `json:"status"`
	Message       *string `json:"message,omitempty"`
	MatchResultID *string `json:"match_result_id,omitempty"`
	CreatedAt     int64   `json:"created_at"`
	UpdatedAt     int64   `json:"updated_at"`
}

// Involves reports whether userID is one of the two players.
func (c *Challenge) Involves(userID string) bool {
	return c.ChallengerID == userID || c.OpponentID == userID
}

// OpponentSuggestion is a candidate opponent ranked by rating proximity.
type OpponentSuggestion struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Elo    int    `json:"elo"`
	EloGap int    `json:"elo_gap"`
}

package league

import (
	"database/sql"
	"sync"
)

// store handles all database operations for leagues and membership.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Mode determines how a league ranks its members.
type Mode string

const (
	// ModeOpen ranks members by their global rating.
	ModeOpen Mode = "OPEN"
	// ModeScheduled ranks members by accumulated league points.
	ModeScheduled Mode = "SCHEDULED"
)

// Scoring is the points awarded per played match in a SCHEDULED league.
type Scoring struct {
	WinPoints  int `json:"win_points"`
	LossPoints int `json:"loss_points"`
}

// DefaultScoring awards 3 points per win and 1 per loss played.
func DefaultScoring() Scoring {
	return Scoring{WinPoints: 3, LossPoints: 1}
}

// League is a named competition with its own membership roster.
type League struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Mode      Mode    `json:"mode"`
	Scoring   Scoring `json:"scoring"`
	CreatedAt int64   `json:"created_at"`
}

// Member is one player's membership in a league.
type Member struct {
	LeagueID string `json:"league_id"`
	UserID   string `json:"user_id"`
	JoinedAt int64  `json:"joined_at"`
}

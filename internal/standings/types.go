package standings

import (
	"database/sql"
	"sync"
)

// store handles standings computation and snapshot persistence.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// Row is one player's line in a league table.
type Row struct {
	LeagueID      string `json:"league_id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Position      int    `json:"position"`
	Points        int    `json:"points"`
	Elo           int    `json:"elo"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	MatchesPlayed int    `json:"matches_played"`
	// PositionDelta is previous position minus current: positive means the
	// player climbed. Nil when no prior snapshot contains the player.
	PositionDelta *int `json:"position_delta,omitempty"`
}

// Snapshot is one computed league table. Snapshots are append-only; the
// latest one is the row set with the greatest ComputedAt.
type Snapshot struct {
	LeagueID   string `json:"league_id"`
	ComputedAt int64  `json:"computed_at"`
	Rows       []Row  `json:"rows"`
}

package standings

import "time"

// StandingsStore computes and serves league tables.
type StandingsStore interface {
	// Recompute builds a fresh table from accepted results and rating
	// profiles and persists it as a new snapshot.
	Recompute(leagueID string) (*Snapshot, error)
	// GetLatest returns the newest snapshot, or ErrNoSnapshot if the league
	// has never been computed.
	GetLatest(leagueID string) (*Snapshot, error)
	// Fresh returns the latest snapshot if it is younger than maxAge and
	// recomputes otherwise.
	Fresh(leagueID string, maxAge time.Duration) (*Snapshot, error)
}

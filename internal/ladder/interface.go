package ladder

import "time"

// LadderStore is the write and read surface of the match-result lifecycle
// and the rating ledger. Every transition commits atomically with its
// rating side effects or not at all.
type LadderStore interface {
	// CreateResult records a reported result in PENDING_CONFIRM. The winner
	// is derived from the scoreline and persisted for fast reads.
	CreateResult(input NewMatchResult) (*MatchResult, error)
	GetResult(id string) (*MatchResult, error)

	// Confirm settles a pending result. The actor must be a participant and
	// must not be the reporter. Competitive results apply rating deltas in
	// the same transaction. Replays of an already-settled result return the
	// result together with ErrAlreadyApplied.
	Confirm(matchID string, actor Actor) (*MatchResult, error)
	// Reject declines a pending result. Same actor guard as Confirm.
	// Never touches ratings.
	Reject(matchID string, actor Actor, reason string) (*MatchResult, error)
	// Dispute flags a pending or confirmed result. An applied rating stays
	// applied until an admin override.
	Dispute(matchID string, actor Actor, reason, message string) (*MatchResult, error)
	// ResolveConfirmAsIs is the admin escape hatch: forces RESOLVED and
	// applies the rating at most once.
	ResolveConfirmAsIs(matchID string, actor Actor) (*MatchResult, error)
	// ResolveOverride resolves with an explicit winner. If a rating was
	// already applied for the opposite outcome, compensating ledger entries
	// are appended; history is never rewritten.
	ResolveOverride(matchID string, actor Actor, winnerTeam int) (*MatchResult, error)

	GetProfile(userID string) (*RatingProfile, error)
	// GetEloHistory pages the ledger newest-first. A zero cursor starts at
	// the top; the returned cursor is zero when the page is the last one.
	GetEloHistory(userID string, cursor int64, limit int) ([]EloHistoryEntry, int64, error)
	// AdminAdjust appends a manual ledger entry and moves the profile by
	// delta. Used for rating corrections outside any match.
	AdminAdjust(userID string, delta int) error

	UpsertPlayers(players []PlayerSeed) error
	IsKnownPlayer(userID string) bool
	GetAllPlayers() ([]RatingProfile, error)

	// Post-settlement pipeline support.
	GetResultsForPostProcessing() ([]*MatchResult, error)
	UpdateProcessingStatus(matchID string, status ProcessingStatus) error
	GetStalePending(olderThan time.Duration) ([]*MatchResult, error)
	MarkReminded(matchID string) error
}

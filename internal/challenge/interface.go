package challenge

import "github.com/LucasFasolato/padel-point-engine/internal/ladder"

// ChallengeService manages singles challenges between players.
type ChallengeService interface {
	// Create opens a challenge from challengerID to opponentID. Both players
	// must have rating profiles.
	Create(challengerID, opponentID string, leagueID *string, message string) (*Challenge, error)
	Get(id string) (*Challenge, error)
	// ListForPlayer returns every challenge the player is part of,
	// newest first.
	ListForPlayer(userID string) ([]Challenge, error)

	// Accept marks the challenge as agreed. Only the challenged opponent
	// may accept, and only while the challenge is open.
	Accept(id, actorID string) (*Challenge, error)
	// Cancel withdraws an open challenge. Only the challenger may cancel.
	Cancel(id, actorID string) (*Challenge, error)
	// CompleteWithResult reports the scoreline of an accepted challenge and
	// creates a pending match result from it. The actor must be one of the
	// two players and becomes the reporter.
	CompleteWithResult(id string, actor ladder.Actor, sets []ladder.SetScore) (*ladder.MatchResult, error)

	// SuggestOpponents ranks other players by rating proximity to the given
	// player.
	SuggestOpponents(userID string, limit int) ([]OpponentSuggestion, error)
}

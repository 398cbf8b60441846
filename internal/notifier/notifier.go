package notifier

import (
	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For settled results (confirmed, rejected or resolved)
	SendResultSettledNotification(match *ladder.MatchResult, dryRun bool) error
	// For newly disputed results, aimed at league admins
	SendDisputeNotification(match *ladder.MatchResult, dryRun bool) error
	// For results stuck in PENDING_CONFIRM
	SendPendingReminder(match *ladder.MatchResult, dryRun bool) error
	// For league tables
	SendStandings(snapshot *standings.Snapshot, leagueName string, dryRun bool) error
	// For the club-wide rating leaderboard
	SendRatingLeaderboard(players []ladder.RatingProfile, dryRun bool) error

	// For formatting responses served directly over HTTP
	FormatStandingsResponse(snapshot *standings.Snapshot, leagueName string) (any, error)
	FormatRatingLeaderboardResponse(players []ladder.RatingProfile) (any, error)
}

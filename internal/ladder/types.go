package ladder

import (
	"database/sql"
	"sync"

	"github.com/LucasFasolato/padel-point-engine/internal/elo"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
)

// store handles all database operations for the competitive ladder.
type store struct {
	db       *sql.DB
	eloCfg   elo.Config
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	mu       sync.RWMutex
}

// Status is the confirmation state of a reported match result.
type Status string

const (
	StatusPendingConfirm Status = "PENDING_CONFIRM"
	StatusConfirmed      Status = "CONFIRMED"
	StatusRejected       Status = "REJECTED"
	StatusDisputed       Status = "DISPUTED"
	StatusResolved       Status = "RESOLVED"
)

// Accepted reports whether the status allows the result to feed ratings
// and standings.
func (s Status) Accepted() bool {
	return s == StatusConfirmed || s == StatusResolved
}

// MatchType distinguishes results that move ratings from casual play.
type MatchType string

const (
	MatchTypeCompetitive MatchType = "COMPETITIVE"
	MatchTypeFriendly    MatchType = "FRIENDLY"
)

// Source records where a result came from. Informational only; it never
// affects transitions.
type Source string

const (
	SourceReservation Source = "from-reservation"
	SourceManual      Source = "manual"
	SourceChallenge   Source = "challenge"
)

// ProcessingStatus drives the post-settlement pipeline (notifications,
// standings recomputes). Orthogonal to the confirmation Status.
type ProcessingStatus string

const (
	ProcessingPending          ProcessingStatus = "PENDING"
	ProcessingNotified         ProcessingStatus = "NOTIFIED"
	ProcessingStandingsUpdated ProcessingStatus = "STANDINGS_UPDATED"
	ProcessingDone             ProcessingStatus = "DONE"
)

// Role is the caller's role as asserted by the auth collaborator.
type Role string

const (
	RolePlayer        Role = "PLAYER"
	RoleLeagueAdmin   Role = "LEAGUE_ADMIN"
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
)

// Admin reports whether the role may resolve disputed or stuck results.
func (r Role) Admin() bool {
	return r == RoleLeagueAdmin || r == RolePlatformAdmin
}

// Actor identifies the authenticated caller of a transition.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Participant is one player on one side of a match.
type Participant struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// SetScore is the games won by each side in one set.
type SetScore struct {
	TeamA int `json:"team_a"`
	TeamB int `json:"team_b"`
}

// Team indices as persisted in winner_team.
const (
	TeamA = 1
	TeamB = 2
)

// MatchResult is a reported result and its full audit trail.
type MatchResult struct {
	ID               string           `json:"id"`
	LeagueID         *string          `json:"league_id,omitempty"`
	MatchType        MatchType        `json:"match_type"`
	Source           Source           `json:"source"`
	Status           Status           `json:"status"`
	ReportedBy       string           `json:"reported_by"`
	ConfirmedBy      *string          `json:"confirmed_by,omitempty"`
	WinnerTeam       int              `json:"winner_team"`
	Sets             []SetScore       `json:"sets"`
	TeamA            []Participant    `json:"team_a"`
	TeamB            []Participant    `json:"team_b"`
	RejectionReason  *string          `json:"rejection_reason,omitempty"`
	DisputeReason    *string          `json:"dispute_reason,omitempty"`
	DisputeMessage   *string          `json:"dispute_message,omitempty"`
	EloApplied       bool             `json:"elo_applied"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	RemindedAt       *int64           `json:"reminded_at,omitempty"`
	PlayedAt         int64            `json:"played_at"`
	CreatedAt        int64            `json:"created_at"`
	UpdatedAt        int64            `json:"updated_at"`
}

// Participants returns every player on both sides.
func (m *MatchResult) Participants() []Participant {
	out := make([]Participant, 0, len(m.TeamA)+len(m.TeamB))
	out = append(out, m.TeamA...)
	out = append(out, m.TeamB...)
	return out
}

// IsParticipant reports whether userID plays in this match.
func (m *MatchResult) IsParticipant(userID string) bool {
	for _, p := range m.Participants() {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// teamPlayers returns the players on the given team.
func (m *MatchResult) teamPlayers(team int) []Participant {
	if team == TeamA {
		return m.TeamA
	}
	return m.TeamB
}

// NewMatchResult is the creation payload supplied by the upstream producer
// (booking ingest, challenge flow, manual report).
type NewMatchResult struct {
	ID         string        `json:"id,omitempty"`
	LeagueID   *string       `json:"league_id,omitempty"`
	MatchType  MatchType     `json:"match_type"`
	Source     Source        `json:"source"`
	ReportedBy string        `json:"reported_by"`
	TeamA      []Participant `json:"team_a"`
	TeamB      []Participant `json:"team_b"`
	Sets       []SetScore    `json:"sets"`
	PlayedAt   int64         `json:"played_at"`
}

// RatingProfile is a player's current competitive standing.
type RatingProfile struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	Elo              int    `json:"elo"`
	InitialElo       int    `json:"initial_elo"`
	PeakElo          int    `json:"peak_elo"`
	Category         int    `json:"category"`
	CategoryLocked   bool   `json:"category_locked"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	MatchesPlayed    int    `json:"matches_played"`
	WinStreakCurrent int    `json:"win_streak_current"`
	EloDelta30d      int    `json:"elo_delta_30d"`
}

// HistoryReason tags why a ledger entry exists.
type HistoryReason string

const (
	ReasonMatchResult     HistoryReason = "MATCH_RESULT"
	ReasonAdminReversal   HistoryReason = "ADMIN_REVERSAL"
	ReasonAdminResult     HistoryReason = "ADMIN_RESULT"
	ReasonAdminAdjustment HistoryReason = "ADMIN_ADJUSTMENT"
)

// EloHistoryEntry is one append-only rating ledger row. Entries are never
// mutated or deleted; corrections land as compensating entries.
type EloHistoryEntry struct {
	ID            int64         `json:"id"`
	UserID        string        `json:"user_id"`
	MatchResultID *string       `json:"match_result_id,omitempty"`
	Delta         int           `json:"delta"`
	EloBefore     int           `json:"elo_before"`
	EloAfter      int           `json:"elo_after"`
	Reason        HistoryReason `json:"reason"`
	CreatedAt     int64         `json:"created_at"`
}

// PlayerSeed is the minimal payload for registering a player.
type PlayerSeed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

package notifier

import (
	"sync"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendResultSettledNotificationFunc func(match *ladder.MatchResult, dryRun bool) error
	SendDisputeNotificationFunc       func(match *ladder.MatchResult, dryRun bool) error
	SendPendingReminderFunc           func(match *ladder.MatchResult, dryRun bool) error
	SendStandingsFunc                 func(snapshot *standings.Snapshot, leagueName string, dryRun bool) error
	SendRatingLeaderboardFunc         func(players []ladder.RatingProfile, dryRun bool) error
	FormatStandingsResponseFunc       func(snapshot *standings.Snapshot, leagueName string) (any, error)
	FormatRatingLeaderboardRespFunc   func(players []ladder.RatingProfile) (any, error)

	// Call records
	SendResultSettledNotificationCalls []*ladder.MatchResult
	SendDisputeNotificationCalls       []*ladder.MatchResult
	SendPendingReminderCalls           []*ladder.MatchResult
	SendStandingsCalls                 []*standings.Snapshot
	SendRatingLeaderboardCalls         [][]ladder.RatingProfile
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultSettledNotificationCalls = nil
	m.SendDisputeNotificationCalls = nil
	m.SendPendingReminderCalls = nil
	m.SendStandingsCalls = nil
	m.SendRatingLeaderboardCalls = nil
}

func (m *Mock) SendResultSettledNotification(match *ladder.MatchResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultSettledNotificationCalls = append(m.SendResultSettledNotificationCalls, match)
	if m.SendResultSettledNotificationFunc != nil {
		return m.SendResultSettledNotificationFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendDisputeNotification(match *ladder.MatchResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDisputeNotificationCalls = append(m.SendDisputeNotificationCalls, match)
	if m.SendDisputeNotificationFunc != nil {
		return m.SendDisputeNotificationFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendPendingReminder(match *ladder.MatchResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPendingReminderCalls = append(m.SendPendingReminderCalls, match)
	if m.SendPendingReminderFunc != nil {
		return m.SendPendingReminderFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendStandings(snapshot *standings.Snapshot, leagueName string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, snapshot)
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(snapshot, leagueName, dryRun)
	}
	return nil
}

func (m *Mock) SendRatingLeaderboard(players []ladder.RatingProfile, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingLeaderboardCalls = append(m.SendRatingLeaderboardCalls, players)
	if m.SendRatingLeaderboardFunc != nil {
		return m.SendRatingLeaderboardFunc(players, dryRun)
	}
	return nil
}

func (m *Mock) FormatStandingsResponse(snapshot *standings.Snapshot, leagueName string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatStandingsResponseFunc != nil {
		return m.FormatStandingsResponseFunc(snapshot, leagueName)
	}
	return "formatted_standings", nil
}

func (m *Mock) FormatRatingLeaderboardResponse(players []ladder.RatingProfile) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatRatingLeaderboardRespFunc != nil {
		return m.FormatRatingLeaderboardRespFunc(players)
	}
	return "formatted_rating_leaderboard", nil
}

package ladder

import (
	"sync"
	"time"
)

// MockStore is a mock implementation of the LadderStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateResultFunc                func(input NewMatchResult) (*MatchResult, error)
	GetResultFunc                   func(id string) (*MatchResult, error)
	ConfirmFunc                     func(matchID string, actor Actor) (*MatchResult, error)
	RejectFunc                      func(matchID string, actor Actor, reason string) (*MatchResult, error)
	DisputeFunc                     func(matchID string, actor Actor, reason, message string) (*MatchResult, error)
	ResolveConfirmAsIsFunc          func(matchID string, actor Actor) (*MatchResult, error)
	ResolveOverrideFunc             func(matchID string, actor Actor, winnerTeam int) (*MatchResult, error)
	GetProfileFunc                  func(userID string) (*RatingProfile, error)
	GetEloHistoryFunc               func(userID string, cursor int64, limit int) ([]EloHistoryEntry, int64, error)
	AdminAdjustFunc                 func(userID string, delta int) error
	UpsertPlayersFunc               func(players []PlayerSeed) error
	IsKnownPlayerFunc               func(userID string) bool
	GetAllPlayersFunc               func() ([]RatingProfile, error)
	GetResultsForPostProcessingFunc func() ([]*MatchResult, error)
	UpdateProcessingStatusFunc      func(matchID string, status ProcessingStatus) error
	GetStalePendingFunc             func(olderThan time.Duration) ([]*MatchResult, error)
	MarkRemindedFunc                func(matchID string) error

	// Call records
	CreateResultCalls []NewMatchResult
	ConfirmCalls      []struct {
		MatchID string
		Actor   Actor
	}
	RejectCalls []struct {
		MatchID string
		Actor   Actor
		Reason  string
	}
	DisputeCalls []struct {
		MatchID string
		Actor   Actor
		Reason  string
		Message string
	}
	ResolveOverrideCalls []struct {
		MatchID    string
		Actor      Actor
		WinnerTeam int
	}
	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  ProcessingStatus
	}
	MarkRemindedCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateResultCalls = nil
	m.ConfirmCalls = nil
	m.RejectCalls = nil
	m.DisputeCalls = nil
	m.ResolveOverrideCalls = nil
	m.UpdateProcessingStatusCalls = nil
	m.MarkRemindedCalls = nil
}

func (m *MockStore) CreateResult(input NewMatchResult) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateResultCalls = append(m.CreateResultCalls, input)
	if m.CreateResultFunc != nil {
		return m.CreateResultFunc(input)
	}
	return nil, nil
}

func (m *MockStore) GetResult(id string) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetResultFunc != nil {
		return m.GetResultFunc(id)
	}
	return nil, nil
}

func (m *MockStore) Confirm(matchID string, actor Actor) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmCalls = append(m.ConfirmCalls, struct {
		MatchID string
		Actor   Actor
	}{matchID, actor})
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(matchID, actor)
	}
	return nil, nil
}

func (m *MockStore) Reject(matchID string, actor Actor, reason string) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectCalls = append(m.RejectCalls, struct {
		MatchID string
		Actor   Actor
		Reason  string
	}{matchID, actor, reason})
	if m.RejectFunc != nil {
		return m.RejectFunc(matchID, actor, reason)
	}
	return nil, nil
}

func (m *MockStore) Dispute(matchID string, actor Actor, reason, message string) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DisputeCalls = append(m.DisputeCalls, struct {
		MatchID string
		Actor   Actor
		Reason  string
		Message string
	}{matchID, actor, reason, message})
	if m.DisputeFunc != nil {
		return m.DisputeFunc(matchID, actor, reason, message)
	}
	return nil, nil
}

func (m *MockStore) ResolveConfirmAsIs(matchID string, actor Actor) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResolveConfirmAsIsFunc != nil {
		return m.ResolveConfirmAsIsFunc(matchID, actor)
	}
	return nil, nil
}

func (m *MockStore) ResolveOverride(matchID string, actor Actor, winnerTeam int) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveOverrideCalls = append(m.ResolveOverrideCalls, struct {
		MatchID    string
		Actor      Actor
		WinnerTeam int
	}{matchID, actor, winnerTeam})
	if m.ResolveOverrideFunc != nil {
		return m.ResolveOverrideFunc(matchID, actor, winnerTeam)
	}
	return nil, nil
}

func (m *MockStore) GetProfile(userID string) (*RatingProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) GetEloHistory(userID string, cursor int64, limit int) ([]EloHistoryEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetEloHistoryFunc != nil {
		return m.GetEloHistoryFunc(userID, cursor, limit)
	}
	return nil, 0, nil
}

func (m *MockStore) AdminAdjust(userID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AdminAdjustFunc != nil {
		return m.AdminAdjustFunc(userID, delta)
	}
	return nil
}

func (m *MockStore) UpsertPlayers(players []PlayerSeed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(userID)
	}
	return false
}

func (m *MockStore) GetAllPlayers() ([]RatingProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetResultsForPostProcessing() ([]*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetResultsForPostProcessingFunc != nil {
		return m.GetResultsForPostProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  ProcessingStatus
	}{matchID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) GetStalePending(olderThan time.Duration) ([]*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetStalePendingFunc != nil {
		return m.GetStalePendingFunc(olderThan)
	}
	return nil, nil
}

func (m *MockStore) MarkReminded(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkRemindedCalls = append(m.MarkRemindedCalls, matchID)
	if m.MarkRemindedFunc != nil {
		return m.MarkRemindedFunc(matchID)
	}
	return nil
}

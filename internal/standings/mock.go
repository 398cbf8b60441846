package standings

import (
	"sync"
	"time"
)

// MockStore is a mock implementation of the StandingsStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	RecomputeFunc func(leagueID string) (*Snapshot, error)
	GetLatestFunc func(leagueID string) (*Snapshot, error)
	FreshFunc     func(leagueID string, maxAge time.Duration) (*Snapshot, error)

	// Call records
	RecomputeCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Recompute(leagueID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecomputeCalls = append(m.RecomputeCalls, leagueID)
	if m.RecomputeFunc != nil {
		return m.RecomputeFunc(leagueID)
	}
	return nil, nil
}

func (m *MockStore) GetLatest(leagueID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(leagueID)
	}
	return nil, nil
}

func (m *MockStore) Fresh(leagueID string, maxAge time.Duration) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FreshFunc != nil {
		return m.FreshFunc(leagueID, maxAge)
	}
	return nil, nil
}

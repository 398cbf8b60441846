package league

import "sync"

// MockStore is a mock implementation of the LeagueStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateLeagueFunc func(name string, mode Mode, scoring Scoring) (*League, error)
	GetLeagueFunc    func(id string) (*League, error)
	ListLeaguesFunc  func() ([]League, error)
	AddMemberFunc    func(leagueID, userID string) error
	RemoveMemberFunc func(leagueID, userID string) error
	GetMembersFunc   func(leagueID string) ([]Member, error)
	IsMemberFunc     func(leagueID, userID string) bool

	// Call records
	AddMemberCalls []struct {
		LeagueID string
		UserID   string
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreateLeague(name string, mode Mode, scoring Scoring) (*League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateLeagueFunc != nil {
		return m.CreateLeagueFunc(name, mode, scoring)
	}
	return nil, nil
}

func (m *MockStore) GetLeague(id string) (*League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLeagueFunc != nil {
		return m.GetLeagueFunc(id)
	}
	return nil, nil
}

func (m *MockStore) ListLeagues() ([]League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListLeaguesFunc != nil {
		return m.ListLeaguesFunc()
	}
	return nil, nil
}

func (m *MockStore) AddMember(leagueID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddMemberCalls = append(m.AddMemberCalls, struct {
		LeagueID string
		UserID   string
	}{leagueID, userID})
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(leagueID, userID)
	}
	return nil
}

func (m *MockStore) RemoveMember(leagueID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(leagueID, userID)
	}
	return nil
}

func (m *MockStore) GetMembers(leagueID string) ([]Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMembersFunc != nil {
		return m.GetMembersFunc(leagueID)
	}
	return nil, nil
}

func (m *MockStore) IsMember(leagueID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsMemberFunc != nil {
		return m.IsMemberFunc(leagueID, userID)
	}
	return false
}

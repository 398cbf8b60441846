package challenge

import (
	"sync"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
)

// Mock is a mock implementation of the ChallengeService interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc             func(challengerID, opponentID string, leagueID *string, message string) (*Challenge, error)
	GetFunc                func(id string) (*Challenge, error)
	ListForPlayerFunc      func(userID string) ([]Challenge, error)
	AcceptFunc             func(id, actorID string) (*Challenge, error)
	CancelFunc             func(id, actorID string) (*Challenge, error)
	CompleteWithResultFunc func(id string, actor ladder.Actor, sets []ladder.SetScore) (*ladder.MatchResult, error)
	SuggestOpponentsFunc   func(userID string, limit int) ([]OpponentSuggestion, error)

	// Call records
	CreateCalls             []CreateCall
	AcceptCalls             []string
	CancelCalls             []string
	CompleteWithResultCalls []string
}

// CreateCall holds the arguments for a call to Create.
type CreateCall struct {
	ChallengerID string
	OpponentID   string
	LeagueID     *string
	Message      string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = nil
	m.AcceptCalls = nil
	m.CancelCalls = nil
	m.CompleteWithResultCalls = nil
}

func (m *Mock) Create(challengerID, opponentID string, leagueID *string, message string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, CreateCall{ChallengerID: challengerID, OpponentID: opponentID, LeagueID: leagueID, Message: message})
	if m.CreateFunc != nil {
		return m.CreateFunc(challengerID, opponentID, leagueID, message)
	}
	return &Challenge{ChallengerID: challengerID, OpponentID: opponentID, Status: StatusOpen}, nil
}

func (m *Mock) Get(id string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return nil, ErrNotFound
}

func (m *Mock) ListForPlayer(userID string) ([]Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListForPlayerFunc != nil {
		return m.ListForPlayerFunc(userID)
	}
	return nil, nil
}

func (m *Mock) Accept(id, actorID string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AcceptCalls = append(m.AcceptCalls, id)
	if m.AcceptFunc != nil {
		return m.AcceptFunc(id, actorID)
	}
	return &Challenge{ID: id, Status: StatusAccepted}, nil
}

func (m *Mock) Cancel(id, actorID string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls = append(m.CancelCalls, id)
	if m.CancelFunc != nil {
		return m.CancelFunc(id, actorID)
	}
	return &Challenge{ID: id, Status: StatusCancelled}, nil
}

func (m *Mock) CompleteWithResult(id string, actor ladder.Actor, sets []ladder.SetScore) (*ladder.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteWithResultCalls = append(m.CompleteWithResultCalls, id)
	if m.CompleteWithResultFunc != nil {
		return m.CompleteWithResultFunc(id, actor, sets)
	}
	return &ladder.MatchResult{}, nil
}

func (m *Mock) SuggestOpponents(userID string, limit int) ([]OpponentSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SuggestOpponentsFunc != nil {
		return m.SuggestOpponentsFunc(userID, limit)
	}
	return nil, nil
}

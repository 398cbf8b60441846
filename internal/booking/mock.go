package booking

import "sync"

// MockClient is a mock implementation of the BookingClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	GetReservationsFunc func(params *SearchReservationsParams) ([]ReservationSummary, error)
	GetReservationFunc  func(matchID string) (Reservation, error)

	// Call records
	GetReservationsCalls []*SearchReservationsParams
	GetReservationCalls  []string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetReservationsCalls = nil
	m.GetReservationCalls = nil
}

func (m *MockClient) GetReservations(params *SearchReservationsParams) ([]ReservationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetReservationsCalls = append(m.GetReservationsCalls, params)
	if m.GetReservationsFunc != nil {
		return m.GetReservationsFunc(params)
	}
	return []ReservationSummary{}, nil
}

func (m *MockClient) GetReservation(matchID string) (Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetReservationCalls = append(m.GetReservationCalls, matchID)
	if m.GetReservationFunc != nil {
		return m.GetReservationFunc(matchID)
	}
	return Reservation{}, nil
}

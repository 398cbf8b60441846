package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	resultsReported     int
	resultsSettled      int
	ratingsApplied      int
	standingsRecomputes int
	processingDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncResultsReported() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsReported++
}

func (m *Mock) IncResultsSettled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsSettled++
}

func (m *Mock) IncRatingsApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingsApplied++
}

func (m *Mock) IncStandingsRecomputes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsRecomputes++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ResultsReported returns the number of times IncResultsReported was called.
func (m *Mock) ResultsReported() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsReported
}

// ResultsSettled returns the number of times IncResultsSettled was called.
func (m *Mock) ResultsSettled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsSettled
}

// RatingsApplied returns the number of times IncRatingsApplied was called.
func (m *Mock) RatingsApplied() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingsApplied
}

// StandingsRecomputes returns the number of times IncStandingsRecomputes was called.
func (m *Mock) StandingsRecomputes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.standingsRecomputes
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// MockStore is an in-memory MetricsStore for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMockStore creates a new mock store instance.
func NewMockStore() *MockStore {
	return &MockStore{counters: make(map[string]int)}
}

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, nil
}

// Counter returns the current value of one lifetime counter.
func (m *MockStore) Counter(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

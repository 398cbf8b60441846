package metrics

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
)

// Lifetime counter keys. Unlike the Prometheus counters these survive
// restarts: they live in the metrics table and back GET /stats.
const (
	CounterResultsReported   = "results_reported"
	CounterRatingsApplied    = "ratings_applied"
	CounterNotificationsSent = "notifications_sent"
)

// store persists lifetime counters in the metrics table.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new metrics Store.
func New(db *sql.DB) MetricsStore {
	return &store{
		db: db,
	}
}

// Increment bumps a lifetime counter by one, creating it on first use.
// Counter writes are best effort and never fail the calling operation.
func (s *store) Increment(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO metrics (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1;
	`, key)
	if err != nil {
		log.Error("Failed to increment lifetime counter", "error", err, "key", key)
		return
	}
	log.Debug("Incremented lifetime counter", "key", key)
}

// GetAll returns every lifetime counter.
func (s *store) GetAll() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, value FROM metrics")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		counters[key] = value
	}
	return counters, rows.Err()
}

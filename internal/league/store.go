package league

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{db: db}
}

func (s *store) CreateLeague(name string, mode Mode, scoring Scoring) (*League, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == "" {
		mode = ModeOpen
	}
	if scoring == (Scoring{}) {
		scoring = DefaultScoring()
	}

	l := &League{
		ID:        uuid.New().String(),
		Name:      name,
		Mode:      mode,
		Scoring:   scoring,
		CreatedAt: time.Now().Unix(),
	}
	scoringJSON, err := json.Marshal(l.Scoring)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scoring: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO leagues (id, name, mode, scoring_json, created_at) VALUES (?, ?, ?, ?, ?)",
		l.ID, l.Name, l.Mode, scoringJSON, l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert league: %w", err)
	}
	log.Info("Created league", "leagueID", l.ID, "name", l.Name, "mode", l.Mode)
	return l, nil
}

func (s *store) GetLeague(id string) (*League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var l League
	var scoringJSON sql.NullString
	err := s.db.QueryRow(
		"SELECT id, name, mode, scoring_json, created_at FROM leagues WHERE id = ?", id,
	).Scan(&l.ID, &l.Name, &l.Mode, &scoringJSON, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load league: %w", err)
	}
	l.Scoring = DefaultScoring()
	if scoringJSON.Valid && scoringJSON.String != "" {
		if err := json.Unmarshal([]byte(scoringJSON.String), &l.Scoring); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scoring_json: %w", err)
		}
	}
	return &l, nil
}

func (s *store) ListLeagues() ([]League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, mode, scoring_json, created_at FROM leagues ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues: %w", err)
	}
	defer rows.Close()

	var leagues []League
	for rows.Next() {
		var l League
		var scoringJSON sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &l.Mode, &scoringJSON, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", err)
		}
		l.Scoring = DefaultScoring()
		if scoringJSON.Valid && scoringJSON.String != "" {
			if err := json.Unmarshal([]byte(scoringJSON.String), &l.Scoring); err != nil {
				return nil, fmt.Errorf("failed to unmarshal scoring_json: %w", err)
			}
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

func (s *store) AddMember(leagueID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM leagues WHERE id = ?)", leagueID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check league: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, leagueID)
	}

	_, err := s.db.Exec(
		"INSERT INTO league_members (league_id, user_id, joined_at) VALUES (?, ?, ?)",
		leagueID, userID, time.Now().Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "PRIMARY") {
			return fmt.Errorf("%w: %s in %s", ErrAlreadyMember, userID, leagueID)
		}
		return fmt.Errorf("failed to add league member: %w", err)
	}
	log.Info("Added league member", "leagueID", leagueID, "userID", userID)
	return nil
}

func (s *store) RemoveMember(leagueID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM league_members WHERE league_id = ? AND user_id = ?", leagueID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove league member: %w", err)
	}
	return nil
}

func (s *store) GetMembers(leagueID string) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT league_id, user_id, joined_at FROM league_members WHERE league_id = ? ORDER BY joined_at ASC, user_id ASC",
		leagueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query league members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.LeagueID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *store) IsMember(leagueID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM league_members WHERE league_id = ? AND user_id = ?)",
		leagueID, userID,
	).Scan(&exists)
	if err != nil {
		log.Error("Failed to check league membership", "error", err, "leagueID", leagueID, "userID", userID)
		return false
	}
	return exists
}

package standings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/league"
)

// ErrNoSnapshot means the league has never had a standings recompute.
var ErrNoSnapshot = errors.New("no standings snapshot exists")

// New creates a new StandingsStore.
func New(db *sql.DB) StandingsStore {
	return &store{db: db}
}

func (s *store) Recompute(leagueID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var mode league.Mode
	var scoringJSON sql.NullString
	err = tx.QueryRow("SELECT mode, scoring_json FROM leagues WHERE id = ?", leagueID).Scan(&mode, &scoringJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", league.ErrNotFound, leagueID)
		}
		return nil, fmt.Errorf("failed to load league: %w", err)
	}
	scoring := league.DefaultScoring()
	if scoringJSON.Valid && scoringJSON.String != "" {
		if err := json.Unmarshal([]byte(scoringJSON.String), &scoring); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scoring_json: %w", err)
		}
	}

	rowsByUser, err := loadMemberRows(tx, leagueID)
	if err != nil {
		return nil, err
	}
	if err := tallyResults(tx, leagueID, rowsByUser); err != nil {
		return nil, err
	}

	table := make([]Row, 0, len(rowsByUser))
	for _, r := range rowsByUser {
		if mode == league.ModeScheduled {
			r.Points = r.Wins*scoring.WinPoints + r.Losses*scoring.LossPoints
		}
		table = append(table, *r)
	}

	// Deterministic order: points, then rating, then fewest matches, then
	// name, then user id.
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Elo != b.Elo {
			return a.Elo > b.Elo
		}
		if a.MatchesPlayed != b.MatchesPlayed {
			return a.MatchesPlayed < b.MatchesPlayed
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.UserID < b.UserID
	})

	prevPositions, prevComputedAt, err := latestPositions(tx, leagueID)
	if err != nil {
		return nil, err
	}

	computedAt := time.Now().Unix()
	if computedAt <= prevComputedAt {
		computedAt = prevComputedAt + 1
	}

	for i := range table {
		table[i].Position = i + 1
		if prev, ok := prevPositions[table[i].UserID]; ok {
			delta := prev - table[i].Position
			table[i].PositionDelta = &delta
		}
		_, err := tx.Exec(`
			INSERT INTO league_standings (league_id, user_id, position, points, elo,
				wins, losses, matches_played, position_delta, computed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			leagueID, table[i].UserID, table[i].Position, table[i].Points, table[i].Elo,
			table[i].Wins, table[i].Losses, table[i].MatchesPlayed, table[i].PositionDelta, computedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert standings row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit standings snapshot: %w", err)
	}
	log.Info("Recomputed league standings", "leagueID", leagueID, "rows", len(table), "computedAt", computedAt)
	return &Snapshot{LeagueID: leagueID, ComputedAt: computedAt, Rows: table}, nil
}

// loadMemberRows seeds one zeroed row per league member with the player's
// current name and rating.
func loadMemberRows(tx *sql.Tx, leagueID string) (map[string]*Row, error) {
	rows, err := tx.Query(`
		SELECT lm.user_id, p.name, p.elo
		FROM league_members lm
		JOIN players p ON p.id = lm.user_id
		WHERE lm.league_id = ?`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query league members: %w", err)
	}
	defer rows.Close()

	byUser := make(map[string]*Row)
	for rows.Next() {
		r := &Row{LeagueID: leagueID}
		if err := rows.Scan(&r.UserID, &r.Name, &r.Elo); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		byUser[r.UserID] = r
	}
	return byUser, rows.Err()
}

// tallyResults folds every accepted league result into per-member win/loss
// counts. Results for players no longer on the roster are skipped.
func tallyResults(tx *sql.Tx, leagueID string, byUser map[string]*Row) error {
	rows, err := tx.Query(`
		SELECT winner_team, team_a_json, team_b_json
		FROM match_results
		WHERE league_id = ? AND status IN (?, ?)`,
		leagueID, ladder.StatusConfirmed, ladder.StatusResolved)
	if err != nil {
		return fmt.Errorf("failed to query league results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var winnerTeam int
		var teamAJSON, teamBJSON string
		if err := rows.Scan(&winnerTeam, &teamAJSON, &teamBJSON); err != nil {
			return fmt.Errorf("failed to scan result row: %w", err)
		}
		var teamA, teamB []ladder.Participant
		if err := json.Unmarshal([]byte(teamAJSON), &teamA); err != nil {
			return fmt.Errorf("failed to unmarshal team_a_json: %w", err)
		}
		if err := json.Unmarshal([]byte(teamBJSON), &teamB); err != nil {
			return fmt.Errorf("failed to unmarshal team_b_json: %w", err)
		}

		winners, losers := teamA, teamB
		if winnerTeam == ladder.TeamB {
			winners, losers = teamB, teamA
		}
		for _, p := range winners {
			if r, ok := byUser[p.UserID]; ok {
				r.Wins++
				r.MatchesPlayed++
			}
		}
		for _, p := range losers {
			if r, ok := byUser[p.UserID]; ok {
				r.Losses++
				r.MatchesPlayed++
			}
		}
	}
	return rows.Err()
}

// latestPositions returns the position per user in the newest snapshot,
// plus that snapshot's computed_at (zero when none exists).
func latestPositions(tx *sql.Tx, leagueID string) (map[string]int, int64, error) {
	var computedAt sql.NullInt64
	err := tx.QueryRow(
		"SELECT MAX(computed_at) FROM league_standings WHERE league_id = ?", leagueID,
	).Scan(&computedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	if !computedAt.Valid {
		return map[string]int{}, 0, nil
	}

	rows, err := tx.Query(
		"SELECT user_id, position FROM league_standings WHERE league_id = ? AND computed_at = ?",
		leagueID, computedAt.Int64,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	defer rows.Close()

	positions := make(map[string]int)
	for rows.Next() {
		var userID string
		var position int
		if err := rows.Scan(&userID, &position); err != nil {
			return nil, 0, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		positions[userID] = position
	}
	return positions, computedAt.Int64, rows.Err()
}

func (s *store) GetLatest(leagueID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLatest(leagueID)
}

func (s *store) getLatest(leagueID string) (*Snapshot, error) {
	var computedAt sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(computed_at) FROM league_standings WHERE league_id = ?", leagueID,
	).Scan(&computedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	if !computedAt.Valid {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, leagueID)
	}

	rows, err := s.db.Query(`
		SELECT ls.user_id, p.name, ls.position, ls.points, ls.elo, ls.wins,
			ls.losses, ls.matches_played, ls.position_delta
		FROM league_standings ls
		JOIN players p ON p.id = ls.user_id
		WHERE ls.league_id = ? AND ls.computed_at = ?
		ORDER BY ls.position ASC`,
		leagueID, computedAt.Int64,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	snap := &Snapshot{LeagueID: leagueID, ComputedAt: computedAt.Int64}
	for rows.Next() {
		r := Row{LeagueID: leagueID}
		var delta sql.NullInt64
		if err := rows.Scan(&r.UserID, &r.Name, &r.Position, &r.Points, &r.Elo,
			&r.Wins, &r.Losses, &r.MatchesPlayed, &delta); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if delta.Valid {
			d := int(delta.Int64)
			r.PositionDelta = &d
		}
		snap.Rows = append(snap.Rows, r)
	}
	return snap, rows.Err()
}

func (s *store) Fresh(leagueID string, maxAge time.Duration) (*Snapshot, error) {
	s.mu.Lock()
	latest, err := s.getLatest(leagueID)
	s.mu.Unlock()
	if err == nil && time.Since(time.Unix(latest.ComputedAt, 0)) <= maxAge {
		return latest, nil
	}
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return nil, err
	}
	return s.Recompute(leagueID)
}

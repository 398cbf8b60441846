package challenge

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
)

const challengeColumns = `id, challenger_id, opponent_id, league_id, status, message, match_result_id, created_at, updated_at`

// New creates a new challenge service backed by the given database. Results
// reported for completed challenges go through the ladder store.
func New(db *sql.DB, results ladder.LadderStore) ChallengeService {
	return &store{db: db, results: results}
}

func (s *store) Create(challengerID, opponentID string, leagueID *string, message string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if challengerID == opponentID {
		return nil, ErrSelfChallenge
	}
	for _, id := range []string{challengerID, opponentID} {
		if !s.results.IsKnownPlayer(id) {
			return nil, fmt.Errorf("%w: %s", ladder.ErrPlayerNotFound, id)
		}
	}

	now := time.Now().Unix()
	c := &Challenge{
		ID:           uuid.New().String(),
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		LeagueID:     leagueID,
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if message != "" {
		c.Message = &message
	}

	query := `
		INSERT INTO challenges (id, challenger_id, opponent_id, league_id, status, message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, c.ID, c.ChallengerID, c.OpponentID, c.LeagueID, string(c.Status), c.Message, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	log.Info("Created challenge", "id", c.ID, "challenger", challengerID, "opponent", opponentID)
	return c, nil
}

func (s *store) Get(id string) (*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *store) get(id string) (*Challenge, error) {
	row := s.db.QueryRow(`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id)
	return scanChallenge(row)
}

func (s *store) ListForPlayer(userID string) ([]Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE challenger_id = ? OR opponent_id = ?
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	var challenges []Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

func (s *store) Accept(id, actorID string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if c.OpponentID != actorID {
		return nil, fmt.Errorf("%w: only the challenged player may accept", ErrForbidden)
	}
	if c.Status != StatusOpen {
		return c, fmt.Errorf("%w: %s", ErrIllegalState, c.Status)
	}

	if err := s.setStatus(c, StatusAccepted); err != nil {
		return nil, err
	}
	log.Info("Challenge accepted", "id", id, "opponent", actorID)
	return c, nil
}

func (s *store) Cancel(id, actorID string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if c.ChallengerID != actorID {
		return nil, fmt.Errorf("%w: only the challenger may cancel", ErrForbidden)
	}
	if c.Status != StatusOpen {
		return c, fmt.Errorf("%w: %s", ErrIllegalState, c.Status)
	}

	if err := s.setStatus(c, StatusCancelled); err != nil {
		return nil, err
	}
	log.Info("Challenge cancelled", "id", id)
	return c, nil
}

func (s *store) CompleteWithResult(id string, actor ladder.Actor, sets []ladder.SetScore) (*ladder.MatchResult, error) {
	s.mu.Lock()
	c, err := s.get(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !c.Involves(actor.UserID) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: reporter must be one of the players", ErrForbidden)
	}
	if c.Status != StatusAccepted {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrIllegalState, c.Status)
	}
	s.mu.Unlock()

	challenger, err := s.results.GetProfile(c.ChallengerID)
	if err != nil {
		return nil, err
	}
	opponent, err := s.results.GetProfile(c.OpponentID)
	if err != nil {
		return nil, err
	}

	// The challenger is always team A so the scoreline reads the same for
	// both players.
	match, err := s.results.CreateResult(ladder.NewMatchResult{
		LeagueID:   c.LeagueID,
		MatchType:  ladder.MatchTypeCompetitive,
		Source:     ladder.SourceChallenge,
		ReportedBy: actor.UserID,
		TeamA:      []ladder.Participant{{UserID: challenger.UserID, Name: challenger.Name}},
		TeamB:      []ladder.Participant{{UserID: opponent.UserID, Name: opponent.Name}},
		Sets:       sets,
		PlayedAt:   time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	query := `UPDATE challenges SET status = ?, match_result_id = ?, updated_at = ? WHERE id = ?`
	if _, err := s.db.Exec(query, string(StatusCompleted), match.ID, time.Now().Unix(), id); err != nil {
		return nil, fmt.Errorf("failed to complete challenge: %w", err)
	}

	log.Info("Challenge completed", "id", id, "matchID", match.ID)
	return match, nil
}

func (s *store) SuggestOpponents(userID string, limit int) ([]OpponentSuggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	var selfElo int
	err := s.db.QueryRow(`SELECT elo FROM players WHERE id = ?`, userID).Scan(&selfElo)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ladder.ErrPlayerNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player rating: %w", err)
	}

	query := `
		SELECT id, name, elo, ABS(elo - ?) AS gap
		FROM players
		WHERE id != ?
		ORDER BY gap ASC, name ASC
		LIMIT ?
	`
	rows, err := s.db.Query(query, selfElo, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query opponents: %w", err)
	}
	defer rows.Close()

	var suggestions []OpponentSuggestion
	for rows.Next() {
		var sug OpponentSuggestion
		if err := rows.Scan(&sug.UserID, &sug.Name, &sug.Elo, &sug.EloGap); err != nil {
			return nil, fmt.Errorf("failed to scan opponent row: %w", err)
		}
		suggestions = append(suggestions, sug)
	}
	return suggestions, rows.Err()
}

func (s *store) setStatus(c *Challenge, status Status) error {
	now := time.Now().Unix()
	query := `UPDATE challenges SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := s.db.Exec(query, string(status), now, c.ID); err != nil {
		return fmt.Errorf("failed to update challenge status: %w", err)
	}
	c.Status = status
	c.UpdatedAt = now
	return nil
}

func scanChallenge(row interface{ Scan(...any) error }) (*Challenge, error) {
	var c Challenge
	var status string
	err := row.Scan(&c.ID, &c.ChallengerID, &c.OpponentID, &c.LeagueID, &status, &c.Message, &c.MatchResultID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan challenge: %w", err)
	}
	c.Status = Status(status)
	return &c, nil
}

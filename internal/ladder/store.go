package ladder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/LucasFasolato/padel-point-engine/internal/elo"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
)

// New creates a new LadderStore.
func New(db *sql.DB, eloCfg elo.Config, m metrics.Metrics, counters metrics.MetricsStore) LadderStore {
	return &store{
		db:       db,
		eloCfg:   eloCfg,
		metrics:  m,
		counters: counters,
	}
}

// recordRatingApplied bumps both the Prometheus counter and the lifetime
// counter after a rating application commits.
func (s *store) recordRatingApplied() {
	s.metrics.IncRatingsApplied()
	s.counters.Increment(metrics.CounterRatingsApplied)
}

const resultColumns = `id, league_id, match_type, source, status, reported_by, confirmed_by,
	winner_team, sets_json, team_a_json, team_b_json, rejection_reason, dispute_reason,
	dispute_message, elo_applied, processing_status, reminded_at, played_at, created_at, updated_at`

func (s *store) CreateResult(input NewMatchResult) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateTeams(input.TeamA, input.TeamB); err != nil {
		return nil, err
	}
	winner, err := DeriveWinner(input.Sets)
	if err != nil {
		return nil, err
	}

	m := &MatchResult{
		ID:               input.ID,
		LeagueID:         input.LeagueID,
		MatchType:        input.MatchType,
		Source:           input.Source,
		Status:           StatusPendingConfirm,
		ReportedBy:       input.ReportedBy,
		WinnerTeam:       winner,
		Sets:             input.Sets,
		TeamA:            input.TeamA,
		TeamB:            input.TeamB,
		ProcessingStatus: ProcessingPending,
		PlayedAt:         input.PlayedAt,
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.MatchType == "" {
		m.MatchType = MatchTypeCompetitive
	}
	if m.Source == "" {
		m.Source = SourceManual
	}
	if !m.IsParticipant(m.ReportedBy) {
		return nil, fmt.Errorf("%w: reporter %s is not a participant", ErrForbidden, m.ReportedBy)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range m.Participants() {
		var exists bool
		if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", p.UserID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check player %s: %w", p.UserID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, p.UserID)
		}
	}

	if m.LeagueID != nil {
		if err := s.checkLeagueMembersTx(tx, *m.LeagueID, m.Participants()); err != nil {
			return nil, err
		}
	}

	setsJSON, err := json.Marshal(m.Sets)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sets: %w", err)
	}
	teamAJSON, err := json.Marshal(m.TeamA)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team a: %w", err)
	}
	teamBJSON, err := json.Marshal(m.TeamB)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team b: %w", err)
	}

	now := time.Now().Unix()
	m.CreatedAt = now
	m.UpdatedAt = now
	_, err = tx.Exec(`
		INSERT INTO match_results (id, league_id, match_type, source, status, reported_by,
			winner_team, sets_json, team_a_json, team_b_json, elo_applied, processing_status,
			played_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		m.ID, m.LeagueID, m.MatchType, m.Source, m.Status, m.ReportedBy,
		m.WinnerTeam, setsJSON, teamAJSON, teamBJSON, m.ProcessingStatus,
		m.PlayedAt, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert match result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match result: %w", err)
	}
	log.Info("Recorded match result", "matchID", m.ID, "reporter", m.ReportedBy, "type", m.MatchType)
	return m, nil
}

// checkLeagueMembersTx verifies that every participant belongs to the league.
func (s *store) checkLeagueMembersTx(tx *sql.Tx, leagueID string, participants []Participant) error {
	ids := make([]any, 0, len(participants)+1)
	ids = append(ids, leagueID)
	placeholders := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
		placeholders = append(placeholders, "?")
	}
	var count int
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM league_members WHERE league_id = ? AND user_id IN (%s)",
		strings.Join(placeholders, ","),
	)
	if err := tx.QueryRow(query, ids...).Scan(&count); err != nil {
		return fmt.Errorf("failed to check league members: %w", err)
	}
	if count != len(participants) {
		return fmt.Errorf("%w: league %s", ErrLeagueMembersMissing, leagueID)
	}
	return nil
}

func (s *store) GetResult(id string) (*MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT "+resultColumns+" FROM match_results WHERE id = ?", id)
	m, err := scanResult(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load match result: %w", err)
	}
	return m, nil
}

func (s *store) Confirm(matchID string, actor Actor) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := s.loadResultTx(tx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(actor.UserID) {
		return nil, fmt.Errorf("%w: %s is not a participant", ErrForbidden, actor.UserID)
	}
	if actor.UserID == m.ReportedBy {
		return nil, fmt.Errorf("%w: reporter cannot confirm their own report", ErrForbidden)
	}
	switch m.Status {
	case StatusPendingConfirm:
		// proceed
	case StatusConfirmed, StatusResolved:
		return m, ErrAlreadyApplied
	default:
		return nil, fmt.Errorf("%w: cannot confirm a %s result", ErrIllegalTransition, m.Status)
	}

	now := time.Now().Unix()
	// Compare-and-swap on status: if another request settled this result
	// between our read and this write, zero rows are affected and we treat
	// the call as a replay.
	res, err := tx.Exec(`
		UPDATE match_results SET status = ?, confirmed_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		StatusConfirmed, actor.UserID, now, matchID, StatusPendingConfirm,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm match result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return m, ErrAlreadyApplied
	}

	if m.MatchType == MatchTypeCompetitive {
		if err := s.applyRatingTx(tx, m, m.WinnerTeam, ReasonMatchResult, now); err != nil {
			return nil, err
		}
		m.EloApplied = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}
	if m.EloApplied {
		s.recordRatingApplied()
	}

	m.Status = StatusConfirmed
	m.ConfirmedBy = &actor.UserID
	m.UpdatedAt = now
	log.Info("Confirmed match result", "matchID", matchID, "confirmedBy", actor.UserID, "eloApplied", m.EloApplied)
	return m, nil
}

func (s *store) Reject(matchID string, actor Actor, reason string) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := s.loadResultTx(tx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(actor.UserID) {
		return nil, fmt.Errorf("%w: %s is not a participant", ErrForbidden, actor.UserID)
	}
	if actor.UserID == m.ReportedBy {
		return nil, fmt.Errorf("%w: reporter cannot reject their own report", ErrForbidden)
	}
	switch m.Status {
	case StatusPendingConfirm:
		// proceed
	case StatusRejected:
		return m, ErrAlreadyApplied
	default:
		return nil, fmt.Errorf("%w: cannot reject a %s result", ErrIllegalTransition, m.Status)
	}

	now := time.Now().Unix()
	res, err := tx.Exec(`
		UPDATE match_results SET status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		StatusRejected, reason, now, matchID, StatusPendingConfirm,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reject match result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return m, ErrAlreadyApplied
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	m.Status = StatusRejected
	m.RejectionReason = &reason
	m.UpdatedAt = now
	log.Info("Rejected match result", "matchID", matchID, "rejectedBy", actor.UserID)
	return m, nil
}

func (s *store) Dispute(matchID string, actor Actor, reason, message string) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := s.loadResultTx(tx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(actor.UserID) {
		return nil, fmt.Errorf("%w: %s is not a participant", ErrForbidden, actor.UserID)
	}
	switch m.Status {
	case StatusPendingConfirm, StatusConfirmed:
		// proceed; an applied rating stays applied until an admin override
	case StatusDisputed:
		return m, ErrAlreadyApplied
	default:
		return nil, fmt.Errorf("%w: cannot dispute a %s result", ErrIllegalTransition, m.Status)
	}

	now := time.Now().Unix()
	var msg *string
	if message != "" {
		msg = &message
	}
	res, err := tx.Exec(`
		UPDATE match_results SET status = ?, dispute_reason = ?, dispute_message = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		StatusDisputed, reason, msg, now, matchID, StatusPendingConfirm, StatusConfirmed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dispute match result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return m, ErrAlreadyApplied
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dispute: %w", err)
	}

	m.Status = StatusDisputed
	m.DisputeReason = &reason
	m.DisputeMessage = msg
	m.UpdatedAt = now
	log.Info("Disputed match result", "matchID", matchID, "disputedBy", actor.UserID, "reason", reason)
	return m, nil
}

func (s *store) ResolveConfirmAsIs(matchID string, actor Actor) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := s.loadResultTx(tx, matchID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Admin() {
		return nil, fmt.Errorf("%w: resolution requires an admin role", ErrForbidden)
	}
	switch m.Status {
	case StatusPendingConfirm, StatusDisputed:
		// proceed
	case StatusResolved:
		return m, ErrAlreadyApplied
	default:
		return nil, fmt.Errorf("%w: cannot resolve a %s result", ErrIllegalTransition, m.Status)
	}

	now := time.Now().Unix()
	res, err := tx.Exec(`
		UPDATE match_results SET status = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		StatusResolved, now, matchID, StatusPendingConfirm, StatusDisputed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve match result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return m, ErrAlreadyApplied
	}

	applied := false
	if m.MatchType == MatchTypeCompetitive && !m.EloApplied {
		if err := s.applyRatingTx(tx, m, m.WinnerTeam, ReasonMatchResult, now); err != nil {
			return nil, err
		}
		m.EloApplied = true
		applied = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resolution: %w", err)
	}
	if applied {
		s.recordRatingApplied()
	}

	m.Status = StatusResolved
	m.UpdatedAt = now
	log.Info("Resolved match result as reported", "matchID", matchID, "resolvedBy", actor.UserID)
	return m, nil
}

func (s *store) ResolveOverride(matchID string, actor Actor, winnerTeam int) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if winnerTeam != TeamA && winnerTeam != TeamB {
		return nil, fmt.Errorf("%w: winner team must be %d or %d", ErrInvalidScoreline, TeamA, TeamB)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := s.loadResultTx(tx, matchID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Admin() {
		return nil, fmt.Errorf("%w: resolution requires an admin role", ErrForbidden)
	}
	switch m.Status {
	case StatusPendingConfirm, StatusDisputed:
		// proceed
	case StatusResolved:
		return m, ErrAlreadyApplied
	default:
		return nil, fmt.Errorf("%w: cannot resolve a %s result", ErrIllegalTransition, m.Status)
	}

	now := time.Now().Unix()
	res, err := tx.Exec(`
		UPDATE match_results SET status = ?, winner_team = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		StatusResolved, winnerTeam, now, matchID, StatusPendingConfirm, StatusDisputed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve match result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return m, ErrAlreadyApplied
	}

	applied := false
	if m.MatchType == MatchTypeCompetitive {
		switch {
		case !m.EloApplied:
			if err := s.applyRatingTx(tx, m, winnerTeam, ReasonAdminResult, now); err != nil {
				return nil, err
			}
			m.EloApplied = true
			applied = true
		case winnerTeam != m.WinnerTeam:
			if err := s.reverseAndReapplyTx(tx, m, winnerTeam, now); err != nil {
				return nil, err
			}
			applied = true
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit override: %w", err)
	}
	if applied {
		s.recordRatingApplied()
	}

	m.Status = StatusResolved
	m.WinnerTeam = winnerTeam
	m.UpdatedAt = now
	log.Info("Resolved match result with override", "matchID", matchID, "resolvedBy", actor.UserID, "winnerTeam", winnerTeam)
	return m, nil
}

// applyRatingTx applies rating deltas for the given winner inside the
// caller's transaction: one ledger entry per participant, profile updates,
// and the elo_applied flag. The unique index on the ledger rejects a second
// application even if two requests race past the status check.
func (s *store) applyRatingTx(tx *sql.Tx, m *MatchResult, winnerTeam int, reason HistoryReason, now int64) error {
	winners := m.teamPlayers(winnerTeam)
	losers := m.TeamA
	if winnerTeam == TeamA {
		losers = m.TeamB
	}

	elos := make(map[string]int, len(winners)+len(losers))
	for _, p := range m.Participants() {
		var rating int
		if err := tx.QueryRow("SELECT elo FROM players WHERE id = ?", p.UserID).Scan(&rating); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, p.UserID)
			}
			return fmt.Errorf("failed to read rating for %s: %w", p.UserID, err)
		}
		elos[p.UserID] = rating
	}

	winnerRatings := make([]int, 0, len(winners))
	for _, p := range winners {
		winnerRatings = append(winnerRatings, elos[p.UserID])
	}
	loserRatings := make([]int, 0, len(losers))
	for _, p := range losers {
		loserRatings = append(loserRatings, elos[p.UserID])
	}
	delta := s.eloCfg.WinnerDelta(elo.SideRating(winnerRatings...), elo.SideRating(loserRatings...))

	for _, p := range winners {
		before := elos[p.UserID]
		after := before + delta
		if err := appendLedgerTx(tx, p.UserID, m.ID, delta, before, after, reason, now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			UPDATE players SET elo = ?, peak_elo = MAX(peak_elo, ?), category = ?,
				category_locked = 1, wins = wins + 1, matches_played = matches_played + 1,
				win_streak_current = win_streak_current + 1, updated_at = ?
			WHERE id = ?`,
			after, after, elo.Category(after), now, p.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update winner profile %s: %w", p.UserID, err)
		}
	}
	for _, p := range losers {
		before := elos[p.UserID]
		after := before - delta
		if err := appendLedgerTx(tx, p.UserID, m.ID, -delta, before, after, reason, now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			UPDATE players SET elo = ?, category = ?, category_locked = 1,
				losses = losses + 1, matches_played = matches_played + 1,
				win_streak_current = 0, updated_at = ?
			WHERE id = ?`,
			after, elo.Category(after), now, p.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update loser profile %s: %w", p.UserID, err)
		}
	}

	if _, err := tx.Exec("UPDATE match_results SET elo_applied = 1, updated_at = ? WHERE id = ?", now, m.ID); err != nil {
		return fmt.Errorf("failed to mark result applied: %w", err)
	}
	return nil
}

// reverseAndReapplyTx unwinds a previously applied rating and applies the
// corrected outcome, all as appended ledger entries. matches_played is not
// touched: the match still happened, only its winner changed.
func (s *store) reverseAndReapplyTx(tx *sql.Tx, m *MatchResult, newWinner int, now int64) error {
	rows, err := tx.Query(`
		SELECT user_id, delta FROM elo_history
		WHERE match_result_id = ? AND reason IN (?, ?)`,
		m.ID, ReasonMatchResult, ReasonAdminResult,
	)
	if err != nil {
		return fmt.Errorf("failed to load original ledger entries: %w", err)
	}
	original := make(map[string]int)
	for rows.Next() {
		var userID string
		var delta int
		if err := rows.Scan(&userID, &delta); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		original[userID] = delta
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	// Step 1: compensating reversal of each original entry.
	for userID, origDelta := range original {
		var before int
		if err := tx.QueryRow("SELECT elo FROM players WHERE id = ?", userID).Scan(&before); err != nil {
			return fmt.Errorf("failed to read rating for %s: %w", userID, err)
		}
		after := before - origDelta
		if err := appendLedgerTx(tx, userID, m.ID, -origDelta, before, after, ReasonAdminReversal, now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			UPDATE players SET elo = ?, peak_elo = MAX(peak_elo, ?), category = ?, updated_at = ?
			WHERE id = ?`,
			after, after, elo.Category(after), now, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to unwind profile %s: %w", userID, err)
		}
	}

	// Step 2: apply the corrected outcome on the unwound ratings.
	winners := m.teamPlayers(newWinner)
	losers := m.TeamA
	if newWinner == TeamA {
		losers = m.TeamB
	}

	elos := make(map[string]int, len(winners)+len(losers))
	for _, p := range m.Participants() {
		var rating int
		if err := tx.QueryRow("SELECT elo FROM players WHERE id = ?", p.UserID).Scan(&rating); err != nil {
			return fmt.Errorf("failed to read rating for %s: %w", p.UserID, err)
		}
		elos[p.UserID] = rating
	}
	winnerRatings := make([]int, 0, len(winners))
	for _, p := range winners {
		winnerRatings = append(winnerRatings, elos[p.UserID])
	}
	loserRatings := make([]int, 0, len(losers))
	for _, p := range losers {
		loserRatings = append(loserRatings, elos[p.UserID])
	}
	delta := s.eloCfg.WinnerDelta(elo.SideRating(winnerRatings...), elo.SideRating(loserRatings...))

	for _, p := range winners {
		before := elos[p.UserID]
		after := before + delta
		if err := appendLedgerTx(tx, p.UserID, m.ID, delta, before, after, ReasonAdminResult, now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			UPDATE players SET elo = ?, peak_elo = MAX(peak_elo, ?), category = ?,
				wins = wins + 1, losses = MAX(losses - 1, 0),
				win_streak_current = win_streak_current + 1, updated_at = ?
			WHERE id = ?`,
			after, after, elo.Category(after), now, p.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update promoted winner %s: %w", p.UserID, err)
		}
	}
	for _, p := range losers {
		before := elos[p.UserID]
		after := before - delta
		if err := appendLedgerTx(tx, p.UserID, m.ID, -delta, before, after, ReasonAdminResult, now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			UPDATE players SET elo = ?, category = ?,
				wins = MAX(wins - 1, 0), losses = losses + 1,
				win_streak_current = 0, updated_at = ?
			WHERE id = ?`,
			after, elo.Category(after), now, p.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update demoted loser %s: %w", p.UserID, err)
		}
	}
	return nil
}

// appendLedgerTx inserts one append-only ledger row. A unique-constraint
// failure means the entry already exists for this (match, user, reason) and
// is reported as ErrAlreadyApplied.
func appendLedgerTx(tx *sql.Tx, userID, matchID string, delta, before, after int, reason HistoryReason, now int64) error {
	_, err := tx.Exec(`
		INSERT INTO elo_history (user_id, match_result_id, delta, elo_before, elo_after, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, matchID, delta, before, after, reason, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("%w: ledger entry exists for %s", ErrAlreadyApplied, userID)
		}
		return fmt.Errorf("failed to append ledger entry for %s: %w", userID, err)
	}
	return nil
}

func (s *store) GetProfile(userID string) (*RatingProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p RatingProfile
	var locked int
	err := s.db.QueryRow(`
		SELECT id, name, elo, initial_elo, peak_elo, category, category_locked,
			wins, losses, matches_played, win_streak_current
		FROM players WHERE id = ?`, userID,
	).Scan(&p.UserID, &p.Name, &p.Elo, &p.InitialElo, &p.PeakElo, &p.Category, &locked,
		&p.Wins, &p.Losses, &p.MatchesPlayed, &p.WinStreakCurrent)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	p.CategoryLocked = locked == 1

	// Trailing 30 days of ledger movement, derived on read so it can never
	// drift from the ledger.
	cutoff := time.Now().Add(-30 * 24 * time.Hour).Unix()
	err = s.db.QueryRow(
		"SELECT COALESCE(SUM(delta), 0) FROM elo_history WHERE user_id = ? AND created_at >= ?",
		userID, cutoff,
	).Scan(&p.EloDelta30d)
	if err != nil {
		return nil, fmt.Errorf("failed to compute 30d delta: %w", err)
	}
	return &p, nil
}

func (s *store) GetEloHistory(userID string, cursor int64, limit int) ([]EloHistoryEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	query := `
		SELECT id, user_id, match_result_id, delta, elo_before, elo_after, reason, created_at
		FROM elo_history WHERE user_id = ?`
	args := []any{userID}
	if cursor > 0 {
		query += " AND id < ?"
		args = append(args, cursor)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query elo history: %w", err)
	}
	defer rows.Close()

	var entries []EloHistoryEntry
	for rows.Next() {
		var e EloHistoryEntry
		var matchID sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &matchID, &e.Delta, &e.EloBefore, &e.EloAfter, &e.Reason, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan elo history row: %w", err)
		}
		if matchID.Valid {
			e.MatchResultID = &matchID.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate elo history: %w", err)
	}

	var next int64
	if len(entries) == limit {
		next = entries[len(entries)-1].ID
	}
	return entries, next, nil
}

func (s *store) AdminAdjust(userID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var before int
	if err := tx.QueryRow("SELECT elo FROM players WHERE id = ?", userID).Scan(&before); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, userID)
		}
		return fmt.Errorf("failed to read rating for %s: %w", userID, err)
	}
	after := before + delta
	now := time.Now().Unix()
	_, err = tx.Exec(`
		INSERT INTO elo_history (user_id, match_result_id, delta, elo_before, elo_after, reason, created_at)
		VALUES (?, NULL, ?, ?, ?, ?, ?)`,
		userID, delta, before, after, ReasonAdminAdjustment, now,
	)
	if err != nil {
		return fmt.Errorf("failed to append adjustment entry: %w", err)
	}
	_, err = tx.Exec(`
		UPDATE players SET elo = ?, peak_elo = MAX(peak_elo, ?), category = ?, updated_at = ?
		WHERE id = ?`,
		after, after, elo.Category(after), now, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust profile %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit adjustment: %w", err)
	}
	log.Info("Applied admin rating adjustment", "userID", userID, "delta", delta)
	return nil
}

func (s *store) UpsertPlayers(players []PlayerSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	initial := s.eloCfg.InitialRating
	for _, p := range players {
		_, err := tx.Exec(`
			INSERT INTO players (id, name, elo, initial_elo, peak_elo, category, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
			p.ID, p.Name, initial, initial, initial, elo.Category(initial), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) IsKnownPlayer(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", userID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "userID", userID)
		return false
	}
	return exists
}

func (s *store) GetAllPlayers() ([]RatingProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, elo, initial_elo, peak_elo, category, category_locked,
			wins, losses, matches_played, win_streak_current
		FROM players ORDER BY elo DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []RatingProfile
	for rows.Next() {
		var p RatingProfile
		var locked int
		if err := rows.Scan(&p.UserID, &p.Name, &p.Elo, &p.InitialElo, &p.PeakElo, &p.Category, &locked,
			&p.Wins, &p.Losses, &p.MatchesPlayed, &p.WinStreakCurrent); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		p.CategoryLocked = locked == 1
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *store) GetResultsForPostProcessing() ([]*MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT "+resultColumns+" FROM match_results WHERE status IN (?, ?, ?) AND processing_status != ?",
		StatusConfirmed, StatusRejected, StatusResolved, ProcessingDone,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for processing: %w", err)
	}
	defer rows.Close()

	var results []*MatchResult
	for rows.Next() {
		m, err := scanResult(rows)
		if err != nil {
			log.Error("Failed to scan match result row", "error", err)
			continue
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *store) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE match_results SET processing_status = ? WHERE id = ?", status, matchID)
	return err
}

func (s *store) GetStalePending(olderThan time.Duration) ([]*MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-olderThan).Unix()
	rows, err := s.db.Query(
		"SELECT "+resultColumns+" FROM match_results WHERE status = ? AND created_at < ? AND reminded_at IS NULL",
		StatusPendingConfirm, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending results: %w", err)
	}
	defer rows.Close()

	var results []*MatchResult
	for rows.Next() {
		m, err := scanResult(rows)
		if err != nil {
			log.Error("Failed to scan match result row", "error", err)
			continue
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *store) MarkReminded(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE match_results SET reminded_at = ? WHERE id = ?", time.Now().Unix(), matchID)
	return err
}

// loadResultTx reads a result inside a transaction so guard checks and the
// following compare-and-swap observe the same row version.
func (s *store) loadResultTx(tx *sql.Tx, id string) (*MatchResult, error) {
	row := tx.QueryRow("SELECT "+resultColumns+" FROM match_results WHERE id = ?", id)
	m, err := scanResult(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load match result: %w", err)
	}
	return m, nil
}

// scanResult maps one match_results row.
func scanResult(scanner interface{ Scan(...any) error }) (*MatchResult, error) {
	var m MatchResult
	var leagueID, confirmedBy, rejectionReason, disputeReason, disputeMessage sql.NullString
	var winnerTeam, remindedAt sql.NullInt64
	var eloApplied int
	var setsJSON, teamAJSON, teamBJSON string

	err := scanner.Scan(
		&m.ID, &leagueID, &m.MatchType, &m.Source, &m.Status, &m.ReportedBy, &confirmedBy,
		&winnerTeam, &setsJSON, &teamAJSON, &teamBJSON, &rejectionReason, &disputeReason,
		&disputeMessage, &eloApplied, &m.ProcessingStatus, &remindedAt, &m.PlayedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if leagueID.Valid {
		m.LeagueID = &leagueID.String
	}
	if confirmedBy.Valid {
		m.ConfirmedBy = &confirmedBy.String
	}
	if rejectionReason.Valid {
		m.RejectionReason = &rejectionReason.String
	}
	if disputeReason.Valid {
		m.DisputeReason = &disputeReason.String
	}
	if disputeMessage.Valid {
		m.DisputeMessage = &disputeMessage.String
	}
	if winnerTeam.Valid {
		m.WinnerTeam = int(winnerTeam.Int64)
	}
	if remindedAt.Valid {
		m.RemindedAt = &remindedAt.Int64
	}
	m.EloApplied = eloApplied == 1

	if err := json.Unmarshal([]byte(setsJSON), &m.Sets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sets_json: %w", err)
	}
	if err := json.Unmarshal([]byte(teamAJSON), &m.TeamA); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team_a_json: %w", err)
	}
	if err := json.Unmarshal([]byte(teamBJSON), &m.TeamB); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team_b_json: %w", err)
	}
	return &m, nil
}

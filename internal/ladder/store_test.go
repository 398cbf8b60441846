package ladder_test

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasFasolato/padel-point-engine/internal/database"
	"github.com/LucasFasolato/padel-point-engine/internal/elo"
	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (ladder.LadderStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := ladder.New(db, elo.DefaultConfig(), metrics.NewMock(), metrics.NewMockStore())
	teardown := func() {
		dbTeardown()
		db.Close()
	}

	return store, db, teardown
}

func seedPlayers(t *testing.T, store ladder.LadderStore, ids ...string) {
	t.Helper()
	seeds := make([]ladder.PlayerSeed, 0, len(ids))
	for _, id := range ids {
		seeds = append(seeds, ladder.PlayerSeed{ID: id, Name: "Player " + id})
	}
	require.NoError(t, store.UpsertPlayers(seeds))
}

func reportSingles(t *testing.T, store ladder.LadderStore, reporter, opponent string, matchType ladder.MatchType) *ladder.MatchResult {
	t.Helper()
	m, err := store.CreateResult(ladder.NewMatchResult{
		MatchType:  matchType,
		ReportedBy: reporter,
		TeamA:      []ladder.Participant{{UserID: reporter, Name: "Player " + reporter}},
		TeamB:      []ladder.Participant{{UserID: opponent, Name: "Player " + opponent}},
		Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}},
		PlayedAt:   time.Now().Unix(),
	})
	require.NoError(t, err)
	return m
}

func TestCreateResult(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)

	assert.Equal(t, ladder.StatusPendingConfirm, m.Status)
	assert.Equal(t, ladder.TeamA, m.WinnerTeam)
	assert.False(t, m.EloApplied)
	assert.Equal(t, ladder.ProcessingPending, m.ProcessingStatus)

	loaded, err := store.GetResult(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, "p1", loaded.ReportedBy)
	assert.Len(t, loaded.Sets, 2)
}

func TestCreateResultValidation(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	t.Run("rejects drawn sets", func(t *testing.T) {
		_, err := store.CreateResult(ladder.NewMatchResult{
			ReportedBy: "p1",
			TeamA:      []ladder.Participant{{UserID: "p1"}},
			TeamB:      []ladder.Participant{{UserID: "p2"}},
			Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 6}, {TeamA: 6, TeamB: 3}},
		})
		assert.ErrorIs(t, err, ladder.ErrInvalidScoreline)
	})

	t.Run("rejects unknown players", func(t *testing.T) {
		_, err := store.CreateResult(ladder.NewMatchResult{
			ReportedBy: "p1",
			TeamA:      []ladder.Participant{{UserID: "p1"}},
			TeamB:      []ladder.Participant{{UserID: "ghost"}},
			Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}},
		})
		assert.ErrorIs(t, err, ladder.ErrPlayerNotFound)
	})

	t.Run("rejects non-participant reporter", func(t *testing.T) {
		seedPlayers(t, store, "p3")
		_, err := store.CreateResult(ladder.NewMatchResult{
			ReportedBy: "p3",
			TeamA:      []ladder.Participant{{UserID: "p1"}},
			TeamB:      []ladder.Participant{{UserID: "p2"}},
			Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}},
		})
		assert.ErrorIs(t, err, ladder.ErrForbidden)
	})

}

func TestCreateResultLeagueMembership(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	_, err := db.Exec(`INSERT INTO leagues (id, name, mode, created_at) VALUES ('l1', 'Monday League', 'OPEN', 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO league_members (league_id, user_id, joined_at) VALUES ('l1', 'p1', 0)`)
	require.NoError(t, err)

	leagueID := "l1"
	_, err = store.CreateResult(ladder.NewMatchResult{
		LeagueID:   &leagueID,
		ReportedBy: "p1",
		TeamA:      []ladder.Participant{{UserID: "p1"}},
		TeamB:      []ladder.Participant{{UserID: "p2"}},
		Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}},
	})
	assert.ErrorIs(t, err, ladder.ErrLeagueMembersMissing)

	_, err = db.Exec(`INSERT INTO league_members (league_id, user_id, joined_at) VALUES ('l1', 'p2', 0)`)
	require.NoError(t, err)

	m, err := store.CreateResult(ladder.NewMatchResult{
		LeagueID:   &leagueID,
		ReportedBy: "p1",
		TeamA:      []ladder.Participant{{UserID: "p1"}},
		TeamB:      []ladder.Participant{{UserID: "p2"}},
		Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}},
	})
	require.NoError(t, err)
	require.NotNil(t, m.LeagueID)
	assert.Equal(t, "l1", *m.LeagueID)
}

func TestConfirmAppliesRating(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)

	confirmed, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)
	assert.Equal(t, ladder.StatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.EloApplied)
	require.NotNil(t, confirmed.ConfirmedBy)
	assert.Equal(t, "p2", *confirmed.ConfirmedBy)

	// Evenly matched players at 1200 with K=24: winner gains 12, loser loses 12.
	winner, err := store.GetProfile("p1")
	require.NoError(t, err)
	loser, err := store.GetProfile("p2")
	require.NoError(t, err)
	assert.Equal(t, 1212, winner.Elo)
	assert.Equal(t, 1188, loser.Elo)
	assert.Equal(t, 1212, winner.PeakElo)
	assert.Equal(t, 1200, loser.PeakElo)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 1, winner.WinStreakCurrent)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 0, loser.WinStreakCurrent)
	assert.True(t, winner.CategoryLocked)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&count))
	assert.Equal(t, 2, count)

	var sum int
	require.NoError(t, db.QueryRow("SELECT SUM(delta) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&sum))
	assert.Equal(t, 0, sum, "rating exchange must be zero-sum")
}

func TestConfirmGuards(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2", "p3")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)

	t.Run("reporter cannot confirm own report", func(t *testing.T) {
		_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p1", Role: ladder.RolePlayer})
		assert.ErrorIs(t, err, ladder.ErrForbidden)
	})

	t.Run("non-participant cannot confirm", func(t *testing.T) {
		_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p3", Role: ladder.RolePlayer})
		assert.ErrorIs(t, err, ladder.ErrForbidden)
	})

	t.Run("unknown match", func(t *testing.T) {
		_, err := store.Confirm("nope", ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
		assert.ErrorIs(t, err, ladder.ErrNotFound)
	})
}

func TestConfirmReplayIsNoOp(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)

	_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)

	replayed, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	assert.ErrorIs(t, err, ladder.ErrAlreadyApplied)
	require.NotNil(t, replayed)
	assert.Equal(t, ladder.StatusConfirmed, replayed.Status)

	// The replay must not have produced extra ledger entries.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&count))
	assert.Equal(t, 2, count)

	p1, err := store.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, 1212, p1.Elo)
}

func TestConcurrentConfirmAppliesOnce(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ladder.ErrAlreadyApplied)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one confirmation should win")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestFriendlyConfirmSkipsRating(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeFriendly)

	confirmed, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)
	assert.Equal(t, ladder.StatusConfirmed, confirmed.Status)
	assert.False(t, confirmed.EloApplied)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history").Scan(&count))
	assert.Equal(t, 0, count)

	p1, err := store.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, 1200, p1.Elo)
	assert.Equal(t, 0, p1.MatchesPlayed)
}

func TestDoublesUsesSideAverage(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "a1", "a2", "b1", "b2")

	// Skew one side so the side averages differ: a1 at 1300, the rest at 1200.
	_, err := db.Exec("UPDATE players SET elo = 1300 WHERE id = 'a1'")
	require.NoError(t, err)

	m, err := store.CreateResult(ladder.NewMatchResult{
		MatchType:  ladder.MatchTypeCompetitive,
		ReportedBy: "a1",
		TeamA:      []ladder.Participant{{UserID: "a1"}, {UserID: "a2"}},
		TeamB:      []ladder.Participant{{UserID: "b1"}, {UserID: "b2"}},
		Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 2}, {TeamA: 6, TeamB: 1}},
	})
	require.NoError(t, err)

	_, err = store.Confirm(m.ID, ladder.Actor{UserID: "b1", Role: ladder.RolePlayer})
	require.NoError(t, err)

	// Side A averages 1250 vs 1200; the favored side gains less than K/2.
	cfg := elo.DefaultConfig()
	want := cfg.WinnerDelta(1250, 1200)
	assert.Less(t, want, 12)

	a1, err := store.GetProfile("a1")
	require.NoError(t, err)
	a2, err := store.GetProfile("a2")
	require.NoError(t, err)
	b1, err := store.GetProfile("b1")
	require.NoError(t, err)
	assert.Equal(t, 1300+want, a1.Elo)
	assert.Equal(t, 1200+want, a2.Elo)
	assert.Equal(t, 1200-want, b1.Elo)
}

func TestReject(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)

	rejected, err := store.Reject(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer}, "wrong score")
	require.NoError(t, err)
	assert.Equal(t, ladder.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "wrong score", *rejected.RejectionReason)
	assert.False(t, rejected.EloApplied)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history").Scan(&count))
	assert.Equal(t, 0, count)

	// A rejected result cannot be confirmed afterwards.
	_, err = store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	assert.ErrorIs(t, err, ladder.ErrIllegalTransition)

	// Reporter cannot reject their own report either.
	m2 := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
	_, err = store.Reject(m2.ID, ladder.Actor{UserID: "p1", Role: ladder.RolePlayer}, "nope")
	assert.ErrorIs(t, err, ladder.ErrForbidden)
}

func TestDispute(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	t.Run("pending result can be disputed", func(t *testing.T) {
		m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
		disputed, err := store.Dispute(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer}, "score mismatch", "we played 6-4 7-5")
		require.NoError(t, err)
		assert.Equal(t, ladder.StatusDisputed, disputed.Status)
		require.NotNil(t, disputed.DisputeReason)
		assert.Equal(t, "score mismatch", *disputed.DisputeReason)
	})

	t.Run("confirmed result can be disputed and keeps its rating", func(t *testing.T) {
		m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
		_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
		require.NoError(t, err)

		before, err := store.GetProfile("p1")
		require.NoError(t, err)

		disputed, err := store.Dispute(m.ID, ladder.Actor{UserID: "p1", Role: ladder.RolePlayer}, "late dispute", "")
		require.NoError(t, err)
		assert.Equal(t, ladder.StatusDisputed, disputed.Status)
		assert.True(t, disputed.EloApplied)

		after, err := store.GetProfile("p1")
		require.NoError(t, err)
		assert.Equal(t, before.Elo, after.Elo)
	})

	t.Run("rejected result cannot be disputed", func(t *testing.T) {
		m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
		_, err := store.Reject(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer}, "no")
		require.NoError(t, err)
		_, err = store.Dispute(m.ID, ladder.Actor{UserID: "p1", Role: ladder.RolePlayer}, "late", "")
		assert.ErrorIs(t, err, ladder.ErrIllegalTransition)
	})
}

func TestResolveConfirmAsIs(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	admin := ladder.Actor{UserID: "admin", Role: ladder.RoleLeagueAdmin}

	t.Run("requires admin role", func(t *testing.T) {
		m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
		_, err := store.ResolveConfirmAsIs(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
		assert.ErrorIs(t, err, ladder.ErrForbidden)
	})

	t.Run("applies rating once for disputed unapplied result", func(t *testing.T) {
		m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
		_, err := store.Dispute(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer}, "contested", "")
		require.NoError(t, err)

		resolved, err := store.ResolveConfirmAsIs(m.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, ladder.StatusResolved, resolved.Status)
		assert.True(t, resolved.EloApplied)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("does not reapply for disputed applied result", func(t *testing.T) {
		m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
		_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
		require.NoError(t, err)
		_, err = store.Dispute(m.ID, ladder.Actor{UserID: "p1", Role: ladder.RolePlayer}, "contested", "")
		require.NoError(t, err)

		resolved, err := store.ResolveConfirmAsIs(m.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, ladder.StatusResolved, resolved.Status)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&count))
		assert.Equal(t, 2, count)
	})
}

func TestResolveOverrideFlipsWinner(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	admin := ladder.Actor{UserID: "admin", Role: ladder.RolePlatformAdmin}

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
	_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)
	_, err = store.Dispute(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer}, "p2 actually won", "")
	require.NoError(t, err)

	resolved, err := store.ResolveOverride(m.ID, admin, ladder.TeamB)
	require.NoError(t, err)
	assert.Equal(t, ladder.StatusResolved, resolved.Status)
	assert.Equal(t, ladder.TeamB, resolved.WinnerTeam)

	// Ledger: 2 original + 2 reversal + 2 corrected entries, all preserved.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&count))
	assert.Equal(t, 6, count)

	var sum int
	require.NoError(t, db.QueryRow("SELECT SUM(delta) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&sum))
	assert.Equal(t, 0, sum)

	// After reversal both sit at 1200 again; the corrected outcome then moves
	// 12 points the other way.
	p1, err := store.GetProfile("p1")
	require.NoError(t, err)
	p2, err := store.GetProfile("p2")
	require.NoError(t, err)
	assert.Equal(t, 1188, p1.Elo)
	assert.Equal(t, 1212, p2.Elo)

	// Win/loss records flip; matches played stays at one apiece.
	assert.Equal(t, 0, p1.Wins)
	assert.Equal(t, 1, p1.Losses)
	assert.Equal(t, 1, p2.Wins)
	assert.Equal(t, 0, p2.Losses)
	assert.Equal(t, 1, p1.MatchesPlayed)
	assert.Equal(t, 1, p2.MatchesPlayed)
	assert.Equal(t, 0, p1.WinStreakCurrent)
	assert.Equal(t, 1, p2.WinStreakCurrent)
}

func TestResolveOverrideSameWinnerNoExtraEntries(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	admin := ladder.Actor{UserID: "admin", Role: ladder.RolePlatformAdmin}

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
	_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)
	_, err = store.Dispute(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer}, "contested", "")
	require.NoError(t, err)

	_, err = store.ResolveOverride(m.ID, admin, ladder.TeamA)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM elo_history WHERE match_result_id = ?", m.ID).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestGetEloHistoryPagination(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	// Five settled matches leave five ledger entries for p1.
	for i := 0; i < 5; i++ {
		m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
		_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
		require.NoError(t, err)
	}

	page1, cursor, err := store.GetEloHistory("p1", 0, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.NotZero(t, cursor)
	assert.Greater(t, page1[0].ID, page1[1].ID, "newest first")

	page2, cursor2, err := store.GetEloHistory("p1", cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Less(t, page2[0].ID, page1[1].ID)

	page3, cursor3, err := store.GetEloHistory("p1", cursor2, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Zero(t, cursor3, "last page returns a zero cursor")

	// No overlap across pages.
	seen := map[int64]bool{}
	for _, e := range append(append(page1, page2...), page3...) {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}

func TestGetProfileEloDelta30d(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
	_, err := store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)

	p1, err := store.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, 12, p1.EloDelta30d)

	// Entries older than the window no longer count.
	old := time.Now().Add(-40 * 24 * time.Hour).Unix()
	_, err = db.Exec("UPDATE elo_history SET created_at = ?", old)
	require.NoError(t, err)

	p1, err = store.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p1.EloDelta30d)
}

func TestAdminAdjust(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1")

	require.NoError(t, store.AdminAdjust("p1", 50))

	p1, err := store.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, 1250, p1.Elo)
	assert.Equal(t, 1250, p1.PeakElo)
	assert.Equal(t, 50, p1.EloDelta30d, "adjustment lands in the ledger")

	var reason string
	require.NoError(t, db.QueryRow("SELECT reason FROM elo_history WHERE user_id = 'p1'").Scan(&reason))
	assert.Equal(t, string(ladder.ReasonAdminAdjustment), reason)

	assert.ErrorIs(t, store.AdminAdjust("ghost", 10), ladder.ErrPlayerNotFound)
}

func TestGetEloHistoryLimitClamp(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1")

	for i := 0; i < 25; i++ {
		require.NoError(t, store.AdminAdjust("p1", 1))
	}

	entries, _, err := store.GetEloHistory("p1", 0, 1000)
	require.NoError(t, err)
	assert.Len(t, entries, 25, "an oversized limit clamps to the maximum page size")

	entries, _, err = store.GetEloHistory("p1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 20, "a missing limit falls back to the default page size")
}

func TestRatingApplicationCounters(t *testing.T) {
	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer func() {
		dbTeardown()
		db.Close()
	}()

	metr := metrics.NewMock()
	counters := metrics.NewMockStore()
	store := ladder.New(db, elo.DefaultConfig(), metr, counters)
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
	_, err = store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)
	assert.Equal(t, 1, metr.RatingsApplied())
	assert.Equal(t, 1, counters.Counter(metrics.CounterRatingsApplied))

	// Replays never count twice.
	_, err = store.Confirm(m.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	assert.ErrorIs(t, err, ladder.ErrAlreadyApplied)
	assert.Equal(t, 1, metr.RatingsApplied())

	// Friendly results settle without a rating application.
	f := reportSingles(t, store, "p1", "p2", ladder.MatchTypeFriendly)
	_, err = store.Confirm(f.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)
	assert.Equal(t, 1, metr.RatingsApplied())

	// Flipping an applied outcome appends fresh ledger entries and counts.
	_, err = store.Dispute(m.ID, ladder.Actor{UserID: "p1", Role: ladder.RolePlayer}, "wrong winner", "")
	require.NoError(t, err)
	_, err = store.ResolveOverride(m.ID, ladder.Actor{UserID: "admin", Role: ladder.RolePlatformAdmin}, ladder.TeamB)
	require.NoError(t, err)
	assert.Equal(t, 2, metr.RatingsApplied())
	assert.Equal(t, 2, counters.Counter(metrics.CounterRatingsApplied))
}

func TestPostProcessingQueue(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	pending := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
	settled := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)
	_, err := store.Confirm(settled.ID, ladder.Actor{UserID: "p2", Role: ladder.RolePlayer})
	require.NoError(t, err)

	queue, err := store.GetResultsForPostProcessing()
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, settled.ID, queue[0].ID)
	assert.NotEqual(t, pending.ID, queue[0].ID)

	require.NoError(t, store.UpdateProcessingStatus(settled.ID, ladder.ProcessingDone))
	queue, err = store.GetResultsForPostProcessing()
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestStalePendingReminders(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store, "p1", "p2")

	m := reportSingles(t, store, "p1", "p2", ladder.MatchTypeCompetitive)

	stale, err := store.GetStalePending(72 * time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale)

	old := time.Now().Add(-80 * time.Hour).Unix()
	_, err = db.Exec("UPDATE match_results SET created_at = ? WHERE id = ?", old, m.ID)
	require.NoError(t, err)

	stale, err = store.GetStalePending(72 * time.Hour)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, m.ID, stale[0].ID)

	// Only one reminder per result.
	require.NoError(t, store.MarkReminded(m.ID))
	stale, err = store.GetStalePending(72 * time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestUpsertPlayersIsIdempotent(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	seedPlayers(t, store, "p1")
	m := []ladder.PlayerSeed{{ID: "p1", Name: "Renamed"}}
	require.NoError(t, store.UpsertPlayers(m))

	p1, err := store.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p1.Name)
	assert.Equal(t, 1200, p1.Elo)

	assert.True(t, store.IsKnownPlayer("p1"))
	assert.False(t, store.IsKnownPlayer("p9"))

	all, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetProfileNotFound(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.GetProfile("missing")
	assert.True(t, errors.Is(err, ladder.ErrPlayerNotFound))
}

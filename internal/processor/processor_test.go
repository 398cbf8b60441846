package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/league"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/notifier"
	"github.com/LucasFasolato/padel-point-engine/internal/pubsub"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

type deps struct {
	store     *ladder.MockStore
	standings *standings.MockStore
	leagues   *league.MockStore
	notif     *notifier.Mock
	metr      *metrics.Mock
	ps        *pubsub.MockPubSubClient
}

func newProcessor() (*Processor, *deps) {
	d := &deps{
		store:     ladder.NewMock(),
		standings: standings.NewMock(),
		leagues:   league.NewMock(),
		notif:     notifier.NewMock(),
		metr:      metrics.NewMock(),
		ps:        pubsub.NewMock("TEST"),
	}
	return New(d.store, d.standings, d.leagues, d.notif, d.metr, d.ps), d
}

func settledResult(status ladder.Status, leagueID *string) *ladder.MatchResult {
	return &ladder.MatchResult{
		ID:               "m1",
		LeagueID:         leagueID,
		MatchType:        ladder.MatchTypeCompetitive,
		Status:           status,
		ReportedBy:       "p1",
		WinnerTeam:       ladder.TeamA,
		Sets:             []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}},
		TeamA:            []ladder.Participant{{UserID: "p1", Name: "Alice"}},
		TeamB:            []ladder.Participant{{UserID: "p2", Name: "Bob"}},
		EloApplied:       status.Accepted(),
		ProcessingStatus: ladder.ProcessingPending,
		UpdatedAt:        time.Now().Unix(),
	}
}

func TestProcessor_ProcessResults(t *testing.T) {
	t.Run("confirmed result without league runs the full pipeline", func(t *testing.T) {
		p, d := newProcessor()

		result := settledResult(ladder.StatusConfirmed, nil)
		d.store.GetResultsForPostProcessingFunc = func() ([]*ladder.MatchResult, error) {
			return []*ladder.MatchResult{result}, nil
		}

		p.ProcessResults(false)

		require.Len(t, d.notif.SendResultSettledNotificationCalls, 1)
		assert.Equal(t, "m1", d.notif.SendResultSettledNotificationCalls[0].ID)
		assert.Empty(t, d.standings.RecomputeCalls, "no league means no standings recompute")
		assert.Equal(t, 1, d.metr.ResultsSettled())

		require.Len(t, d.ps.SendMessageCalls, 1)
		assert.Equal(t, string(pubsub.EventResultSettled), d.ps.SendMessageCalls[0].Topic)

		// PENDING -> NOTIFIED -> STANDINGS_UPDATED -> DONE
		require.Len(t, d.store.UpdateProcessingStatusCalls, 3)
		assert.Equal(t, ladder.ProcessingDone, d.store.UpdateProcessingStatusCalls[2].Status)
		assert.Equal(t, ladder.ProcessingDone, result.ProcessingStatus)
	})

	t.Run("accepted league result triggers a standings recompute", func(t *testing.T) {
		p, d := newProcessor()

		leagueID := "l1"
		result := settledResult(ladder.StatusResolved, &leagueID)
		d.store.GetResultsForPostProcessingFunc = func() ([]*ladder.MatchResult, error) {
			return []*ladder.MatchResult{result}, nil
		}
		d.standings.RecomputeFunc = func(id string) (*standings.Snapshot, error) {
			return &standings.Snapshot{LeagueID: id, ComputedAt: time.Now().Unix()}, nil
		}
		d.leagues.GetLeagueFunc = func(id string) (*league.League, error) {
			return &league.League{ID: id, Name: "Monday League"}, nil
		}

		p.ProcessResults(false)

		require.Len(t, d.standings.RecomputeCalls, 1)
		assert.Equal(t, "l1", d.standings.RecomputeCalls[0])
		require.Len(t, d.notif.SendStandingsCalls, 1)
		assert.Equal(t, 1, d.metr.StandingsRecomputes())
		assert.Equal(t, ladder.ProcessingDone, result.ProcessingStatus)
	})

	t.Run("rejected league result settles without touching standings", func(t *testing.T) {
		p, d := newProcessor()

		leagueID := "l1"
		result := settledResult(ladder.StatusRejected, &leagueID)
		d.store.GetResultsForPostProcessingFunc = func() ([]*ladder.MatchResult, error) {
			return []*ladder.MatchResult{result}, nil
		}

		p.ProcessResults(false)

		assert.Empty(t, d.standings.RecomputeCalls)
		assert.Equal(t, ladder.ProcessingDone, result.ProcessingStatus)
	})

	t.Run("old settlements skip the channel notification", func(t *testing.T) {
		p, d := newProcessor()

		result := settledResult(ladder.StatusConfirmed, nil)
		result.UpdatedAt = time.Now().Add(-48 * time.Hour).Unix()
		d.store.GetResultsForPostProcessingFunc = func() ([]*ladder.MatchResult, error) {
			return []*ladder.MatchResult{result}, nil
		}

		p.ProcessResults(false)

		assert.Empty(t, d.notif.SendResultSettledNotificationCalls)
		assert.Equal(t, ladder.ProcessingDone, result.ProcessingStatus)
	})

	t.Run("fresh settlements trigger a leaderboard post", func(t *testing.T) {
		p, d := newProcessor()

		result := settledResult(ladder.StatusConfirmed, nil)
		d.store.GetResultsForPostProcessingFunc = func() ([]*ladder.MatchResult, error) {
			return []*ladder.MatchResult{result}, nil
		}
		d.store.GetAllPlayersFunc = func() ([]ladder.RatingProfile, error) {
			return []ladder.RatingProfile{
				{UserID: "p1", Name: "Alice", Elo: 1212},
				{UserID: "p2", Name: "Bob", Elo: 1188},
			}, nil
		}

		p.ProcessResults(false)

		require.Len(t, d.notif.SendRatingLeaderboardCalls, 1)
		assert.Len(t, d.notif.SendRatingLeaderboardCalls[0], 2)
	})

	t.Run("an empty queue posts no leaderboard", func(t *testing.T) {
		p, d := newProcessor()

		d.store.GetResultsForPostProcessingFunc = func() ([]*ladder.MatchResult, error) {
			return nil, nil
		}
		d.store.GetAllPlayersFunc = func() ([]ladder.RatingProfile, error) {
			return []ladder.RatingProfile{{UserID: "p1", Name: "Alice", Elo: 1200}}, nil
		}

		p.ProcessResults(false)

		assert.Empty(t, d.notif.SendRatingLeaderboardCalls)
	})

	t.Run("dry run advances in memory only", func(t *testing.T) {
		p, d := newProcessor()

		result := settledResult(ladder.StatusConfirmed, nil)
		d.store.GetResultsForPostProcessingFunc = func() ([]*ladder.MatchResult, error) {
			return []*ladder.MatchResult{result}, nil
		}

		p.ProcessResults(true)

		assert.Empty(t, d.store.UpdateProcessingStatusCalls, "dry run must not persist status changes")
		assert.Empty(t, d.ps.SendMessageCalls, "dry run must not publish events")
		assert.Equal(t, ladder.ProcessingDone, result.ProcessingStatus)
	})
}

func TestProcessor_SweepStalePending(t *testing.T) {
	t.Run("sends one reminder per stale result", func(t *testing.T) {
		p, d := newProcessor()

		stale := settledResult(ladder.StatusPendingConfirm, nil)
		d.store.GetStalePendingFunc = func(olderThan time.Duration) ([]*ladder.MatchResult, error) {
			assert.Equal(t, 72*time.Hour, olderThan)
			return []*ladder.MatchResult{stale}, nil
		}

		p.SweepStalePending(72*time.Hour, false)

		require.Len(t, d.notif.SendPendingReminderCalls, 1)
		require.Len(t, d.store.MarkRemindedCalls, 1)
		assert.Equal(t, "m1", d.store.MarkRemindedCalls[0])

		require.Len(t, d.ps.SendMessageCalls, 1)
		assert.Equal(t, string(pubsub.EventPendingReminder), d.ps.SendMessageCalls[0].Topic)
	})

	t.Run("dry run never marks results reminded", func(t *testing.T) {
		p, d := newProcessor()

		stale := settledResult(ladder.StatusPendingConfirm, nil)
		d.store.GetStalePendingFunc = func(olderThan time.Duration) ([]*ladder.MatchResult, error) {
			return []*ladder.MatchResult{stale}, nil
		}

		p.SweepStalePending(72*time.Hour, true)

		require.Len(t, d.notif.SendPendingReminderCalls, 1)
		assert.Empty(t, d.store.MarkRemindedCalls)
	})
}

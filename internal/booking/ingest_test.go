package booking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
)

func playedReservation(matchID string) Reservation {
	return Reservation{
		MatchID:       matchID,
		OwnerID:       "p1",
		GameStatus:    GameStatusPlayed,
		ResultsStatus: ResultsStatusConfirmed,
		Teams: []Team{
			{ID: "t1", Players: []Player{{UserID: "p1", Name: "Alice"}, {UserID: "p2", Name: "Bob"}}},
			{ID: "t2", Players: []Player{{UserID: "p3", Name: "Carol"}, {UserID: "p4", Name: "Dave"}}},
		},
		Sets: []SetResult{
			{Name: "Set 1", Scores: map[string]int{"t1": 6, "t2": 4}},
			{Name: "Set 2", Scores: map[string]int{"t1": 6, "t2": 3}},
		},
		End: 1700000000,
	}
}

func TestFetchIngestsPlayedReservations(t *testing.T) {
	client := NewMockClient()
	store := ladder.NewMock()
	metr := metrics.NewMock()
	ingestor := NewIngestor(client, store, metr, "tenant-1")

	client.GetReservationsFunc = func(params *SearchReservationsParams) ([]ReservationSummary, error) {
		assert.Equal(t, []string{"tenant-1"}, params.TenantIDs)
		return []ReservationSummary{{MatchID: "r1"}}, nil
	}
	client.GetReservationFunc = func(matchID string) (Reservation, error) {
		return playedReservation(matchID), nil
	}
	store.GetResultFunc = func(id string) (*ladder.MatchResult, error) {
		return nil, ladder.ErrNotFound
	}
	store.CreateResultFunc = func(input ladder.NewMatchResult) (*ladder.MatchResult, error) {
		return &ladder.MatchResult{ID: input.ID}, nil
	}

	created, err := ingestor.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, metr.ResultsReported())

	require.Len(t, store.CreateResultCalls, 1)
	input := store.CreateResultCalls[0]
	assert.Equal(t, "r1", input.ID)
	assert.Equal(t, ladder.SourceReservation, input.Source)
	assert.Equal(t, ladder.MatchTypeCompetitive, input.MatchType)
	assert.Equal(t, "p1", input.ReportedBy)
	require.Len(t, input.Sets, 2)
	assert.Equal(t, ladder.SetScore{TeamA: 6, TeamB: 4}, input.Sets[0])
	require.Len(t, input.TeamA, 2)
	assert.Equal(t, "Alice", input.TeamA[0].Name)
	assert.Equal(t, int64(1700000000), input.PlayedAt)
}

func TestFetchSkipsAlreadyIngested(t *testing.T) {
	client := NewMockClient()
	store := ladder.NewMock()
	metr := metrics.NewMock()
	ingestor := NewIngestor(client, store, metr, "tenant-1")

	client.GetReservationsFunc = func(params *SearchReservationsParams) ([]ReservationSummary, error) {
		return []ReservationSummary{{MatchID: "r1"}}, nil
	}
	store.GetResultFunc = func(id string) (*ladder.MatchResult, error) {
		return &ladder.MatchResult{ID: id}, nil
	}

	created, err := ingestor.Fetch()
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, store.CreateResultCalls)
	assert.Empty(t, client.GetReservationCalls, "known reservations are not refetched")
}

func TestFetchSkipsUnplayedReservations(t *testing.T) {
	client := NewMockClient()
	store := ladder.NewMock()
	metr := metrics.NewMock()
	ingestor := NewIngestor(client, store, metr, "tenant-1")

	client.GetReservationsFunc = func(params *SearchReservationsParams) ([]ReservationSummary, error) {
		return []ReservationSummary{{MatchID: "r1"}, {MatchID: "r2"}}, nil
	}
	client.GetReservationFunc = func(matchID string) (Reservation, error) {
		r := playedReservation(matchID)
		if matchID == "r1" {
			r.GameStatus = GameStatusPending
			r.ResultsStatus = ResultsStatusPending
		}
		return r, nil
	}
	store.GetResultFunc = func(id string) (*ladder.MatchResult, error) {
		return nil, ladder.ErrNotFound
	}
	store.CreateResultFunc = func(input ladder.NewMatchResult) (*ladder.MatchResult, error) {
		return &ladder.MatchResult{ID: input.ID}, nil
	}

	created, err := ingestor.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, store.CreateResultCalls, 1)
	assert.Equal(t, "r2", store.CreateResultCalls[0].ID)
}

func TestFetchContinuesPastFailures(t *testing.T) {
	client := NewMockClient()
	store := ladder.NewMock()
	metr := metrics.NewMock()
	ingestor := NewIngestor(client, store, metr, "tenant-1")

	client.GetReservationsFunc = func(params *SearchReservationsParams) ([]ReservationSummary, error) {
		return []ReservationSummary{{MatchID: "bad"}, {MatchID: "good"}}, nil
	}
	client.GetReservationFunc = func(matchID string) (Reservation, error) {
		if matchID == "bad" {
			return Reservation{}, fmt.Errorf("upstream timeout")
		}
		return playedReservation(matchID), nil
	}
	store.GetResultFunc = func(id string) (*ladder.MatchResult, error) {
		return nil, ladder.ErrNotFound
	}
	store.CreateResultFunc = func(input ladder.NewMatchResult) (*ladder.MatchResult, error) {
		return &ladder.MatchResult{ID: input.ID}, nil
	}

	created, err := ingestor.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

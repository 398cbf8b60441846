package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
)

// Ingestor pulls played reservations from Playtomic and turns them into
// pending match results awaiting opponent confirmation.
type Ingestor struct {
	client   BookingClient
	store    ladder.LadderStore
	metrics  metrics.Metrics
	tenantID string
}

// NewIngestor creates a new Ingestor.
func NewIngestor(client BookingClient, store ladder.LadderStore, metrics metrics.Metrics, tenantID string) *Ingestor {
	return &Ingestor{
		client:   client,
		store:    store,
		metrics:  metrics,
		tenantID: tenantID,
	}
}

// Fetch pulls recent reservations and ingests every played one with
// confirmed results. Returns the number of newly created results.
func (i *Ingestor) Fetch() (int, error) {
	params := &SearchReservationsParams{
		SportID:       "PADEL",
		HasPlayers:    true,
		Sort:          "start_date,desc",
		TenantIDs:     []string{i.tenantID},
		FromStartDate: time.Now().AddDate(0, 0, -7).Format("2006-01-02T15:04:05"),
	}

	summaries, err := i.client.GetReservations(params)
	if err != nil {
		return 0, fmt.Errorf("failed to search reservations: %w", err)
	}
	log.Info("Fetched reservation summaries", "count", len(summaries))

	created := 0
	for _, summary := range summaries {
		ok, err := i.ingestOne(summary.MatchID)
		if err != nil {
			log.Error("Failed to ingest reservation", "error", err, "matchID", summary.MatchID)
			continue
		}
		if ok {
			created++
		}
	}
	log.Info("Reservation ingest finished", "created", created)
	return created, nil
}

// ingestOne creates a pending result for one reservation. Returns false
// when the reservation is skipped (not played, already ingested, malformed).
func (i *Ingestor) ingestOne(matchID string) (bool, error) {
	// Already ingested reservations keep their lifecycle; ingest never
	// overwrites.
	if _, err := i.store.GetResult(matchID); err == nil {
		log.Debug("Reservation already ingested", "matchID", matchID)
		return false, nil
	} else if !errors.Is(err, ladder.ErrNotFound) {
		return false, err
	}

	reservation, err := i.client.GetReservation(matchID)
	if err != nil {
		return false, fmt.Errorf("failed to load reservation: %w", err)
	}

	if reservation.GameStatus != GameStatusPlayed || reservation.ResultsStatus != ResultsStatusConfirmed {
		log.Debug("Skipping reservation without confirmed results",
			"matchID", matchID, "gameStatus", reservation.GameStatus, "resultsStatus", reservation.ResultsStatus)
		return false, nil
	}
	if len(reservation.Teams) != 2 {
		log.Warn("Skipping reservation without two teams", "matchID", matchID, "teams", len(reservation.Teams))
		return false, nil
	}

	input, err := i.mapReservation(&reservation)
	if err != nil {
		return false, err
	}

	if err := i.store.UpsertPlayers(playersOf(&reservation)); err != nil {
		return false, fmt.Errorf("failed to upsert reservation players: %w", err)
	}

	if _, err := i.store.CreateResult(*input); err != nil {
		return false, fmt.Errorf("failed to create result: %w", err)
	}
	i.metrics.IncResultsReported()
	log.Info("Ingested reservation as pending result", "matchID", matchID)
	return true, nil
}

// mapReservation converts the Playtomic wire shape into a result report.
// The reservation owner acts as the reporter.
func (i *Ingestor) mapReservation(r *Reservation) (*ladder.NewMatchResult, error) {
	teamA, teamB := r.Teams[0], r.Teams[1]

	sets := make([]ladder.SetScore, 0, len(r.Sets))
	for _, set := range r.Sets {
		sets = append(sets, ladder.SetScore{
			TeamA: set.Scores[teamA.ID],
			TeamB: set.Scores[teamB.ID],
		})
	}

	reporter := r.OwnerID
	if reporter == "" && len(teamA.Players) > 0 {
		reporter = teamA.Players[0].UserID
	}

	return &ladder.NewMatchResult{
		ID:         r.MatchID,
		MatchType:  ladder.MatchTypeCompetitive,
		Source:     ladder.SourceReservation,
		ReportedBy: reporter,
		TeamA:      mapPlayers(teamA.Players),
		TeamB:      mapPlayers(teamB.Players),
		Sets:       sets,
		PlayedAt:   r.End,
	}, nil
}

func mapPlayers(players []Player) []ladder.Participant {
	out := make([]ladder.Participant, 0, len(players))
	for _, p := range players {
		out = append(out, ladder.Participant{UserID: p.UserID, Name: p.Name})
	}
	return out
}

func playersOf(r *Reservation) []ladder.PlayerSeed {
	var seeds []ladder.PlayerSeed
	for _, team := range r.Teams {
		for _, p := range team.Players {
			seeds = append(seeds, ladder.PlayerSeed{ID: p.UserID, Name: p.Name})
		}
	}
	return seeds
}

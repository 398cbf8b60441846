package processor

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/league"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/pubsub"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

// notifyWindow bounds how old a settlement may be and still trigger a
// notification. Backfilled historic results skip the channel noise.
const notifyWindow = 24 * time.Hour

// New creates a new Processor.
func New(store Store, standingsStore standings.StandingsStore, leagues league.LeagueStore, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:     store,
		standings: standingsStore,
		leagues:   leagues,
		pubsub:    pubsub,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// ProcessResults fetches settled results that need post-processing and
// advances them through the pipeline.
func (p *Processor) ProcessResults(dryRun bool) {
	log.Info("Starting result processing...")
	results, err := p.store.GetResultsForPostProcessing()
	if err != nil {
		log.Error("Failed to get results for processing", "error", err)
		return
	}

	if len(results) == 0 {
		log.Info("No results to process.")
		return
	}

	log.Info("Found results to process", "count", len(results))
	fresh := 0
	for _, result := range results {
		if result.ProcessingStatus == ladder.ProcessingPending {
			fresh++
		}
		startTime := time.Now()
		p.processResult(result, dryRun)
		duration := time.Since(startTime).Milliseconds()
		p.metrics.ObserveProcessingDuration(float64(duration))
	}
	if fresh > 0 {
		p.postRatingLeaderboard(dryRun)
	}
	log.Info("Result processing finished.")
}

// postRatingLeaderboard shares the club-wide rating table after a run that
// settled at least one new result.
func (p *Processor) postRatingLeaderboard(dryRun bool) {
	players, err := p.store.GetAllPlayers()
	if err != nil {
		log.Error("Failed to load players for the leaderboard post", "error", err)
		return
	}
	if len(players) == 0 {
		return
	}
	p.notifier.SendRatingLeaderboard(players, dryRun)
}

func (p *Processor) processResult(result *ladder.MatchResult, dryRun bool) {
	log.Info("Processing result", "matchID", result.ID, "initial_status", result.ProcessingStatus, "status", result.Status)
	for {
		currentState := result.ProcessingStatus
		log.Debug("Evaluating result state", "matchID", result.ID, "status", currentState)

		switch currentState {
		case ladder.ProcessingPending:
			// Skip the channel notification for results settled long ago so
			// historic backfills stay quiet.
			settledAt := time.Unix(result.UpdatedAt, 0)
			if time.Since(settledAt) < notifyWindow {
				p.notifier.SendResultSettledNotification(result, dryRun)
			}
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventResultSettled, pubsub.ResultSettledEvent{
					MatchID:    result.ID,
					Status:     string(result.Status),
					LeagueID:   result.LeagueID,
					EloApplied: result.EloApplied,
				})
			}
			p.metrics.IncResultsSettled()
			p.updateStatus(result, ladder.ProcessingNotified, dryRun)

		case ladder.ProcessingNotified:
			if result.LeagueID != nil && result.Status.Accepted() {
				log.Info("Result affects a league. Recomputing standings.", "matchID", result.ID, "leagueID", *result.LeagueID)
				if !dryRun {
					if err := p.recomputeStandings(*result.LeagueID, dryRun); err != nil {
						log.Error("Failed to recompute standings", "error", err, "leagueID", *result.LeagueID)
						return
					}
				}
			}
			p.updateStatus(result, ladder.ProcessingStandingsUpdated, dryRun)

		case ladder.ProcessingStandingsUpdated:
			log.Info("Standings updated. Marking result as done.", "matchID", result.ID)
			p.updateStatus(result, ladder.ProcessingDone, dryRun)

		case ladder.ProcessingDone:
			log.Debug("Result is done. No further processing needed.", "matchID", result.ID)
			return

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", result.ID)
			return
		}

		// If the status hasn't changed, we're done with this result for now.
		if result.ProcessingStatus == currentState {
			log.Debug("Result state did not change. Finished processing for now.", "matchID", result.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing result", "matchID", result.ID, "final_status", result.ProcessingStatus)
}

// RecomputeStandings rebuilds one league table and posts it. Exposed for
// the pub/sub push endpoint.
func (p *Processor) RecomputeStandings(leagueID string, dryRun bool) error {
	return p.recomputeStandings(leagueID, dryRun)
}

func (p *Processor) recomputeStandings(leagueID string, dryRun bool) error {
	snap, err := p.standings.Recompute(leagueID)
	if err != nil {
		return err
	}
	p.metrics.IncStandingsRecomputes()

	leagueName := leagueID
	if l, err := p.leagues.GetLeague(leagueID); err == nil {
		leagueName = l.Name
	}
	p.notifier.SendStandings(snap, leagueName, dryRun)
	return nil
}

// SweepStalePending finds results stuck in PENDING_CONFIRM and sends one
// reminder per result.
func (p *Processor) SweepStalePending(olderThan time.Duration, dryRun bool) {
	stale, err := p.store.GetStalePending(olderThan)
	if err != nil {
		log.Error("Failed to get stale pending results", "error", err)
		return
	}
	if len(stale) == 0 {
		log.Debug("No stale pending results.")
		return
	}

	log.Info("Found stale pending results", "count", len(stale))
	for _, result := range stale {
		p.notifier.SendPendingReminder(result, dryRun)
		if dryRun {
			log.Info("[Dry Run] Would mark result as reminded", "matchID", result.ID)
			continue
		}
		p.pubsub.SendMessage(pubsub.EventPendingReminder, pubsub.PendingReminderEvent{
			MatchID:    result.ID,
			ReportedBy: result.ReportedBy,
		})
		if err := p.store.MarkReminded(result.ID); err != nil {
			log.Error("Failed to mark result as reminded", "error", err, "matchID", result.ID)
		}
	}
}

func (p *Processor) updateStatus(result *ladder.MatchResult, newStatus ladder.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update result status", "matchID", result.ID, "from", result.ProcessingStatus, "to", newStatus)
		result.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(result.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", result.ID)
	} else {
		log.Debug("Successfully updated status", "matchID", result.ID, "from", result.ProcessingStatus, "to", newStatus)
		result.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}

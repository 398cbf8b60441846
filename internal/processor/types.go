package processor

import (
	"github.com/LucasFasolato/padel-point-engine/internal/league"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/pubsub"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

// Processor handles the business logic of post-processing settled results.
type Processor struct {
	store     Store
	standings standings.StandingsStore
	leagues   league.LeagueStore
	pubsub    pubsub.PubSubClient
	notifier  Notifier
	metrics   metrics.Metrics
}

package http

import (
	"net/http"

	"github.com/LucasFasolato/padel-point-engine/internal/booking"
	"github.com/LucasFasolato/padel-point-engine/internal/challenge"
	"github.com/LucasFasolato/padel-point-engine/internal/config"
	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/league"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/notifier"
	"github.com/LucasFasolato/padel-point-engine/internal/processor"
	"github.com/LucasFasolato/padel-point-engine/internal/pubsub"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

type Server struct {
	Store          ladder.LadderStore
	Leagues        league.LeagueStore
	Challenges     challenge.ChallengeService
	Standings      standings.StandingsStore
	Metrics        metrics.Metrics
	MetricsStore   metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Ingestor       *booking.Ingestor
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

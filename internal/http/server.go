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

func NewServer(store ladder.LadderStore, leagues league.LeagueStore, challenges challenge.ChallengeService, standingsStore standings.StandingsStore, metricsSvc metrics.Metrics, metricsStore metrics.MetricsStore, metricsHandler http.Handler, cfg config.Config, ingestor *booking.Ingestor, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Leagues:        leagues,
		Challenges:     challenges,
		Standings:      standingsStore,
		Metrics:        metricsSvc,
		MetricsStore:   metricsStore,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Ingestor:       ingestor,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Routes acting on behalf of a caller additionally go through
	// actorMiddleware, which reads the identity asserted upstream.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))

	// Result lifecycle.
	s.Router.Handle("POST /matches", Chain(s.CreateResultHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetResultHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/confirm", Chain(s.ConfirmResultHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /matches/{id}/reject", Chain(s.RejectResultHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /matches/{id}/dispute", Chain(s.DisputeResultHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /matches/{id}/resolve-confirm-as-is", Chain(s.ResolveConfirmAsIsHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /matches/{id}/resolve-override", Chain(s.ResolveOverrideHandler(), paramsMiddleware, actorMiddleware))

	// Ratings.
	s.Router.Handle("GET /me/competitive-profile", Chain(s.ProfileHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("GET /me/elo-history", Chain(s.EloHistoryHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("GET /players", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("POST /players/{id}/adjust-elo", Chain(s.AdminAdjustHandler(), paramsMiddleware, actorMiddleware))

	// Challenges.
	s.Router.Handle("POST /challenges", Chain(s.CreateChallengeHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("GET /challenges", Chain(s.ListChallengesHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /challenges/{id}/accept", Chain(s.AcceptChallengeHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /challenges/{id}/cancel", Chain(s.CancelChallengeHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /challenges/{id}/result", Chain(s.CompleteChallengeHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("GET /me/suggested-opponents", Chain(s.SuggestOpponentsHandler(), paramsMiddleware, actorMiddleware))

	// Leagues and standings.
	s.Router.Handle("POST /leagues", Chain(s.CreateLeagueHandler(), paramsMiddleware))
	s.Router.Handle("GET /leagues", Chain(s.ListLeaguesHandler(), paramsMiddleware))
	s.Router.Handle("GET /leagues/{id}", Chain(s.GetLeagueHandler(), paramsMiddleware))
	s.Router.Handle("GET /leagues/{id}/members", Chain(s.ListMembersHandler(), paramsMiddleware))
	s.Router.Handle("POST /leagues/{id}/members", Chain(s.AddMemberHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /leagues/{id}/members/{userID}", Chain(s.RemoveMemberHandler(), paramsMiddleware))
	s.Router.Handle("GET /leagues/{id}/standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("POST /leagues/{id}/standings/recompute", Chain(s.RecomputeStandingsHandler(), paramsMiddleware))

	// Background pipeline triggers (Cloud Scheduler hits these).
	s.Router.Handle("/fetch", Chain(s.FetchResultsHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessResultsHandler(), paramsMiddleware))

	// Pub/Sub push endpoint.
	s.Router.Handle("POST /pubsub/recompute-standings", Chain(s.RecomputeStandingsPushHandler(), paramsMiddleware))

	// Slack slash commands.
	s.Router.Handle("/slack/command/standings", Chain(s.StandingsCommandHandler(), paramsMiddleware, s.verifySlackSignature))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, s.verifySlackSignature))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ResultsReported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_results_reported_total",
			Help: "The total number of match results reported.",
		}),
		ResultsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_results_settled_total",
			Help: "The total number of match results reaching a terminal status.",
		}),
		RatingsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_ratings_applied_total",
			Help: "The total number of rating applications committed to the ledger.",
		}),
		StandingsRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_standings_recomputes_total",
			Help: "The total number of league standings recomputes.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "padel_result_processing_duration_seconds",
			Help:    "The duration of individual result post-processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "padel_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ResultsReported,
		s.ResultsSettled,
		s.RatingsApplied,
		s.StandingsRecomputes,
		s.ProcessingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncResultsReported() {
	s.ResultsReported.Inc()
}

func (s *Service) IncResultsSettled() {
	s.ResultsSettled.Inc()
}

func (s *Service) IncRatingsApplied() {
	s.RatingsApplied.Inc()
}

func (s *Service) IncStandingsRecomputes() {
	s.StandingsRecomputes.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}

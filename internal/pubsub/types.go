package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventResultSettled      EventType = "result-settled"
	EventRecomputeStandings EventType = "recompute-standings"
	EventPendingReminder    EventType = "pending-reminder"
)

// ResultSettledEvent is published whenever a result reaches a terminal
// status.
type ResultSettledEvent struct {
	MatchID    string  `msgpack:"match_id"`
	Status     string  `msgpack:"status"`
	LeagueID   *string `msgpack:"league_id,omitempty"`
	EloApplied bool    `msgpack:"elo_applied"`
}

// RecomputeStandingsEvent asks the subscriber to rebuild one league table.
type RecomputeStandingsEvent struct {
	LeagueID string `msgpack:"league_id"`
}

// PendingReminderEvent nudges the participants of a stale pending result.
type PendingReminderEvent struct {
	MatchID    string `msgpack:"match_id"`
	ReportedBy string `msgpack:"reported_by"`
}

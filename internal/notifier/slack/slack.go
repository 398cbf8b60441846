package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/notifier"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	counters  metrics.MetricsStore
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, m metrics.Metrics, counters metrics.MetricsStore) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   m,
		counters:  counters,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, m metrics.Metrics, counters metrics.MetricsStore) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   m,
		counters:  counters,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	s.counters.Increment(metrics.CounterNotificationsSent)
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultSettledNotification(match *ladder.MatchResult, dryRun bool) error {
	msg := s.formatResultSettled(match)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendDisputeNotification(match *ladder.MatchResult, dryRun bool) error {
	msg := s.formatDispute(match)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPendingReminder(match *ladder.MatchResult, dryRun bool) error {
	msg := s.formatPendingReminder(match)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendStandings(snapshot *standings.Snapshot, leagueName string, dryRun bool) error {
	msg := s.formatStandings(snapshot, leagueName)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendRatingLeaderboard(players []ladder.RatingProfile, dryRun bool) error {
	msg := s.formatRatingLeaderboard(players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatStandingsResponse formats a standings message for an HTTP response.
func (s *Notifier) FormatStandingsResponse(snapshot *standings.Snapshot, leagueName string) (any, error) {
	return s.formatStandings(snapshot, leagueName), nil
}

// FormatRatingLeaderboardResponse formats a leaderboard message for an HTTP response.
func (s *Notifier) FormatRatingLeaderboardResponse(players []ladder.RatingProfile) (any, error) {
	return s.formatRatingLeaderboard(players), nil
}

func sideNames(team []ladder.Participant) string {
	names := make([]string, 0, len(team))
	for _, p := range team {
		if p.Name != "" {
			names = append(names, p.Name)
		} else {
			names = append(names, p.UserID)
		}
	}
	return strings.Join(names, " & ")
}

func scoreline(sets []ladder.SetScore) string {
	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		parts = append(parts, fmt.Sprintf("%d-%d", set.TeamA, set.TeamB))
	}
	return strings.Join(parts, ", ")
}

// formatResultSettled creates the Slack message for a settled result using Block Kit.
func (s *Notifier) formatResultSettled(match *ladder.MatchResult) slack.Message {
	blocks := make([]slack.Block, 0)

	var header string
	switch match.Status {
	case ladder.StatusRejected:
		header = "❌ Match result rejected"
	case ladder.StatusResolved:
		header = "⚖️ Match result resolved"
	default:
		header = "🎾 Match result confirmed! 🎾"
	}
	headerText := slack.NewTextBlockObject("plain_text", header, true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	winners, losers := match.TeamA, match.TeamB
	if match.WinnerTeam == ladder.TeamB {
		winners, losers = match.TeamB, match.TeamA
	}

	var body strings.Builder
	if match.Status == ladder.StatusRejected {
		body.WriteString(fmt.Sprintf("*%s* vs *%s*\n", sideNames(match.TeamA), sideNames(match.TeamB)))
		if match.RejectionReason != nil {
			body.WriteString(fmt.Sprintf("Reason: _%s_\n", *match.RejectionReason))
		}
	} else {
		body.WriteString(fmt.Sprintf("*%s* defeated *%s*\n", sideNames(winners), sideNames(losers)))
		body.WriteString(fmt.Sprintf("Score: `%s`\n", scoreline(match.Sets)))
		if match.MatchType == ladder.MatchTypeCompetitive && match.EloApplied {
			body.WriteString("Ratings have been updated.\n")
		}
	}
	bodyText := slack.NewTextBlockObject("mrkdwn", body.String(), false, false)
	blocks = append(blocks, slack.NewSectionBlock(bodyText, nil, nil))

	msg := slack.NewBlockMessage(blocks...)
	return msg
}

// formatDispute creates the Slack message for a newly disputed result.
func (s *Notifier) formatDispute(match *ladder.MatchResult) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🚩 Match result disputed", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var body strings.Builder
	body.WriteString(fmt.Sprintf("*%s* vs *%s* (`%s`)\n", sideNames(match.TeamA), sideNames(match.TeamB), scoreline(match.Sets)))
	if match.DisputeReason != nil {
		body.WriteString(fmt.Sprintf("Reason: _%s_\n", *match.DisputeReason))
	}
	if match.DisputeMessage != nil {
		body.WriteString(fmt.Sprintf("> %s\n", *match.DisputeMessage))
	}
	body.WriteString("An admin needs to resolve this result.")
	bodyText := slack.NewTextBlockObject("mrkdwn", body.String(), false, false)
	blocks = append(blocks, slack.NewSectionBlock(bodyText, nil, nil))

	msg := slack.NewBlockMessage(blocks...)
	return msg
}

// formatPendingReminder nudges the opponents of an unconfirmed result.
func (s *Notifier) formatPendingReminder(match *ladder.MatchResult) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⏰ Result awaiting confirmation", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	body := fmt.Sprintf(
		"*%s* vs *%s* (`%s`) was reported and is still waiting for an opponent to confirm.",
		sideNames(match.TeamA), sideNames(match.TeamB), scoreline(match.Sets),
	)
	bodyText := slack.NewTextBlockObject("mrkdwn", body, false, false)
	blocks = append(blocks, slack.NewSectionBlock(bodyText, nil, nil))

	msg := slack.NewBlockMessage(blocks...)
	return msg
}

// formatStandings renders a league table.
func (s *Notifier) formatStandings(snapshot *standings.Snapshot, leagueName string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s standings 🏆", leagueName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var body strings.Builder
	for _, row := range snapshot.Rows {
		medal := ""
		switch row.Position {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		movement := ""
		if row.PositionDelta != nil {
			switch {
			case *row.PositionDelta > 0:
				movement = fmt.Sprintf(" ⬆️%d", *row.PositionDelta)
			case *row.PositionDelta < 0:
				movement = fmt.Sprintf(" ⬇️%d", -*row.PositionDelta)
			}
		}
		body.WriteString(fmt.Sprintf(
			"%d. %s *%s* — %d pts (%dW/%dL, elo %d)%s\n",
			row.Position, medal, row.Name, row.Points, row.Wins, row.Losses, row.Elo, movement,
		))
	}
	bodyText := slack.NewTextBlockObject("mrkdwn", body.String(), false, false)
	blocks = append(blocks, slack.NewSectionBlock(bodyText, nil, nil))

	msg := slack.NewBlockMessage(blocks...)
	return msg
}

// formatRatingLeaderboard renders the club-wide rating list.
func (s *Notifier) formatRatingLeaderboard(players []ladder.RatingProfile) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📈 Rating leaderboard 📈", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var body strings.Builder
	for i, p := range players {
		body.WriteString(fmt.Sprintf("%d. *%s* — %d (cat %d, %dW/%dL)\n", i+1, p.Name, p.Elo, p.Category, p.Wins, p.Losses))
	}
	bodyText := slack.NewTextBlockObject("mrkdwn", body.String(), false, false)
	blocks = append(blocks, slack.NewSectionBlock(bodyText, nil, nil))

	msg := slack.NewBlockMessage(blocks...)
	return msg
}

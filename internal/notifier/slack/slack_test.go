package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func testMatch() *ladder.MatchResult {
	return &ladder.MatchResult{
		ID:         "m1",
		MatchType:  ladder.MatchTypeCompetitive,
		Status:     ladder.StatusConfirmed,
		ReportedBy: "p1",
		WinnerTeam: ladder.TeamA,
		Sets:       []ladder.SetScore{{TeamA: 6, TeamB: 4}, {TeamA: 6, TeamB: 3}},
		TeamA:      []ladder.Participant{{UserID: "p1", Name: "Alice"}},
		TeamB:      []ladder.Participant{{UserID: "p2", Name: "Bob"}},
		EloApplied: true,
		PlayedAt:   time.Now().Unix(),
	}
}

func TestSendMessage_DryRun(t *testing.T) {
	metr := metrics.NewMock()
	counters := metrics.NewMockStore()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metr, counters)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, counters.Counter(metrics.CounterNotificationsSent))
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metr := metrics.NewMock()
	counters := metrics.NewMockStore()
	notifier := NewNotifierWithAPI(api, "C123", metr, counters)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metr.SlackNotifSent())
	assert.Equal(t, 0, metr.SlackNotifFailed())
	assert.Equal(t, 1, counters.Counter(metrics.CounterNotificationsSent))
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metr := metrics.NewMock()
	counters := metrics.NewMockStore()
	notifier := NewNotifierWithAPI(api, "C123", metr, counters)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metr.SlackNotifSent())
	assert.Equal(t, 1, metr.SlackNotifFailed())
	assert.Equal(t, 0, counters.Counter(metrics.CounterNotificationsSent))
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendResultSettledNotification_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metr := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metr, metrics.NewMockStore())

	err := notifier.SendResultSettledNotification(testMatch(), false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled)
	assert.Equal(t, 1, metr.SlackNotifSent())
}

func TestFormatResultSettled(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), metrics.NewMockStore())

	t.Run("confirmed result names the winners", func(t *testing.T) {
		msg := notifier.formatResultSettled(testMatch())
		require.NotEmpty(t, msg.Blocks.BlockSet)
		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "Alice")
		assert.Contains(t, section.Text.Text, "6-4, 6-3")
	})

	t.Run("rejected result carries the reason", func(t *testing.T) {
		m := testMatch()
		m.Status = ladder.StatusRejected
		reason := "wrong score"
		m.RejectionReason = &reason

		msg := notifier.formatResultSettled(m)
		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "wrong score")
	})
}

func TestFormatStandings(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), metrics.NewMockStore())

	up := 1
	snap := &standings.Snapshot{
		LeagueID:   "l1",
		ComputedAt: time.Now().Unix(),
		Rows: []standings.Row{
			{UserID: "p2", Name: "Bob", Position: 1, Points: 7, Elo: 1212, Wins: 2, Losses: 1, PositionDelta: &up},
			{UserID: "p1", Name: "Alice", Position: 2, Points: 5, Elo: 1188, Wins: 1, Losses: 2},
		},
	}

	msg := notifier.formatStandings(snap, "Monday League")
	require.Len(t, msg.Blocks.BlockSet, 2)
	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "Bob")
	assert.Contains(t, section.Text.Text, "7 pts")
	assert.Contains(t, section.Text.Text, "⬆️1")
}

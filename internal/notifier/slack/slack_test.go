package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jvossman/gloat/internal/duel"
	"github.com/jvossman/gloat/internal/leaderboard"
	"github.com/jvossman/gloat/internal/metrics"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
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

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.NotifSentCount)
	assert.Equal(t, 0, metrics.NotifFailedCount)
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

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.NotifSentCount)
	assert.Equal(t, 1, metrics.NotifFailedCount)
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendDuelResult_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	d := &duel.Duel{
		ChallengerID:   "user-a",
		ChallengedID:   "user-b",
		ChallengerName: "Austin",
		ChallengedName: "Justin",
		ScoringType:    duel.ScoringWinLoss,
		Status:         duel.StatusCompleted,
		WinnerID:       "user-a",
	}

	err := notifier.SendDuelResult(d, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendDuelResult")
}

func TestFormatDuelResult(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("win/loss duel names the winner", func(t *testing.T) {
		completed := time.Date(2025, 7, 9, 20, 0, 0, 0, time.UTC)
		d := &duel.Duel{
			ChallengerID:   "user-a",
			ChallengedID:   "user-b",
			ChallengerName: "Austin",
			ChallengedName: "Justin",
			ScoringType:    duel.ScoringWinLoss,
			Status:         duel.StatusCompleted,
			WinnerID:       "user-b",
			CompletedAt:    &completed,
		}

		msg := client.formatDuelResult(d)
		require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok, "First block should be a HeaderBlock")
		assert.Equal(t, "⚔️ Duel settled! ⚔️", header.Text.Text)

		matchup, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok, "Second block should be a SectionBlock")
		assert.Equal(t, "Austin vs Justin", matchup.Text.Text)

		outcome, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok, "Third block should be a SectionBlock")
		assert.Equal(t, "🏆 Justin won!", outcome.Text.Text)

		contextBlock, ok := msg.Blocks.BlockSet[3].(*slackapi.ContextBlock)
		require.True(t, ok, "Fourth block should be a ContextBlock")
		require.Len(t, contextBlock.ContextElements.Elements, 1)
	})

	t.Run("score-based duel includes the score line", func(t *testing.T) {
		cs, ds := 21, 18
		d := &duel.Duel{
			ChallengerID:    "user-a",
			ChallengedID:    "user-b",
			ChallengerName:  "Austin",
			ChallengedName:  "Justin",
			ScoringType:     duel.ScoringScoreBased,
			Status:          duel.StatusCompleted,
			WinnerID:        "user-a",
			ChallengerScore: &cs,
			ChallengedScore: &ds,
		}

		msg := client.formatDuelResult(d)

		matchup, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Austin vs Justin\n21 - 18", matchup.Text.Text)
	})

	t.Run("tie has no winner line", func(t *testing.T) {
		cs, ds := 10, 10
		d := &duel.Duel{
			ChallengerID:    "user-a",
			ChallengedID:    "user-b",
			ChallengerName:  "Austin",
			ChallengedName:  "Justin",
			ScoringType:     duel.ScoringScoreBased,
			Status:          duel.StatusCompleted,
			ChallengerScore: &cs,
			ChallengedScore: &ds,
		}

		msg := client.formatDuelResult(d)

		outcome, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "It's a tie. Nobody gets to gloat.", outcome.Text.Text)
	})
}

func TestFormatLeaderboard(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("displays leaderboard with rows", func(t *testing.T) {
		rows := []leaderboard.Row{
			{Rank: 1, DisplayName: "Austin", Wins: 8, WinRate: 0.8, Top25Rate: 0.5},
			{Rank: 2, DisplayName: "Justin", Wins: 6, WinRate: 0.6, Top25Rate: 0.4},
			{Rank: 3, DisplayName: "Ivan", Wins: 4, WinRate: 0.4, Top25Rate: 0.2},
		}

		msg := client.formatLeaderboard("Spring 2024", rows)
		require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks (header + 3 rows)")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Spring 2024 Leaderboard 🏆", header.Text.Text)

		row1, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, row1.Text.Text, "1. 🥇 Austin")
		assert.Contains(t, row1.Text.Text, "> Wins: 8 | Win %: 80.0%")

		row2, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, row2.Text.Text, "2. 🥈 Justin")

		row3, ok := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, row3.Text.Text, "3. 🥉 Ivan")
	})

	t.Run("displays message when the board is empty", func(t *testing.T) {
		msg := client.formatLeaderboard("Spring 2024", []leaderboard.Row{})
		require.Len(t, msg.Blocks.BlockSet, 2, "Expected 2 blocks (header + message)")

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No entries yet. Go log some wins!", message.Text.Text)
	})
}

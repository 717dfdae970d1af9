package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jvossman/gloat/internal/duel"
	"github.com/jvossman/gloat/internal/leaderboard"
	"github.com/jvossman/gloat/internal/metrics"
	"github.com/jvossman/gloat/internal/notifier"
	"github.com/slack-go/slack"
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
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
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
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendDuelResult posts the outcome of a settled duel to the group channel.
func (s *Notifier) SendDuelResult(d *duel.Duel, dryRun bool) error {
	msg := s.formatDuelResult(d)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendLeaderboard posts a snapshot of the current board to the group channel.
func (s *Notifier) SendLeaderboard(challengeName string, rows []leaderboard.Row, dryRun bool) error {
	msg := s.formatLeaderboard(challengeName, rows)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// formatDuelResult creates the Slack message for a completed duel using Block Kit.
func (s *Notifier) formatDuelResult(d *duel.Duel) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "⚔️ Duel settled! ⚔️", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Matchup
	matchupText := fmt.Sprintf("%s vs %s", displayName(d.ChallengerName), displayName(d.ChallengedName))
	if d.ScoringType == duel.ScoringScoreBased && d.ChallengerScore != nil && d.ChallengedScore != nil {
		matchupText = fmt.Sprintf("%s\n%d - %d", matchupText, *d.ChallengerScore, *d.ChallengedScore)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", matchupText, true, false), nil, nil))

	// Outcome
	var outcomeText string
	switch d.WinnerID {
	case "":
		outcomeText = "It's a tie. Nobody gets to gloat."
	case d.ChallengerID:
		outcomeText = fmt.Sprintf("🏆 %s won!", displayName(d.ChallengerName))
	default:
		outcomeText = fmt.Sprintf("🏆 %s won!", displayName(d.ChallengedName))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", outcomeText, true, false), nil, nil))

	// Context
	if d.CompletedAt != nil {
		completedText := fmt.Sprintf("Completed: %s", d.CompletedAt.Format("Jan 2, 2006 at 3:04 PM"))
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", completedText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the current standings.
func (s *Notifier) formatLeaderboard(challengeName string, rows []leaderboard.Row) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s Leaderboard 🏆", challengeName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No entries yet. Go log some wins!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, row := range rows {
		var medal string
		switch row.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		rowText := fmt.Sprintf("%d. %s %s\n> Wins: %d | Win %%: %.1f%% | Top 25%%: %.1f%%",
			row.Rank,
			medal,
			row.DisplayName,
			row.Wins,
			row.WinRate*100,
			row.Top25Rate*100,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", rowText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

func displayName(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

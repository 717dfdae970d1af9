package notifier

import (
	"github.com/jvossman/gloat/internal/duel"
	"github.com/jvossman/gloat/internal/leaderboard"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For settled duels
	SendDuelResult(d *duel.Duel, dryRun bool) error
	// For posting a board snapshot to the group channel
	SendLeaderboard(challengeName string, rows []leaderboard.Row, dryRun bool) error
}

package duel

import (
	"fmt"
	"time"
)

// Apply advances the duel through one transition of its state machine.
// Actor identity and current status jointly gate every transition; the
// scoring type only branches inside complete. On any rejection the duel is
// left untouched.
func Apply(d *Duel, action Action, actorID string, input CompleteInput, now time.Time) error {
	isChallenger := actorID == d.ChallengerID
	isChallenged := actorID == d.ChallengedID
	if !isChallenger && !isChallenged {
		return fmt.Errorf("%w: user %s is not part of this duel", ErrWrongActor, actorID)
	}

	switch action {
	case ActionAccept:
		if !isChallenged {
			return fmt.Errorf("%w: only the challenged user can accept", ErrWrongActor)
		}
		if d.Status != StatusPending {
			return fmt.Errorf("%w: duel is not pending", ErrWrongState)
		}
		d.Status = StatusAccepted

	case ActionDecline:
		if !isChallenged {
			return fmt.Errorf("%w: only the challenged user can decline", ErrWrongActor)
		}
		if d.Status != StatusPending {
			return fmt.Errorf("%w: duel is not pending", ErrWrongState)
		}
		d.Status = StatusDeclined

	case ActionCancel:
		if !isChallenger {
			return fmt.Errorf("%w: only the challenger can cancel", ErrWrongActor)
		}
		if d.Status != StatusPending {
			return fmt.Errorf("%w: duel is not pending", ErrWrongState)
		}
		d.Status = StatusCancelled

	case ActionComplete:
		if d.Status != StatusAccepted {
			return fmt.Errorf("%w: duel must be accepted first", ErrWrongState)
		}
		switch d.ScoringType {
		case ScoringScoreBased:
			if input.ChallengerScore == nil || input.ChallengedScore == nil {
				return fmt.Errorf("%w: both scores are required for score_based duels", ErrInvalidInput)
			}
			d.ChallengerScore = input.ChallengerScore
			d.ChallengedScore = input.ChallengedScore
			switch {
			case *input.ChallengerScore > *input.ChallengedScore:
				d.WinnerID = d.ChallengerID
			case *input.ChallengedScore > *input.ChallengerScore:
				d.WinnerID = d.ChallengedID
			}
			// Equal scores leave the winner unset.
		default:
			if input.WinnerID == "" {
				return fmt.Errorf("%w: winner_id is required for win_loss duels", ErrInvalidInput)
			}
			if input.WinnerID != d.ChallengerID && input.WinnerID != d.ChallengedID {
				return fmt.Errorf("%w: winner_id must be the challenger or the challenged", ErrInvalidInput)
			}
			d.WinnerID = input.WinnerID
		}
		d.Status = StatusCompleted
		t := now
		d.CompletedAt = &t

	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	return nil
}

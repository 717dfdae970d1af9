package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventEntryLogged     EventType = "entry-logged"
	EventChallengeJoined EventType = "challenge-joined"
	EventDuelCompleted   EventType = "duel-completed"
)

// ChallengeEvent is the payload for EventEntryLogged and
// EventChallengeJoined; both carry the scope whose leaderboard changed.
type ChallengeEvent struct {
	ChallengeID   string `msgpack:"challenge_id"`
	ChallengeSlug string `msgpack:"challenge_slug"`
	UserID        string `msgpack:"user_id"`
}

// DuelCompleted is the payload for EventDuelCompleted.
type DuelCompleted struct {
	DuelID string `msgpack:"duel_id"`
}

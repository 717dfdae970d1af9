package duel

// DuelStore defines the interface for interacting with duel records.
type DuelStore interface {
	Create(challengeID, challengerID, challengedID string, scoring ScoringType, notes string) (*Duel, error)
	Get(duelID string) (*Duel, error)
	ListForUser(userID string, limit int) ([]*Duel, error)
	// Transition persists a state-machine result. The update is conditional
	// on the status the duel had when it was read, so two racing transitions
	// cannot both win.
	Transition(d *Duel, prev Status) error
}

package ranking

import "time"

// Entry is one logged result by a user within a challenge.
// Entries are immutable once created; lower percentile means better placement.
type Entry struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challenge_id"`
	UserID      string    `json:"user_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	IsWin       bool      `json:"is_win"`
	Percentile  int       `json:"percentile"`
	ProofPath   string    `json:"proof_path,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Stat is the derived per-user statistic for one challenge scope.
type Stat struct {
	UserID    string  `json:"user_id"`
	Total     int     `json:"total"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"`
	Top25Rate float64 `json:"top25_rate"`
	Top50Rate float64 `json:"top50_rate"`
	Rank      int     `json:"rank"`
}

// Bucket is a closed-open calendar month window [Start, End).
type Bucket struct {
	Start time.Time
	End   time.Time
	Label string
}

// Point is one step of a user's month-by-month rank trend.
// Position is 0 when the user logged no entries in that month.
type Point struct {
	Month    string `json:"month"`
	Position int    `json:"position"`
}

package duel

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new DuelStore.
func New(db *sql.DB) DuelStore {
	return &store{
		db: db,
	}
}

// Create inserts a new pending duel issued by the challenger.
func (s *store) Create(challengeID, challengerID, challengedID string, scoring ScoringType, notes string) (*Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if challengedID == "" {
		return nil, fmt.Errorf("%w: challenged_id is required", ErrInvalidInput)
	}
	if challengedID == challengerID {
		return nil, fmt.Errorf("%w: cannot duel yourself", ErrInvalidInput)
	}
	if scoring == "" {
		scoring = ScoringWinLoss
	}
	if !scoring.Valid() {
		return nil, fmt.Errorf("%w: invalid scoring type %q", ErrInvalidInput, scoring)
	}

	d := &Duel{
		ID:           uuid.New().String(),
		ChallengeID:  challengeID,
		ChallengerID: challengerID,
		ChallengedID: challengedID,
		ScoringType:  scoring,
		Status:       StatusPending,
		Notes:        notes,
		CreatedAt:    time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO duels (id, challenge_id, challenger_id, challenged_id, scoring_type, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, nullString(d.ChallengeID), d.ChallengerID, d.ChallengedID, string(d.ScoringType), string(d.Status), nullString(d.Notes), d.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create duel: %w", err)
	}

	log.Info("Created duel", "duelID", d.ID, "challengerID", challengerID, "challengedID", challengedID, "scoring", scoring)
	return d, nil
}

// Get retrieves a single duel by id, with display names joined in.
func (s *store) Get(duelID string) (*Duel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT d.id, d.challenge_id, d.challenger_id, d.challenged_id, d.scoring_type, d.status,
		       d.winner_id, d.challenger_score, d.challenged_score, d.notes, d.created_at, d.completed_at,
		       pc.display_name, pd.display_name
		FROM duels d
		LEFT JOIN profiles pc ON pc.id = d.challenger_id
		LEFT JOIN profiles pd ON pd.id = d.challenged_id
		WHERE d.id = ?
	`, duelID)

	d, err := scanDuel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	return d, nil
}

// ListForUser retrieves the most recent duels the user participates in, on
// either side, newest first.
func (s *store) ListForUser(userID string, limit int) ([]*Duel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT d.id, d.challenge_id, d.challenger_id, d.challenged_id, d.scoring_type, d.status,
		       d.winner_id, d.challenger_score, d.challenged_score, d.notes, d.created_at, d.completed_at,
		       pc.display_name, pd.display_name
		FROM duels d
		LEFT JOIN profiles pc ON pc.id = d.challenger_id
		LEFT JOIN profiles pd ON pd.id = d.challenged_id
		WHERE d.challenger_id = ? OR d.challenged_id = ?
		ORDER BY d.created_at DESC
		LIMIT ?
	`, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list duels: %w", err)
	}
	defer rows.Close()

	var duels []*Duel
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			log.Error("Failed to scan duel row", "error", err)
			continue
		}
		duels = append(duels, d)
	}
	return duels, rows.Err()
}

// Transition writes the outcome of Apply back to the store. The WHERE clause
// matches the status the caller read, so a concurrent transition that already
// moved the duel makes this a no-op reported as ErrWrongState.
func (s *store) Transition(d *Duel, prev Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completedAt any
	if d.CompletedAt != nil {
		completedAt = d.CompletedAt.Unix()
	}

	res, err := s.db.Exec(`
		UPDATE duels
		SET status = ?, winner_id = ?, challenger_score = ?, challenged_score = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`, string(d.Status), nullString(d.WinnerID), nullInt(d.ChallengerScore), nullInt(d.ChallengedScore), completedAt, d.ID, string(prev))
	if err != nil {
		return fmt.Errorf("failed to update duel: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: duel was modified concurrently", ErrWrongState)
	}

	log.Info("Duel transitioned", "duelID", d.ID, "from", prev, "to", d.Status)
	return nil
}

func scanDuel(scanner interface{ Scan(...any) error }) (*Duel, error) {
	var d Duel
	var challengeID, winnerID, notes, challengerName, challengedName sql.NullString
	var challengerScore, challengedScore, completedAt sql.NullInt64
	var createdAt int64

	err := scanner.Scan(
		&d.ID, &challengeID, &d.ChallengerID, &d.ChallengedID, &d.ScoringType, &d.Status,
		&winnerID, &challengerScore, &challengedScore, &notes, &createdAt, &completedAt,
		&challengerName, &challengedName,
	)
	if err != nil {
		return nil, err
	}

	d.ChallengeID = challengeID.String
	d.WinnerID = winnerID.String
	d.Notes = notes.String
	d.ChallengerName = challengerName.String
	d.ChallengedName = challengedName.String
	d.CreatedAt = time.Unix(createdAt, 0)
	if challengerScore.Valid {
		v := int(challengerScore.Int64)
		d.ChallengerScore = &v
	}
	if challengedScore.Valid {
		v := int(challengedScore.Int64)
		d.ChallengedScore = &v
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		d.CompletedAt = &t
	}
	return &d, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

package challenge

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jvossman/gloat/internal/ranking"
)

// New creates a new ChallengeStore.
func New(db *sql.DB) ChallengeStore {
	return &store{
		db: db,
	}
}

func (s *store) GetBySlug(slug string) (*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, slug, name, status, starts_at, ends_at
		FROM challenges
		WHERE slug = ?
	`, slug)

	c, err := scanChallenge(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

func (s *store) ListActive() ([]Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, slug, name, status, starts_at, ends_at
		FROM challenges
		WHERE status = 'active'
		ORDER BY starts_at IS NOT NULL, starts_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	return collectChallenges(rows)
}

func (s *store) ListByIDs(ids []string) ([]Challenge, error) {
	if len(ids) == 0 {
		return []Challenge{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	query := fmt.Sprintf(`
		SELECT id, slug, name, status, starts_at, ends_at
		FROM challenges
		WHERE id IN (%s)
	`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges by id: %w", err)
	}
	defer rows.Close()

	return collectChallenges(rows)
}

// Join is idempotent: a duplicate membership is silently ignored.
func (s *store) Join(challengeID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO challenge_participants (challenge_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`, challengeID, userID, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to join challenge: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read join result: %w", err)
	}
	if affected > 0 {
		log.Info("User joined challenge", "challengeID", challengeID, "userID", userID)
	}
	return affected > 0, nil
}

func (s *store) IsParticipant(challengeID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM challenge_participants WHERE challenge_id = ? AND user_id = ?)
	`, challengeID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (s *store) ParticipantChallengeIDs(userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT challenge_id FROM challenge_participants WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertEntry records one immutable result row.
func (s *store) InsertEntry(e *ranking.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO entries (id, challenge_id, user_id, occurred_at, is_win, percentile, proof_path, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ChallengeID, e.UserID, e.OccurredAt.Unix(), e.IsWin, e.Percentile, emptyToNull(e.ProofPath), emptyToNull(e.Notes))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	log.Info("Logged entry", "entryID", e.ID, "challengeID", e.ChallengeID, "userID", e.UserID, "isWin", e.IsWin, "percentile", e.Percentile)
	return nil
}

func (s *store) GetEntries(challengeID string, from, to time.Time) ([]ranking.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, challenge_id, user_id, occurred_at, is_win, percentile, proof_path, notes
		FROM entries
	`
	var conds []string
	var args []any
	if challengeID != "" {
		conds = append(conds, "challenge_id = ?")
		args = append(args, challengeID)
	}
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at < ?")
		args = append(args, to.Unix())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ranking.Entry
	for rows.Next() {
		var e ranking.Entry
		var occurredAt int64
		var isWin int
		var proofPath, notes sql.NullString
		if err := rows.Scan(&e.ID, &e.ChallengeID, &e.UserID, &occurredAt, &isWin, &e.Percentile, &proofPath, &notes); err != nil {
			log.Error("Failed to scan entry row", "error", err)
			continue
		}
		e.OccurredAt = time.Unix(occurredAt, 0)
		e.IsWin = isWin != 0
		e.ProofPath = proofPath.String
		e.Notes = notes.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanChallenge(scanner interface{ Scan(...any) error }) (*Challenge, error) {
	var c Challenge
	var startsAt, endsAt sql.NullInt64
	if err := scanner.Scan(&c.ID, &c.Slug, &c.Name, &c.Status, &startsAt, &endsAt); err != nil {
		return nil, err
	}
	if startsAt.Valid {
		t := time.Unix(startsAt.Int64, 0)
		c.StartsAt = &t
	}
	if endsAt.Valid {
		t := time.Unix(endsAt.Int64, 0)
		c.EndsAt = &t
	}
	return &c, nil
}

func collectChallenges(rows *sql.Rows) ([]Challenge, error) {
	var challenges []Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			log.Error("Failed to scan challenge row", "error", err)
			continue
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

func emptyToNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

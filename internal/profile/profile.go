package profile

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Profile is the display read model for a user.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarPath  string `json:"avatar_path,omitempty"`
}

// ErrNotFound means the referenced profile does not exist.
var ErrNotFound = errors.New("profile not found")

// ProfileStore defines the interface for reading display profiles.
type ProfileStore interface {
	Get(userID string) (*Profile, error)
	GetMany(userIDs []string) (map[string]Profile, error)
	Upsert(p Profile) error
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new ProfileStore.
func New(db *sql.DB) ProfileStore {
	return &store{db: db}
}

func (s *store) Get(userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Profile
	var displayName, avatarPath sql.NullString
	err := s.db.QueryRow(`SELECT id, display_name, avatar_path FROM profiles WHERE id = ?`, userID).
		Scan(&p.ID, &displayName, &avatarPath)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.DisplayName = displayName.String
	p.AvatarPath = avatarPath.String
	return &p, nil
}

func (s *store) GetMany(userIDs []string) (map[string]Profile, error) {
	profiles := make(map[string]Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.Repeat("?,", len(userIDs)-1) + "?"
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.Query(fmt.Sprintf(`SELECT id, display_name, avatar_path FROM profiles WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Profile
		var displayName, avatarPath sql.NullString
		if err := rows.Scan(&p.ID, &displayName, &avatarPath); err != nil {
			log.Error("Failed to scan profile row", "error", err)
			continue
		}
		p.DisplayName = displayName.String
		p.AvatarPath = avatarPath.String
		profiles[p.ID] = p
	}
	return profiles, rows.Err()
}

func (s *store) Upsert(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO profiles (id, display_name, avatar_path)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar_path = excluded.avatar_path
	`, p.ID, p.DisplayName, emptyToNull(p.AvatarPath))
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func emptyToNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

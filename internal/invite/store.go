package invite

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InviteStore defines the interface for issuing and consuming invites.
type InviteStore interface {
	Create(displayName string, ttl time.Duration) (*Invite, error)
	Get(token string) (*Invite, error)
	// Claim records the claimant's email and moves the invite to claimed.
	Claim(token, email string, now time.Time) (*Invite, error)
	// Complete consumes the invite once the invited user's account exists.
	Complete(token string, now time.Time) error
}

// New creates a new InviteStore.
func New(db *sql.DB) InviteStore {
	return &store{db: db}
}

// Create issues a fresh invite with a URL-safe random token
// (32 bytes, 256 bits of entropy).
func (s *store) Create(displayName string, ttl time.Duration) (*Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	inv := &Invite{
		ID:          uuid.New().String(),
		Token:       base64.RawURLEncoding.EncodeToString(buf),
		DisplayName: displayName,
		Status:      StatusPending,
		ExpiresAt:   time.Now().Add(ttl),
		CreatedAt:   time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO invites (id, token, display_name, status, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Token, inv.DisplayName, string(inv.Status), inv.ExpiresAt.Unix(), inv.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	log.Info("Created invite", "inviteID", inv.ID, "displayName", displayName)
	return inv, nil
}

func (s *store) Get(token string) (*Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(token)
}

func (s *store) getLocked(token string) (*Invite, error) {
	row := s.db.QueryRow(`
		SELECT id, token, display_name, email, status, expires_at, claimed_at, created_at
		FROM invites
		WHERE token = ?
	`, token)

	var inv Invite
	var email sql.NullString
	var claimedAt sql.NullInt64
	var expiresAt, createdAt int64
	err := row.Scan(&inv.ID, &inv.Token, &inv.DisplayName, &email, &inv.Status, &expiresAt, &claimedAt, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	inv.Email = email.String
	inv.ExpiresAt = time.Unix(expiresAt, 0)
	inv.CreatedAt = time.Unix(createdAt, 0)
	if claimedAt.Valid {
		t := time.Unix(claimedAt.Int64, 0)
		inv.ClaimedAt = &t
	}
	return &inv, nil
}

func (s *store) Claim(token, email string, now time.Time) (*Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}

	inv, err := s.getLocked(token)
	if err != nil {
		return nil, err
	}
	if err := inv.Usable(now); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		UPDATE invites SET email = ?, status = ?, claimed_at = ? WHERE id = ?
	`, email, string(StatusClaimed), now.Unix(), inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim invite: %w", err)
	}

	inv.Email = email
	inv.Status = StatusClaimed
	t := now
	inv.ClaimedAt = &t
	log.Info("Invite claimed", "inviteID", inv.ID, "email", email)
	return inv, nil
}

func (s *store) Complete(token string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.getLocked(token)
	if err != nil {
		return err
	}
	if inv.Status == StatusCompleted {
		return ErrUsed
	}

	if _, err := s.db.Exec(`UPDATE invites SET status = ? WHERE id = ?`, string(StatusCompleted), inv.ID); err != nil {
		return fmt.Errorf("failed to complete invite: %w", err)
	}

	log.Info("Invite completed", "inviteID", inv.ID)
	return nil
}

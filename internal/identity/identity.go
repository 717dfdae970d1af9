// Package identity resolves the authenticated principal for a request. The
// rest of the application treats the resolved user id as opaque.
package identity

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnauthenticated means no valid principal could be resolved.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier resolves a bearer token to a user id.
type Verifier interface {
	Verify(token string) (string, error)
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a Verifier backed by the sessions table.
func New(db *sql.DB) Verifier {
	return &store{db: db}
}

func (s *store) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var userID string
	var expiresAt int64
	err := s.db.QueryRow(`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token).Scan(&userID, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if time.Now().Unix() >= expiresAt {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// MockVerifier is a mock implementation of Verifier for testing.
type MockVerifier struct {
	VerifyFunc func(token string) (string, error)
}

// NewMock creates a new mock instance.
func NewMock() *MockVerifier {
	return &MockVerifier{}
}

func (m *MockVerifier) Verify(token string) (string, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	return "", ErrUnauthenticated
}

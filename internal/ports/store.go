package ports

import (
	"context"
	"errors"
	"time"

	"durak/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session id already in use")
)

// SessionStore is the only path to session state. Implementations serialize
// Update calls per session id; different ids never block each other.
type SessionStore interface {
	// Create registers a new session. Returns ErrSessionExists when the id is taken.
	Create(ctx context.Context, s *domain.Session) error

	// Get returns a copy of the session. Mutating the copy has no effect on the store.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update runs fn on a copy of the session while holding the session's lock.
	// The copy replaces the stored session only if fn returns nil, so a failed
	// transition leaves no trace. Returns a copy of the committed session.
	Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error)

	// Delete removes the session. Later calls for the id return ErrSessionNotFound.
	Delete(ctx context.Context, id string) error

	// Reap deletes every session whose last update is before cutoff and returns their ids.
	Reap(ctx context.Context, cutoff time.Time) ([]string, error)
}

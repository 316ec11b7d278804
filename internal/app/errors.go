package app

import (
	"errors"
	"fmt"

	"durak/internal/domain"
	"durak/internal/ports"
)

// Error kinds surfaced to transports. Every error returned by Service wraps exactly one of them.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidMove   = errors.New("invalid move")
	ErrConflict      = errors.New("conflict")
	ErrInternal      = errors.New("internal error")
	ErrInvalidConfig = errors.New("invalid session config")
	ErrFull          = errors.New("session full")
)

var (
	ErrAlreadyStarted = fmt.Errorf("%w: session already started", ErrConflict)
	ErrNotStarted     = fmt.Errorf("%w: session not started", ErrConflict)
	ErrGameFinished   = fmt.Errorf("%w: game finished", ErrConflict)
	ErrTooFewPlayers  = fmt.Errorf("%w: not enough players to start", ErrConflict)
	ErrNotOwner       = fmt.Errorf("%w: actor is not session owner", ErrForbidden)
	ErrNotSeated      = fmt.Errorf("%w: requester is not seated in this session", ErrForbidden)
)

// Kind names the error class for logs and transport payloads.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, ErrFull):
		return "full"
	default:
		return "internal"
	}
}

// classifyMoveError wraps a rules engine rejection in its app kind.
func classifyMoveError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvariant):
		return fmt.Errorf("%w: %w", ErrInternal, err)
	case errors.Is(err, domain.ErrNotPlaying):
		return fmt.Errorf("%w: %w", ErrGameFinished, err)
	case errors.Is(err, domain.ErrUnknownSeat):
		return fmt.Errorf("%w: %w", ErrNotSeated, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
}

func storeError(err error) error {
	if errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

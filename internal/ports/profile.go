package ports

import "context"

// ProfilePort resolves the public name of a human seat.
type ProfilePort interface {
	// DisplayName returns the name shown to other seats for userID.
	// An empty name with a nil error means the account has none set.
	DisplayName(ctx context.Context, userID string) (string, error)
}

package nakama

import (
	"context"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/api"

	"durak/internal/ports"
)

type userGetter interface {
	UsersGetId(ctx context.Context, userIDs []string, facebookIDs []string) ([]*api.User, error)
}

// ProfileAdapter implements ports.ProfilePort using Nakama's user API.
type ProfileAdapter struct {
	nk userGetter
}

// NewProfileAdapter creates a new profile adapter. nk is usually the runtime.NakamaModule.
func NewProfileAdapter(nk userGetter) *ProfileAdapter {
	return &ProfileAdapter{nk: nk}
}

// DisplayName returns the account display name, falling back to the username.
// Ids that are not Nakama user ids resolve to "".
func (a *ProfileAdapter) DisplayName(ctx context.Context, userID string) (string, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return "", nil
	}
	users, err := a.nk.UsersGetId(ctx, []string{userID}, nil)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	if name := users[0].GetDisplayName(); name != "" {
		return name, nil
	}
	return users[0].GetUsername(), nil
}

var _ ports.ProfilePort = (*ProfileAdapter)(nil)

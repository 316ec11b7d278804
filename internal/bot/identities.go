package bot

import (
	"encoding/json"
	"fmt"
	"os"
)

// Identity is the public profile given to a backfilled bot seat.
type Identity struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Level       BotLevel `json:"level,omitempty"`
}

// Roster hands out bot identities in order, wrapping around the pool.
type Roster struct {
	identities []Identity
}

// NewRoster builds a roster from identities. An empty roster generates names.
func NewRoster(identities []Identity) *Roster {
	return &Roster{identities: append([]Identity(nil), identities...)}
}

// LoadRoster loads bot profiles from the given path.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}

	var identities []Identity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	for i, identity := range identities {
		if identity.ID == "" {
			return nil, fmt.Errorf("bot identity %d has no id", i)
		}
	}
	return NewRoster(identities), nil
}

// Identity returns the identity for a bot by index (mod pool size). Indexes start at 1.
func (r *Roster) Identity(index int) Identity {
	if r == nil || len(r.identities) == 0 {
		return Identity{
			ID:          fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	n := len(r.identities)
	identity := r.identities[((index-1)%n+n)%n]
	if identity.DisplayName == "" {
		identity.DisplayName = identity.ID
	}
	return identity
}

// Len returns the size of the configured pool.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.identities)
}

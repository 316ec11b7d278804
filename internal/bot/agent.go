package bot

import (
	"fmt"

	"durak/internal/domain"
)

// Agent represents an autonomous bot player seated in a game.
type Agent struct {
	ID    string
	Name  string
	Brain Brain
}

// Play asks the agent to choose its move in the current game state.
func (a *Agent) Play(game *domain.Game) (domain.Move, error) {
	if _, ok := game.Seat(a.ID); !ok {
		return domain.Move{}, fmt.Errorf("%w: %s", domain.ErrUnknownSeat, a.ID)
	}
	move, err := a.Brain.Decide(game, a.ID)
	if err != nil {
		return domain.Move{}, fmt.Errorf("bot %s: %w", a.ID, err)
	}
	return move, nil
}

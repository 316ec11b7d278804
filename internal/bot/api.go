package bot

import (
	"durak/internal/domain"
)

// Brain is the interface that all bot strategies must implement.
// Decide is only called while seat is the game's current actor and must
// return a move the rules engine accepts.
type Brain interface {
	Decide(game *domain.Game, seat string) (domain.Move, error)
}

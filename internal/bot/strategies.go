package bot

import (
	"durak/internal/domain"
)

// RandomBot picks uniformly among the legal moves. Used for the easy level.
type RandomBot struct {
	RNG domain.RNG
}

func (b *RandomBot) Decide(game *domain.Game, seat string) (domain.Move, error) {
	moves := game.LegalMoves(seat)
	if len(moves) == 0 {
		if game.Status != domain.StatusPlaying {
			return domain.Move{}, domain.ErrNotPlaying
		}
		return domain.Move{}, domain.ErrNotYourTurn
	}
	return moves[b.RNG.Intn(len(moves))], nil
}

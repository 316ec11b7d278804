package bot

import (
	"durak/internal/domain"
)

// Heuristic plays the cheapest legal card and never searches ahead.
type Heuristic struct {
	Tuning Tuning
}

// NewHeuristic returns a heuristic brain with DefaultTuning.
func NewHeuristic() *Heuristic {
	return &Heuristic{Tuning: DefaultTuning}
}

// Decide determines the move for seat given the current game state.
func (h *Heuristic) Decide(game *domain.Game, seat string) (domain.Move, error) {
	if game.Status != domain.StatusPlaying {
		return domain.Move{}, domain.ErrNotPlaying
	}
	if game.CurrentActor != seat {
		return domain.Move{}, domain.ErrNotYourTurn
	}
	hand := game.Hands[seat]

	if game.Phase == domain.PhaseDefending {
		return h.defend(game, hand), nil
	}

	// New round: lead the cheapest card.
	if len(game.Table) == 0 {
		best := -1
		for i, c := range hand {
			if best < 0 || h.score(c, game.TrumpSuit) < h.score(hand[best], game.TrumpSuit) {
				best = i
			}
		}
		if best < 0 {
			return domain.Move{}, domain.ErrCardNotHeld
		}
		return cardMove(domain.ActionAttack, hand[best]), nil
	}

	// Every pair is beaten: throw in the first matching rank, otherwise bito.
	limit := domain.PairLimit(len(game.Hands[game.Defender]))
	for _, c := range hand {
		if domain.CanExtend(c, game.Table, limit) {
			return cardMove(domain.ActionExtend, c), nil
		}
	}
	return domain.Move{Action: domain.ActionPass}, nil
}

func (h *Heuristic) defend(game *domain.Game, hand []domain.Card) domain.Move {
	pair, ok := game.Table.OpenPair()
	if !ok {
		return domain.Move{Action: domain.ActionTake}
	}

	// Same suit first, then the cheapest trump.
	sameSuit, trump := -1, -1
	for i, c := range hand {
		if !domain.CanDefend(c, *pair, game.TrumpSuit) {
			continue
		}
		if c.Suit == pair.Attack.Suit {
			if sameSuit < 0 || c.Value < hand[sameSuit].Value {
				sameSuit = i
			}
			continue
		}
		if trump < 0 || h.score(c, game.TrumpSuit) < h.score(hand[trump], game.TrumpSuit) {
			trump = i
		}
	}

	switch {
	case sameSuit >= 0:
		return cardMove(domain.ActionDefend, hand[sameSuit])
	case trump >= 0:
		return cardMove(domain.ActionDefend, hand[trump])
	default:
		return domain.Move{Action: domain.ActionTake}
	}
}

func (h *Heuristic) score(c domain.Card, trump domain.Suit) int {
	if c.Suit == trump {
		return c.Value + h.Tuning.TrumpPenalty
	}
	return c.Value
}

func cardMove(action domain.Action, c domain.Card) domain.Move {
	return domain.Move{Action: action, Card: &c}
}

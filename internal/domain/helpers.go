package domain

import "fmt"

// CountSeatsWithCards returns how many seats still hold at least one card.
func CountSeatsWithCards(g *Game) int {
	n := 0
	for _, s := range g.Seats {
		if len(g.Hands[s.ID]) > 0 {
			n++
		}
	}
	return n
}

// HolderOf returns the seat whose hand contains card.
func HolderOf(g *Game, card Card) (string, bool) {
	for _, s := range g.Seats {
		if indexOf(g.Hands[s.ID], card) >= 0 {
			return s.ID, true
		}
	}
	return "", false
}

// RemoveCard removes the first copy of card from hand.
func RemoveCard(hand []Card, card Card) ([]Card, bool) {
	idx := indexOf(hand, card)
	if idx < 0 {
		return hand, false
	}
	return removeAt(hand, idx), true
}

// CardCount sums deck, hands, table and discarded cards.
func (g *Game) CardCount() int {
	n := g.Deck.Len() + g.Table.CardCount() + g.Discarded
	for _, h := range g.Hands {
		n += len(h)
	}
	return n
}

// Validate checks structural invariants and returns ErrInvariant on the first violation.
func (g *Game) Validate() error {
	if got := g.CardCount(); got != PackSize {
		return fmt.Errorf("%w: card count %d, want %d", ErrInvariant, got, PackSize)
	}
	if g.Table.OpenCount() > 1 {
		return fmt.Errorf("%w: %d open pairs", ErrInvariant, g.Table.OpenCount())
	}

	seen := make(map[Card]bool, PackSize)
	check := func(c Card) error {
		if seen[c] {
			return fmt.Errorf("%w: duplicate card %s", ErrInvariant, c)
		}
		seen[c] = true
		return nil
	}
	for _, c := range g.Deck.cards {
		if err := check(c); err != nil {
			return err
		}
	}
	for _, h := range g.Hands {
		for _, c := range h {
			if err := check(c); err != nil {
				return err
			}
		}
	}
	for _, c := range g.Table.Cards() {
		if err := check(c); err != nil {
			return err
		}
	}

	for _, p := range g.Table {
		if p.Defend != nil && !beats(*p.Defend, p.Attack, g.TrumpSuit) {
			return fmt.Errorf("%w: %s does not beat %s", ErrInvariant, p.Defend, p.Attack)
		}
	}

	if g.Status != StatusPlaying {
		return nil
	}
	if g.Attacker == g.Defender {
		return fmt.Errorf("%w: attacker and defender are both %s", ErrInvariant, g.Attacker)
	}
	want := g.Attacker
	if g.Phase == PhaseDefending {
		want = g.Defender
	}
	if g.CurrentActor != want {
		return fmt.Errorf("%w: current actor %s in phase %s", ErrInvariant, g.CurrentActor, g.Phase)
	}
	return nil
}

func beats(defend, attack Card, trump Suit) bool {
	return CanDefend(defend, TablePair{Attack: attack}, trump)
}

func indexOf(hand []Card, card Card) int {
	for i, c := range hand {
		if c.Same(card) {
			return i
		}
	}
	return -1
}

func removeAt(hand []Card, idx int) []Card {
	out := make([]Card, 0, len(hand)-1)
	out = append(out, hand[:idx]...)
	return append(out, hand[idx+1:]...)
}

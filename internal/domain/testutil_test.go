package domain

import (
	"math/rand"
	"testing"
)

func mustCard(t *testing.T, s string) Card {
	t.Helper()
	runes := []rune(s)
	c, err := ParseCard(string(runes[:len(runes)-1]), string(runes[len(runes)-1]))
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", s, err)
	}
	return c
}

func cards(t *testing.T, ss ...string) []Card {
	t.Helper()
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		out = append(out, mustCard(t, s))
	}
	return out
}

// stackedDeck builds a full 36-card deck whose deal produces hands (in seat
// order), followed by the draws in order, with trump at the bottom.
func stackedDeck(t *testing.T, trump Card, hands [][]Card, draws []Card) Deck {
	t.Helper()
	used := map[Card]bool{trump: true}
	var seq []Card
	for r := range hands[0] {
		for _, h := range hands {
			seq = append(seq, h[r])
		}
	}
	seq = append(seq, draws...)
	for _, c := range seq {
		if used[c] {
			t.Fatalf("card %s used twice in stacked deck", c)
		}
		used[c] = true
	}
	for _, c := range NewDeck() {
		if !used[c] {
			seq = append(seq, c)
		}
	}

	out := []Card{trump}
	for i := len(seq) - 1; i >= 0; i-- {
		out = append(out, seq[i])
	}
	if len(out) != PackSize {
		t.Fatalf("stacked deck has %d cards", len(out))
	}
	return NewDeckFrom(out)
}

func seats(ids ...string) []Seat {
	out := make([]Seat, len(ids))
	for i, id := range ids {
		out[i] = Seat{ID: id, Kind: SeatHuman}
	}
	return out
}

// endgame builds a playing game with an empty deck; discarded cards make up the pack.
func endgame(t *testing.T, trump Suit, ring []string, hands map[string][]Card, attacker, defender string) *Game {
	t.Helper()
	g := &Game{
		TrumpSuit:    trump,
		Seats:        seats(ring...),
		Hands:        hands,
		Attacker:     attacker,
		Defender:     defender,
		CurrentActor: attacker,
		Phase:        PhaseAttacking,
		Status:       StatusPlaying,
	}
	held := 0
	for _, h := range hands {
		held += len(h)
	}
	g.Discarded = PackSize - held
	return g
}

func mustApply(t *testing.T, g *Game, seat string, m Move) {
	t.Helper()
	if err := g.Apply(seat, m); err != nil {
		t.Fatalf("Apply(%s, %s): %v", seat, m, err)
	}
}

func move(a Action, c Card) Move {
	return Move{Action: a, Card: &c}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

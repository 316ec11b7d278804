package domain

import (
	"fmt"
	"sort"
)

const (
	// PackSize is the number of cards in a Durak pack.
	PackSize = 36
	// HandSize is the number of cards each seat is dealt and refilled to.
	HandSize = 6
)

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// NewDeck returns the ordered 36-card pack.
func NewDeck() []Card {
	deck := make([]Card, 0, PackSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Rank: r, Suit: s, Value: rankValues[r]})
		}
	}
	return deck
}

// Shuffle permutes cards in place with Fisher-Yates.
func Shuffle(cards []Card, rng RNG) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// NewShuffledDeck returns a uniformly shuffled pack.
func NewShuffledDeck(rng RNG) Deck {
	cards := NewDeck()
	Shuffle(cards, rng)
	return NewDeckFrom(cards)
}

// Deck is the stock of undealt cards. Cards are drawn from the end;
// the card at index 0 is the trump card and is drawn last.
type Deck struct {
	cards []Card
}

// NewDeckFrom wraps an explicit card order. The last element is drawn first.
func NewDeckFrom(cards []Card) Deck {
	return Deck{cards: append([]Card(nil), cards...)}
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Bottom returns the card drawn last.
func (d *Deck) Bottom() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[0], true
}

// Draw removes and returns the next card.
func (d *Deck) Draw() (Card, bool) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, false
	}
	c := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c, true
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Deal hands out handSize cards per seat, round-robin in ring order.
func Deal(d *Deck, seats []Seat, handSize int) (map[string][]Card, error) {
	if need := len(seats) * handSize; need > d.Len() {
		return nil, fmt.Errorf("%w: need %d cards, deck has %d", ErrDeckExhausted, need, d.Len())
	}
	hands := make(map[string][]Card, len(seats))
	for _, s := range seats {
		hands[s.ID] = make([]Card, 0, handSize)
	}
	for range handSize {
		for _, s := range seats {
			c, _ := d.Draw()
			hands[s.ID] = append(hands[s.ID], c)
		}
	}
	return hands, nil
}

// SortHand orders non-trumps by suit then value, with trumps last.
func SortHand(cards []Card, trump Suit) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		at, bt := a.Suit == trump, b.Suit == trump
		if at != bt {
			return bt
		}
		if a.Suit != b.Suit {
			return suitOrder(a.Suit) < suitOrder(b.Suit)
		}
		return a.Value < b.Value
	})
}

func suitOrder(s Suit) int {
	for i, x := range Suits {
		if x == s {
			return i
		}
	}
	return len(Suits)
}

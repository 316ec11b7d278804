package domain

import (
	"fmt"
	"strings"
)

// Phase is the step of the current round.
type Phase string

const (
	// PhaseAttacking means the attacker must lead, extend, or declare bito.
	PhaseAttacking Phase = "attacking"
	// PhaseDefending means the defender must beat the open pair or take.
	PhaseDefending Phase = "defending"
)

// Status represents the lifecycle stage of a session.
type Status string

const (
	// StatusWaiting indicates the session is waiting for seats to fill.
	StatusWaiting Status = "waiting"
	// StatusPlaying indicates cards are dealt and the turn machine runs.
	StatusPlaying Status = "playing"
	// StatusFinished indicates a terminal result was reached.
	StatusFinished Status = "finished"
)

// Suit is one of the four French suits.
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Suits lists the suits in pack order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Ranks lists the ranks of the 36-card pack in ascending order.
var Ranks = []string{"6", "7", "8", "9", "10", "J", "Q", "K", "A"}

var rankValues = map[string]int{
	"6": 6, "7": 7, "8": 8, "9": 9, "10": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

var suitAliases = map[string]Suit{
	"♠": Spades, "S": Spades,
	"♥": Hearts, "H": Hearts,
	"♦": Diamonds, "D": Diamonds,
	"♣": Clubs, "C": Clubs,
}

// Card is a single playing card. Identity is (Rank, Suit); Value is derived from Rank.
type Card struct {
	Rank  string `json:"rank"`
	Suit  Suit   `json:"suit"`
	Value int    `json:"value"`
}

// NewCard validates rank and suit and returns the card.
func NewCard(rank string, suit Suit) (Card, error) {
	return ParseCard(rank, string(suit))
}

// ParseCard builds a card from client input. Suits may be given as symbols or letters.
func ParseCard(rank, suit string) (Card, error) {
	r := strings.ToUpper(strings.TrimSpace(rank))
	value, ok := rankValues[r]
	if !ok {
		return Card{}, fmt.Errorf("%w: rank %q", ErrUnknownCard, rank)
	}
	s, ok := suitAliases[strings.ToUpper(strings.TrimSpace(suit))]
	if !ok {
		return Card{}, fmt.Errorf("%w: suit %q", ErrUnknownCard, suit)
	}
	return Card{Rank: r, Suit: s, Value: value}, nil
}

// String renders the card as rank followed by suit, e.g. "10♥".
func (c Card) String() string {
	return c.Rank + string(c.Suit)
}

// Same reports whether two cards share rank and suit.
func (c Card) Same(o Card) bool {
	return c.Rank == o.Rank && c.Suit == o.Suit
}

// SeatKind tells humans and synthetic players apart.
type SeatKind string

const (
	SeatHuman SeatKind = "human"
	SeatBot   SeatKind = "bot"
)

// Seat is one position in the ring.
type Seat struct {
	ID   string   `json:"id"`
	Kind SeatKind `json:"kind"`
	Name string   `json:"name,omitempty"`
}

// IsBot reports whether the seat is computer-controlled.
func (s Seat) IsBot() bool {
	return s.Kind == SeatBot
}

// TablePair is one attack card and, once beaten, its defend card.
type TablePair struct {
	Attack Card  `json:"attack"`
	Defend *Card `json:"defend,omitempty"`
}

// Result is the terminal classification of a finished game.
type Result struct {
	Loser       string   `json:"loser,omitempty"`
	Winners     []string `json:"winners"`
	Draw        bool     `json:"draw"`
	FinishOrder []string `json:"finish_order"`
}

// Game holds the authoritative state of a dealt session.
type Game struct {
	Deck      Deck
	TrumpCard Card
	TrumpSuit Suit

	Seats []Seat            // ring order, fixed at deal time
	Hands map[string][]Card // seat id -> cards in hand order
	Table Table

	Discarded int

	Attacker     string
	Defender     string
	CurrentActor string
	Phase        Phase
	Status       Status

	// FinishOrder lists seats in the order they ran out of cards after the deck emptied.
	FinishOrder []string
	Result      *Result
}

// Seat returns the seat with the given id.
func (g *Game) Seat(id string) (Seat, bool) {
	for _, s := range g.Seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.Deck = Deck{cards: append([]Card(nil), g.Deck.cards...)}
	out.Seats = append([]Seat(nil), g.Seats...)
	out.Hands = make(map[string][]Card, len(g.Hands))
	for id, hand := range g.Hands {
		out.Hands[id] = append([]Card{}, hand...)
	}
	out.Table = g.Table.clone()
	out.FinishOrder = append([]string(nil), g.FinishOrder...)
	if g.Result != nil {
		r := *g.Result
		r.Winners = append([]string(nil), g.Result.Winners...)
		r.FinishOrder = append([]string(nil), g.Result.FinishOrder...)
		out.Result = &r
	}
	return &out
}

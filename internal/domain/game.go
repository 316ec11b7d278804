package domain

import (
	"fmt"
	"strings"
)

// Action names a move kind.
type Action string

const (
	ActionAttack Action = "attack"
	ActionDefend Action = "defend"
	ActionExtend Action = "extend"
	ActionTake   Action = "take"
	ActionPass   Action = "pass"
)

// ParseAction maps client input to an Action. "add" and "bito" are accepted aliases.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attack":
		return ActionAttack, nil
	case "defend":
		return ActionDefend, nil
	case "extend", "add":
		return ActionExtend, nil
	case "take":
		return ActionTake, nil
	case "pass", "bito":
		return ActionPass, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// NeedsCard reports whether the action carries a card.
func (a Action) NeedsCard() bool {
	return a == ActionAttack || a == ActionDefend || a == ActionExtend
}

// Move is a single decision by a seat.
type Move struct {
	Action Action `json:"action"`
	Card   *Card  `json:"card,omitempty"`
}

func (m Move) String() string {
	if m.Card == nil {
		return string(m.Action)
	}
	return string(m.Action) + " " + m.Card.String()
}

// StartOptions tunes dealing.
type StartOptions struct {
	HandSize int
	// LowestTrumpLeads gives the first attack to the seat holding the lowest trump.
	LowestTrumpLeads bool
}

// NewGame deals hands from deck to seats in ring order and opens the first round.
func NewGame(seats []Seat, deck Deck, opts StartOptions) (*Game, error) {
	if len(seats) < 2 {
		return nil, ErrTooFewSeats
	}
	handSize := opts.HandSize
	if handSize <= 0 {
		handSize = HandSize
	}

	trump, ok := deck.Bottom()
	if !ok {
		return nil, ErrDeckExhausted
	}
	hands, err := Deal(&deck, seats, handSize)
	if err != nil {
		return nil, err
	}
	for _, h := range hands {
		SortHand(h, trump.Suit)
	}

	g := &Game{
		Deck:      deck,
		TrumpCard: trump,
		TrumpSuit: trump.Suit,
		Seats:     append([]Seat(nil), seats...),
		Hands:     hands,
		Phase:     PhaseAttacking,
		Status:    StatusPlaying,
	}

	first := 0
	if opts.LowestTrumpLeads {
		first = g.lowestTrumpSeat()
	}
	g.Attacker = g.Seats[first].ID
	g.Defender = g.Seats[(first+1)%len(g.Seats)].ID
	g.CurrentActor = g.Attacker
	return g, nil
}

func (g *Game) lowestTrumpSeat() int {
	best, bestValue := 0, 0
	for i, s := range g.Seats {
		for _, c := range g.Hands[s.ID] {
			if c.Suit == g.TrumpSuit && (bestValue == 0 || c.Value < bestValue) {
				best, bestValue = i, c.Value
			}
		}
	}
	return best
}

// Apply dispatches a move for seat.
func (g *Game) Apply(seat string, m Move) error {
	if m.Action.NeedsCard() && m.Card == nil {
		return fmt.Errorf("%w: %s", ErrCardRequired, m.Action)
	}
	switch m.Action {
	case ActionAttack:
		return g.Attack(seat, *m.Card)
	case ActionDefend:
		return g.Defend(seat, *m.Card)
	case ActionExtend:
		return g.Extend(seat, *m.Card)
	case ActionTake:
		return g.Take(seat)
	case ActionPass:
		return g.Pass(seat)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, m.Action)
	}
}

// Attack places card as a new open pair.
func (g *Game) Attack(seat string, card Card) error {
	if err := g.requireActor(seat); err != nil {
		return err
	}
	if seat != g.Attacker {
		return ErrNotAttacker
	}
	if g.Phase != PhaseAttacking {
		return ErrWrongPhase
	}
	idx := indexOf(g.Hands[seat], card)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotHeld, card)
	}
	limit := g.pairLimit()
	if !CanAttack(card, g.Table, limit) {
		return g.attackRejection(card, limit)
	}
	g.throwIn(seat, idx)
	return nil
}

// Extend throws in a card matching a rank on a fully defended table.
func (g *Game) Extend(seat string, card Card) error {
	if err := g.requireActor(seat); err != nil {
		return err
	}
	if seat != g.Attacker {
		return ErrNotAttacker
	}
	if len(g.Table) == 0 {
		return ErrEmptyTable
	}
	if !g.Table.AllDefended() {
		return ErrOpenPair
	}
	idx := indexOf(g.Hands[seat], card)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotHeld, card)
	}
	limit := g.pairLimit()
	if !CanExtend(card, g.Table, limit) {
		return g.attackRejection(card, limit)
	}
	g.throwIn(seat, idx)
	return nil
}

// Defend beats the open pair with card.
func (g *Game) Defend(seat string, card Card) error {
	if err := g.requireActor(seat); err != nil {
		return err
	}
	if seat != g.Defender {
		return ErrNotDefender
	}
	if g.Phase != PhaseDefending {
		return ErrWrongPhase
	}
	pair, ok := g.Table.OpenPair()
	if !ok {
		return ErrNoOpenPair
	}
	idx := indexOf(g.Hands[seat], card)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotHeld, card)
	}
	if !CanDefend(card, *pair, g.TrumpSuit) {
		return fmt.Errorf("%w: %s against %s", ErrCannotBeat, card, pair.Attack)
	}

	g.Hands[seat] = removeAt(g.Hands[seat], idx)
	d := card
	pair.Defend = &d

	if g.Table.AllDefended() {
		g.Phase = PhaseAttacking
		g.CurrentActor = g.Attacker
	}
	return nil
}

// Take moves every table card into the defender's hand and ends the round.
func (g *Game) Take(seat string) error {
	if err := g.requireActor(seat); err != nil {
		return err
	}
	if seat != g.Defender {
		return ErrNotDefender
	}
	if g.Phase != PhaseDefending {
		return ErrWrongPhase
	}
	g.Hands[seat] = append(g.Hands[seat], g.Table.Cards()...)
	g.Table = nil
	g.endRound(true)
	return nil
}

// Pass declares bito: the defended table is discarded and roles rotate.
func (g *Game) Pass(seat string) error {
	if err := g.requireActor(seat); err != nil {
		return err
	}
	if seat != g.Attacker {
		return ErrNotAttacker
	}
	if g.Phase != PhaseAttacking {
		return ErrWrongPhase
	}
	if len(g.Table) == 0 {
		return ErrEmptyTable
	}
	if !g.Table.AllDefended() {
		return ErrOpenPair
	}
	g.Discarded += g.Table.CardCount()
	g.Table = nil
	g.endRound(false)
	return nil
}

// LegalMoves enumerates every move seat may make right now.
func (g *Game) LegalMoves(seat string) []Move {
	if g.requireActor(seat) != nil {
		return nil
	}
	hand := g.Hands[seat]
	var moves []Move
	switch g.Phase {
	case PhaseAttacking:
		if seat != g.Attacker {
			return nil
		}
		limit := g.pairLimit()
		for i := range hand {
			c := hand[i]
			switch {
			case len(g.Table) == 0 && CanAttack(c, g.Table, limit):
				moves = append(moves, Move{Action: ActionAttack, Card: &c})
			case CanExtend(c, g.Table, limit):
				moves = append(moves, Move{Action: ActionExtend, Card: &c})
			}
		}
		if len(g.Table) > 0 && g.Table.AllDefended() {
			moves = append(moves, Move{Action: ActionPass})
		}
	case PhaseDefending:
		if seat != g.Defender {
			return nil
		}
		if pair, ok := g.Table.OpenPair(); ok {
			for i := range hand {
				c := hand[i]
				if CanDefend(c, *pair, g.TrumpSuit) {
					moves = append(moves, Move{Action: ActionDefend, Card: &c})
				}
			}
		}
		moves = append(moves, Move{Action: ActionTake})
	}
	return moves
}

func (g *Game) requireActor(seat string) error {
	if g.Status != StatusPlaying {
		return ErrNotPlaying
	}
	if _, ok := g.Hands[seat]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSeat, seat)
	}
	if g.CurrentActor != seat {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) pairLimit() int {
	return PairLimit(len(g.Hands[g.Defender]))
}

func (g *Game) attackRejection(card Card, limit int) error {
	if len(g.Table) >= limit {
		return fmt.Errorf("%w: %d pairs", ErrTableFull, limit)
	}
	return fmt.Errorf("%w: %s", ErrRankNotOnTable, card)
}

func (g *Game) throwIn(seat string, idx int) {
	card := g.Hands[seat][idx]
	g.Hands[seat] = removeAt(g.Hands[seat], idx)
	g.Table = append(g.Table, TablePair{Attack: card})
	g.Phase = PhaseDefending
	g.CurrentActor = g.Defender
}

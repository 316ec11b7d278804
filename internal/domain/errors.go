package domain

import "errors"

var (
	ErrUnknownCard    = errors.New("unknown card")
	ErrDeckExhausted  = errors.New("deck exhausted")
	ErrNotPlaying     = errors.New("game not in playing status")
	ErrUnknownSeat    = errors.New("seat not in game")
	ErrNotYourTurn    = errors.New("not the current actor")
	ErrWrongPhase     = errors.New("action not allowed in this phase")
	ErrNotAttacker    = errors.New("seat is not the attacker")
	ErrNotDefender    = errors.New("seat is not the defender")
	ErrCardNotHeld    = errors.New("card not in hand")
	ErrCardRequired   = errors.New("action requires a card")
	ErrRankNotOnTable = errors.New("rank not on table")
	ErrTableFull      = errors.New("table pair limit reached")
	ErrNoOpenPair     = errors.New("no open pair to defend")
	ErrOpenPair       = errors.New("an attack is still undefended")
	ErrCannotBeat     = errors.New("card does not beat the attack")
	ErrEmptyTable     = errors.New("table is empty")
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvariant      = errors.New("invariant violated")
	ErrTooFewSeats    = errors.New("not enough seats to deal")
)

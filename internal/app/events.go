package app

import "durak/internal/domain"

// EventKind identifies emitted session events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventGameStarted  EventKind = "game_started"
	EventMovePlayed   EventKind = "move_played"
	EventGameEnded    EventKind = "game_ended"
)

// Event is a session event. Transports decide who receives it.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload"`
}

type PlayerJoinedPayload struct {
	SeatID string          `json:"seat_id"`
	Kind   domain.SeatKind `json:"kind"`
}

type GameStartedPayload struct {
	TrumpCard domain.Card `json:"trump_card"`
	Attacker  string      `json:"attacker"`
	Defender  string      `json:"defender"`
}

type MovePlayedPayload struct {
	SeatID    string      `json:"seat_id"`
	Move      domain.Move `json:"move"`
	Bot       bool        `json:"bot"`
	Attacker  string      `json:"attacker"`
	Defender  string      `json:"defender"`
	NextActor string      `json:"next_actor"`
}

type GameEndedPayload struct {
	Result domain.Result `json:"result"`
}

func movePlayed(g *domain.Game, seat domain.Seat, m domain.Move) Event {
	return Event{
		Kind: EventMovePlayed,
		Payload: MovePlayedPayload{
			SeatID:    seat.ID,
			Move:      m,
			Bot:       seat.IsBot(),
			Attacker:  g.Attacker,
			Defender:  g.Defender,
			NextActor: g.CurrentActor,
		},
	}
}

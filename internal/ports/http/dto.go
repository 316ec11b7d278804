package http

import "durak/internal/app"

// CreateGameRequest is the body of POST /api/create-game.
type CreateGameRequest struct {
	PlayerID    string `json:"playerId"`
	SeatCount   int    `json:"seatCount"`
	BotCount    int    `json:"botCount"`
	Autostart   bool   `json:"autostart"`
	WaitForFull bool   `json:"waitForFull"`
}

// JoinGameRequest is the body of POST /api/join-game/:id.
type JoinGameRequest struct {
	PlayerID string `json:"playerId"`
}

// SeatResponse is returned by create and join.
type SeatResponse struct {
	GameID    string `json:"gameId"`
	PlayerID  string `json:"playerId"`
	SeatToken string `json:"seatToken"`
	Status    string `json:"status"`
}

type CardRequest struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// MoveRequest is the body of POST /api/game/:id/move. The mover is taken from the bearer seat token.
type MoveRequest struct {
	Action string       `json:"action"`
	Card   *CardRequest `json:"card,omitempty"`
}

// StateResponse wraps the masked view with the events produced by the request.
type StateResponse struct {
	State  app.View    `json:"state"`
	Events []app.Event `json:"events,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

package domain

import "time"

const (
	MinSeats = 2
	MaxSeats = 6
)

// SessionConfig is fixed at creation time.
type SessionConfig struct {
	SeatCount   int  `json:"seat_count"`
	BotCount    int  `json:"bot_count"`
	Autostart   bool `json:"autostart"`
	WaitForFull bool `json:"wait_for_full"`
}

// Session is the aggregate root stored per room code. Game is nil until dealing.
type Session struct {
	ID        string
	Config    SessionConfig
	Owner     string
	Seats     []Seat
	Game      *Game
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the lifecycle stage.
func (s *Session) Status() Status {
	if s.Game == nil {
		return StatusWaiting
	}
	return s.Game.Status
}

// Seat returns the seat with the given id.
func (s *Session) Seat(id string) (Seat, bool) {
	for _, seat := range s.Seats {
		if seat.ID == id {
			return seat, true
		}
	}
	return Seat{}, false
}

// OpenSeats returns the remaining capacity.
func (s *Session) OpenSeats() int {
	return s.Config.SeatCount - len(s.Seats)
}

// HumanCount counts human seats.
func (s *Session) HumanCount() int {
	n := 0
	for _, seat := range s.Seats {
		if !seat.IsBot() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to mutate.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Seats = append([]Seat(nil), s.Seats...)
	out.Game = s.Game.Clone()
	return &out
}

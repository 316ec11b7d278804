package app

import "durak/internal/domain"

// SeatView is the public part of a seat: never its cards.
type SeatView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Kind     domain.SeatKind `json:"kind"`
	Owner    bool            `json:"owner"`
	Cards    int             `json:"cards"`
	Finished bool            `json:"finished"`
}

// View is the masked session state returned to one requester.
type View struct {
	SessionID string               `json:"session_id"`
	Status    domain.Status        `json:"status"`
	Config    domain.SessionConfig `json:"config"`
	Seats     []SeatView           `json:"seats"`

	TrumpSuit domain.Suit        `json:"trump_suit,omitempty"`
	TrumpCard *domain.Card       `json:"trump_card,omitempty"`
	DeckCount int                `json:"deck_count"`
	Discarded int                `json:"discarded"`
	Table     []domain.TablePair `json:"table"`

	Attacker     string         `json:"attacker,omitempty"`
	Defender     string         `json:"defender,omitempty"`
	CurrentActor string         `json:"current_actor,omitempty"`
	Phase        domain.Phase   `json:"phase,omitempty"`
	Result       *domain.Result `json:"result,omitempty"`

	// You, Hand and Actions are set only when the requester holds a human seat.
	You     string          `json:"you,omitempty"`
	Hand    []domain.Card   `json:"hand,omitempty"`
	Actions []domain.Action `json:"actions,omitempty"`
}

func buildView(s *domain.Session, requester string) View {
	v := View{
		SessionID: s.ID,
		Status:    s.Status(),
		Config:    s.Config,
		Seats:     make([]SeatView, 0, len(s.Seats)),
		Table:     []domain.TablePair{},
	}

	g := s.Game
	finished := map[string]bool{}
	if g != nil {
		for _, id := range g.FinishOrder {
			finished[id] = true
		}
	}
	for _, seat := range s.Seats {
		sv := SeatView{ID: seat.ID, Name: seat.Name, Kind: seat.Kind, Owner: seat.ID == s.Owner, Finished: finished[seat.ID]}
		if g != nil {
			sv.Cards = len(g.Hands[seat.ID])
		}
		v.Seats = append(v.Seats, sv)
	}

	if seat, ok := s.Seat(requester); ok && !seat.IsBot() {
		v.You = seat.ID
	}
	if g == nil {
		return v
	}

	trump := g.TrumpCard
	v.TrumpSuit = g.TrumpSuit
	v.TrumpCard = &trump
	v.DeckCount = g.Deck.Len()
	v.Discarded = g.Discarded
	for _, p := range g.Table {
		pair := domain.TablePair{Attack: p.Attack}
		if p.Defend != nil {
			d := *p.Defend
			pair.Defend = &d
		}
		v.Table = append(v.Table, pair)
	}
	v.Attacker = g.Attacker
	v.Defender = g.Defender
	v.CurrentActor = g.CurrentActor
	v.Phase = g.Phase
	if g.Result != nil {
		r := *g.Result
		v.Result = &r
	}

	if v.You != "" {
		v.Hand = append([]domain.Card{}, g.Hands[v.You]...)
		v.Actions = actionKinds(g.LegalMoves(v.You))
	}
	return v
}

func actionKinds(moves []domain.Move) []domain.Action {
	seen := map[domain.Action]bool{}
	var out []domain.Action
	for _, m := range moves {
		if !seen[m.Action] {
			seen[m.Action] = true
			out = append(out, m.Action)
		}
	}
	return out
}

package domain

// endRound refills hands, records finishers, checks for a terminal state and
// otherwise assigns the roles of the next round.
func (g *Game) endRound(defenderTook bool) {
	attacker, defender := g.Attacker, g.Defender
	g.drawPhase(attacker, defender)
	SortHand(g.Hands[attacker], g.TrumpSuit)
	SortHand(g.Hands[defender], g.TrumpSuit)

	finishedBefore := len(g.FinishOrder)
	g.recordFinishers(attacker)
	if g.checkTerminal(finishedBefore) {
		return
	}

	if defenderTook {
		g.assignRoles(attacker, defender)
	} else {
		g.assignRoles(defender, g.ringNext(defender))
	}
	g.Phase = PhaseAttacking
	g.CurrentActor = g.Attacker
}

// drawPhase deals one card at a time, first then second, until both hold
// HandSize cards or the deck runs out.
func (g *Game) drawPhase(first, second string) {
	for g.Deck.Len() > 0 && (len(g.Hands[first]) < HandSize || len(g.Hands[second]) < HandSize) {
		if len(g.Hands[first]) < HandSize {
			c, _ := g.Deck.Draw()
			g.Hands[first] = append(g.Hands[first], c)
		}
		if len(g.Hands[second]) < HandSize {
			c, ok := g.Deck.Draw()
			if !ok {
				return
			}
			g.Hands[second] = append(g.Hands[second], c)
		}
	}
}

// assignRoles picks the first seat with cards at or after attacker, then the
// defender candidate if it still holds cards, else the next holder after the attacker.
func (g *Game) assignRoles(attacker, defender string) {
	a := g.holderFrom(attacker, true)
	d := defender
	if d == a || len(g.Hands[d]) == 0 {
		d = g.holderFrom(a, false)
	}
	g.Attacker, g.Defender = a, d
}

// holderFrom walks the ring from seat and returns the first seat holding cards.
func (g *Game) holderFrom(seat string, inclusive bool) string {
	start := g.ringIndex(seat)
	n := len(g.Seats)
	offset := 1
	if inclusive {
		offset = 0
	}
	for k := offset; k < n+offset; k++ {
		s := g.Seats[(start+k)%n]
		if len(g.Hands[s.ID]) > 0 && (inclusive || s.ID != seat) {
			return s.ID
		}
	}
	return ""
}

func (g *Game) ringIndex(seat string) int {
	for i, s := range g.Seats {
		if s.ID == seat {
			return i
		}
	}
	return 0
}

func (g *Game) ringNext(seat string) string {
	return g.Seats[(g.ringIndex(seat)+1)%len(g.Seats)].ID
}

// recordFinishers appends seats that emptied their hands once the deck is gone,
// walking the ring from the last attacker.
func (g *Game) recordFinishers(from string) {
	if g.Deck.Len() > 0 {
		return
	}
	done := make(map[string]bool, len(g.FinishOrder))
	for _, id := range g.FinishOrder {
		done[id] = true
	}
	start := g.ringIndex(from)
	for k := range g.Seats {
		s := g.Seats[(start+k)%len(g.Seats)]
		if len(g.Hands[s.ID]) == 0 && !done[s.ID] {
			g.FinishOrder = append(g.FinishOrder, s.ID)
		}
	}
}

// checkTerminal finishes the game once the deck is empty and at most one seat holds cards.
func (g *Game) checkTerminal(finishedBefore int) bool {
	if g.Deck.Len() > 0 {
		return false
	}
	holders := CountSeatsWithCards(g)
	if holders > 1 {
		return false
	}

	res := &Result{FinishOrder: append([]string(nil), g.FinishOrder...)}
	if holders == 0 {
		res.Draw = true
		res.Winners = append([]string{}, g.FinishOrder[:finishedBefore]...)
	} else {
		for _, s := range g.Seats {
			if len(g.Hands[s.ID]) > 0 {
				res.Loser = s.ID
			} else {
				res.Winners = append(res.Winners, s.ID)
			}
		}
	}

	g.Result = res
	g.Status = StatusFinished
	g.CurrentActor = ""
	return true
}

package domain

// MaxTablePairs caps a round at six attacks regardless of hand sizes.
const MaxTablePairs = 6

// Table is the ordered list of pairs in the current round.
type Table []TablePair

// Ranks returns the set of ranks present in attack and defend slots.
func (t Table) Ranks() map[string]bool {
	ranks := make(map[string]bool, len(t)*2)
	for _, p := range t {
		ranks[p.Attack.Rank] = true
		if p.Defend != nil {
			ranks[p.Defend.Rank] = true
		}
	}
	return ranks
}

// OpenPair returns the pair still awaiting defense, if any. Only the last pair can be open.
func (t Table) OpenPair() (*TablePair, bool) {
	if len(t) == 0 {
		return nil, false
	}
	last := &t[len(t)-1]
	if last.Defend != nil {
		return nil, false
	}
	return last, true
}

// AllDefended reports whether every pair has a defend card. An empty table is vacuously defended.
func (t Table) AllDefended() bool {
	for _, p := range t {
		if p.Defend == nil {
			return false
		}
	}
	return true
}

// OpenCount returns the number of pairs without a defend card.
func (t Table) OpenCount() int {
	n := 0
	for _, p := range t {
		if p.Defend == nil {
			n++
		}
	}
	return n
}

// Cards flattens the table into attack and defend cards.
func (t Table) Cards() []Card {
	out := make([]Card, 0, len(t)*2)
	for _, p := range t {
		out = append(out, p.Attack)
		if p.Defend != nil {
			out = append(out, *p.Defend)
		}
	}
	return out
}

// CardCount counts attack and defend slots.
func (t Table) CardCount() int {
	n := 0
	for _, p := range t {
		n++
		if p.Defend != nil {
			n++
		}
	}
	return n
}

func (t Table) clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, p := range t {
		out[i] = TablePair{Attack: p.Attack}
		if p.Defend != nil {
			d := *p.Defend
			out[i].Defend = &d
		}
	}
	return out
}

// PairLimit is the most pairs the table may hold against a defender holding defenderHand cards.
func PairLimit(defenderHand int) int {
	return min(defenderHand, MaxTablePairs)
}

// CanAttack reports whether card may be placed as a new attack.
// An empty table accepts any card; otherwise the rank must already be on the
// table and the pair count must stay below limit.
func CanAttack(card Card, table Table, limit int) bool {
	if len(table) == 0 {
		return limit > 0
	}
	if len(table) >= limit {
		return false
	}
	return table.Ranks()[card.Rank]
}

// CanDefend reports whether card beats the attack card of pair.
func CanDefend(card Card, pair TablePair, trump Suit) bool {
	if pair.Defend != nil {
		return false
	}
	attack := pair.Attack
	if card.Suit == attack.Suit && card.Value > attack.Value {
		return true
	}
	return card.Suit == trump && attack.Suit != trump
}

// CanExtend reports whether card may be thrown in after every pair was beaten.
func CanExtend(card Card, table Table, limit int) bool {
	if len(table) == 0 || !table.AllDefended() {
		return false
	}
	return CanAttack(card, table, limit)
}

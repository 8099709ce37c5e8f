package holdem

import "sort"

// Pot is a main or side pot and the players who can win it.
type Pot struct {
	Amount   int64      `json:"amount"`
	Eligible []Position `json:"eligible"`
}

type potEntry struct {
	pos    Position
	bet    int64
	folded bool
}

type potManager struct {
	pots         []Pot
	excessPos    Position
	excessAmount int64
}

// calcPots layers the pot by commitment level. The part of the top bet no one
// matched is not put in a pot; it is reported as excess for its owner.
func (pm *potManager) calcPots(entries []potEntry) {
	pm.pots = nil
	pm.excessAmount = 0

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].bet < entries[j].bet })

	if n := len(entries); n > 0 {
		top := entries[n-1].bet
		var second int64
		if n > 1 {
			second = entries[n-2].bet
		}
		if excess := top - second; excess > 0 {
			pm.excessPos = entries[n-1].pos
			pm.excessAmount = excess
			entries[n-1].bet = second
		}
	}

	var layered int64
	for i, e := range entries {
		level := e.bet - layered
		if level <= 0 {
			continue
		}
		pot := Pot{}
		for _, other := range entries[i:] {
			pot.Amount += min(level, other.bet-layered)
			if !other.folded {
				pot.Eligible = append(pot.Eligible, other.pos)
			}
		}
		sort.Slice(pot.Eligible, func(a, b int) bool { return pot.Eligible[a] < pot.Eligible[b] })

		if last := len(pm.pots) - 1; last >= 0 && samePositions(pm.pots[last].Eligible, pot.Eligible) {
			pm.pots[last].Amount += pot.Amount
		} else if len(pot.Eligible) == 0 && last >= 0 {
			pm.pots[last].Amount += pot.Amount
		} else {
			pm.pots = append(pm.pots, pot)
		}
		layered = e.bet
	}
}

func samePositions(a, b []Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (h *Hand) potEntries(upto Street) []potEntry {
	contrib := h.Contributions(upto)
	entries := make([]potEntry, 0, len(contrib))
	for pos := Position(0); pos < positionCount; pos++ {
		amt, ok := contrib[pos]
		if !ok || amt <= 0 {
			continue
		}
		entries = append(entries, potEntry{pos: pos, bet: amt, folded: h.hasFolded(pos, upto)})
	}
	return entries
}

// SidePots splits everything committed through upto into the main pot and
// side pots. Any uncalled part of the top bet is left out; see UncalledBet.
func (h *Hand) SidePots(upto Street) []Pot {
	var pm potManager
	pm.calcPots(h.potEntries(upto))
	return pm.pots
}

// UncalledBet is the part of the largest commitment through upto that no
// other player matched, and its owner. It goes back to that player.
func (h *Hand) UncalledBet(upto Street) (Position, int64) {
	var pm potManager
	pm.calcPots(h.potEntries(upto))
	return pm.excessPos, pm.excessAmount
}

package holdem

import "fmt"

// hasFolded reports a fold by pos on street or any earlier street.
func (h *Hand) hasFolded(pos Position, street Street) bool {
	for _, s := range Streets {
		if s > street {
			break
		}
		for _, a := range h.streets[s].actions {
			if a.Player == pos && a.Type == PlayerActionTypeFold {
				return true
			}
		}
	}
	return false
}

// IsPlayerAllIn reports whether pos moved all-in on street or earlier, or has
// nothing left behind after what it committed.
func (h *Hand) IsPlayerAllIn(pos Position, street Street) bool {
	if h.seats[pos] == nil || !street.Valid() {
		return false
	}
	for _, s := range Streets {
		if s > street {
			break
		}
		for _, a := range h.streets[s].actions {
			if a.Player == pos && a.Type == PlayerActionTypeAllin {
				return true
			}
		}
	}
	return h.EffectiveStack(pos, street) <= 0
}

// ActivePlayers are the seated players who have not folded by street, in the
// street's acting order.
func (h *Hand) ActivePlayers(street Street) []Position {
	if !street.Valid() {
		return nil
	}
	out := make([]Position, 0, len(h.seats))
	for _, pos := range street.order() {
		if h.seats[pos] != nil && !h.hasFolded(pos, street) {
			out = append(out, pos)
		}
	}
	return out
}

// ActingPlayers are the active players who are not all-in.
func (h *Hand) ActingPlayers(street Street) []Position {
	active := h.ActivePlayers(street)
	out := active[:0]
	for _, pos := range active {
		if !h.IsPlayerAllIn(pos, street) {
			out = append(out, pos)
		}
	}
	return out
}

// owesAction reports whether an acting player still has a decision on street:
// it has not acted yet, is short of the bet, or has not answered the latest
// aggression by someone else.
func owesAction(pos Position, f streetFacts) bool {
	last, acted := f.lastActed[pos]
	if !acted {
		return true
	}
	if f.contrib[pos] < f.highest {
		return true
	}
	return f.lastAggression >= 0 && f.actions[f.lastAggression].Player != pos && last < f.lastAggression
}

// NextActingPlayer resolves whose turn it is on street.
//
// Rotation starts after the most recent actor (or, before any action, after
// the preflop closing position / at the top of the postflop order) and skips
// folded, all-in and finished players. Once the street holds an all-in, only
// players who still owe a response to it are considered.
func (h *Hand) NextActingPlayer(street Street) (Position, error) {
	if !street.Valid() {
		return 0, fmt.Errorf("%w: invalid street %d", ErrInvalidAction, byte(street))
	}
	if h.IsStreetComplete(street) {
		return 0, fmt.Errorf("%w: %s", ErrStaleQuery, street)
	}
	f := h.analyze(street)
	order := street.order()

	start := 0
	if n := len(f.actions); n > 0 {
		start = indexOf(order, f.actions[n-1].Player) + 1
	} else if street == StreetPreflop {
		closer, _ := h.cfg.closing()
		start = indexOf(order, closer) + 1
	}

	candidates := make(map[Position]bool, len(h.seats))
	for _, pos := range h.ActingPlayers(street) {
		if owesAction(pos, f) {
			candidates[pos] = true
		}
	}
	if f.lastAllIn >= 0 {
		responders := make(map[Position]bool, len(candidates))
		for pos := range candidates {
			if h.needsToRespond(pos, f) {
				responders[pos] = true
			}
		}
		if len(responders) > 0 {
			candidates = responders
		}
	}

	for i := 0; i < len(order); i++ {
		pos := order[(start+i)%len(order)]
		if candidates[pos] {
			return pos, nil
		}
	}
	return 0, ErrInvalidState(fmt.Sprintf("%s open but nobody to act", street))
}

func indexOf(order []Position, pos Position) int {
	for i, p := range order {
		if p == pos {
			return i
		}
	}
	return -1
}

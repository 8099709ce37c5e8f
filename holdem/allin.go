package holdem

// needsToRespond: the street's latest all-in was made by someone else, pos
// can still act and has not acted since. An all-in that only matched the bet
// asks nothing of anyone.
func (h *Hand) needsToRespond(pos Position, f streetFacts) bool {
	if f.lastAllIn < 0 || f.actions[f.lastAllIn].Player == pos {
		return false
	}
	if h.seats[pos] == nil || h.hasFolded(pos, f.street) || h.IsPlayerAllIn(pos, f.street) {
		return false
	}
	last, acted := f.lastActed[pos]
	return !acted || last < f.lastAllIn
}

// NeedsToRespondToAllIn reports whether pos still has to call or fold facing
// the most recent all-in on street.
func (h *Hand) NeedsToRespondToAllIn(pos Position, street Street) bool {
	if !street.Valid() {
		return false
	}
	return h.needsToRespond(pos, h.analyze(street))
}

// PlayersWhoNeedToRespond lists, in acting order, everyone owing a response to
// the latest all-in on street.
func (h *Hand) PlayersWhoNeedToRespond(street Street) []Position {
	if !street.Valid() {
		return nil
	}
	f := h.analyze(street)
	var out []Position
	for _, pos := range h.ActingPlayers(street) {
		if h.needsToRespond(pos, f) {
			out = append(out, pos)
		}
	}
	return out
}

func (h *Hand) AnyPlayersNeedToRespond(street Street) bool {
	return len(h.PlayersWhoNeedToRespond(street)) > 0
}

// IsAllPlayersAllIn holds when at least two players remain, all but at most
// one of them are all-in, and the one left has answered every all-in. The
// remaining board then runs out with no further betting.
func (h *Hand) IsAllPlayersAllIn(street Street) bool {
	if !street.Valid() {
		return false
	}
	for s := StreetPreflop; s < street; s++ {
		if !h.IsStreetComplete(s) {
			return false
		}
	}
	active := h.ActivePlayers(street)
	if len(active) < 2 {
		return false
	}
	acting := h.ActingPlayers(street)
	if len(acting) > 1 || len(acting) == len(active) {
		return false
	}
	if h.AnyPlayersNeedToRespond(street) {
		return false
	}
	if len(acting) == 1 {
		f := h.analyze(street)
		return f.contrib[acting[0]] >= f.highest
	}
	return true
}

// ReadyForShowdown: the river is closed with two or more players left, or
// an earlier street ended with everyone but one all-in.
func (h *Hand) ReadyForShowdown() bool {
	if len(h.ActivePlayers(StreetRiver)) < 2 {
		return false
	}
	for _, s := range Streets {
		if h.IsAllPlayersAllIn(s) {
			return true
		}
	}
	return h.IsStreetComplete(StreetRiver)
}

// IsHandOver: everyone else folded, or showdown is reached.
func (h *Hand) IsHandOver() bool {
	return len(h.ActivePlayers(StreetRiver)) <= 1 || h.ReadyForShowdown()
}

package holdem

// IsStreetComplete decides whether betting on street is closed.
//
//  1. At most one active player left: the hand is decided.
//  2. Every active player is all-in, or only one can still act and it owes nothing.
//  3. Preflop without a raise above the closing amount (BB, or UTG when
//     straddled): complete once the closer has checked its option and nobody
//     still owes an answer to an all-in.
//  4. Otherwise: with no aggression, once every acting player has acted and
//     matched; after aggression, once everyone but the aggressor has acted
//     since and matched the highest commitment, or is all-in.
func (h *Hand) IsStreetComplete(street Street) bool {
	if !street.Valid() {
		return false
	}
	active := h.ActivePlayers(street)
	if len(active) <= 1 {
		return true
	}
	acting := h.ActingPlayers(street)
	if len(acting) == 0 {
		return true
	}

	f := h.analyze(street)
	if len(acting) == 1 && f.contrib[acting[0]] >= f.highest {
		return true
	}

	if street == StreetPreflop {
		closer, closingAmount := h.cfg.closing()
		closerActing := h.seats[closer] != nil && !h.hasFolded(closer, street) && !h.IsPlayerAllIn(closer, street)
		if f.highest <= closingAmount && closerActing {
			last, acted := f.lastActed[closer]
			if !acted || f.actions[last].Type != PlayerActionTypeCheck {
				return false
			}
			for _, pos := range acting {
				if h.needsToRespond(pos, f) {
					return false
				}
			}
			return true
		}
	}

	if f.lastAggression < 0 {
		for _, pos := range acting {
			if _, acted := f.lastActed[pos]; !acted || f.contrib[pos] < f.highest {
				return false
			}
		}
		return true
	}

	aggressor := f.actions[f.lastAggression].Player
	for _, pos := range acting {
		if pos == aggressor {
			continue
		}
		if f.lastActed[pos] <= f.lastAggression || f.contrib[pos] < f.highest {
			return false
		}
	}
	return true
}

// CurrentStreet is the first street whose betting is still open, or the river
// once every street is closed.
func (h *Hand) CurrentStreet() Street {
	for _, s := range Streets {
		if !h.IsStreetComplete(s) {
			return s
		}
	}
	return StreetRiver
}

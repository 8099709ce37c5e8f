package holdem

// blindSeeds returns the forced preflop postings of seated positions.
func (h *Hand) blindSeeds() map[Position]int64 {
	seeds := make(map[Position]int64, 3)
	if h.seats[PositionSB] != nil && h.cfg.SmallBlind > 0 {
		seeds[PositionSB] = min(h.cfg.SmallBlind, h.seats[PositionSB].Stack)
	}
	if h.seats[PositionBB] != nil {
		seeds[PositionBB] = min(h.cfg.BigBlind, h.seats[PositionBB].Stack)
	}
	if h.seats[PositionUTG] != nil && h.cfg.Straddle > 0 {
		seeds[PositionUTG] = min(h.cfg.Straddle, h.seats[PositionUTG].Stack)
	}
	return seeds
}

// streetFacts is everything derived from one street's action log in a single pass.
type streetFacts struct {
	street  Street
	actions []Action

	// contrib is each player's total commitment on this street.
	contrib map[Position]int64
	highest int64

	// lastActed is the index of each player's most recent action.
	lastActed map[Position]int

	// aggressive marks bets and raises above the highest commitment, and
	// all-ins that put in more than the player had in without merely matching
	// the bet. full marks those that met the minimum raise at the time.
	aggressive []bool
	full       []bool

	lastAggression int
	// lastAllIn is the most recent aggressive all-in.
	lastAllIn     int
	anyBetOrRaise bool
}

func (h *Hand) analyze(street Street) streetFacts {
	f := streetFacts{
		street:         street,
		actions:        h.streets[street].actions,
		contrib:        make(map[Position]int64, len(h.seats)),
		lastActed:      make(map[Position]int, len(h.seats)),
		lastAggression: -1,
		lastAllIn:      -1,
	}
	if street == StreetPreflop {
		for pos, amt := range h.blindSeeds() {
			f.contrib[pos] = amt
			f.highest = max(f.highest, amt)
		}
	}
	f.aggressive = make([]bool, len(f.actions))
	f.full = make([]bool, len(f.actions))

	for i, a := range f.actions {
		f.lastActed[a.Player] = i
		amt, ok := a.Amount()
		if !ok {
			continue
		}
		switch a.Type {
		case PlayerActionTypeBet, PlayerActionTypeRaise, PlayerActionTypeAllin:
			if amt > f.highest {
				threshold := 2 * f.highest
				if !f.anyBetOrRaise {
					threshold = h.MinBet(street)
				}
				f.aggressive[i] = true
				f.full[i] = amt >= threshold
				f.lastAggression = i
			} else if a.Type == PlayerActionTypeAllin && amt < f.highest && amt > f.contrib[a.Player] {
				// short all-in: everyone else still answers it, but it reopens nothing
				f.aggressive[i] = true
				f.lastAggression = i
			}
			if a.Type == PlayerActionTypeAllin && f.aggressive[i] {
				f.lastAllIn = i
			}
			f.anyBetOrRaise = true
		}
		// an explicit amount supersedes whatever was there, seeded blind included
		f.contrib[a.Player] = amt
		f.highest = max(f.highest, amt)
	}
	return f
}

// StreetContributions returns each player's total commitment on street alone.
func (h *Hand) StreetContributions(street Street) map[Position]int64 {
	if !street.Valid() {
		return map[Position]int64{}
	}
	return h.analyze(street).contrib
}

// Contributions returns each player's commitment summed over every street up to
// and including upto.
func (h *Hand) Contributions(upto Street) map[Position]int64 {
	out := make(map[Position]int64, len(h.seats))
	for _, s := range Streets {
		if s > upto {
			break
		}
		for pos, amt := range h.analyze(s).contrib {
			out[pos] += amt
		}
	}
	return out
}

// TotalPot is the sum of all commitments through upto.
func (h *Hand) TotalPot(upto Street) int64 {
	var total int64
	for _, amt := range h.Contributions(upto) {
		total += amt
	}
	return total
}

// PotEnteringStreet is the pot before any voluntary action on street. For
// preflop that is the posted blinds and straddle.
func (h *Hand) PotEnteringStreet(street Street) int64 {
	if street == StreetPreflop {
		var total int64
		for _, amt := range h.blindSeeds() {
			total += amt
		}
		return total
	}
	return h.TotalPot(street - 1)
}

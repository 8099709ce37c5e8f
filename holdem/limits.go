package holdem

import "fmt"

// Limits bounds the street total a player may commit with one action.
type Limits struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// CurrentBetToCall is the highest commitment on street, blinds included preflop.
func (h *Hand) CurrentBetToCall(street Street) int64 {
	if !street.Valid() {
		return 0
	}
	return h.analyze(street).highest
}

func (h *Hand) MinBet(street Street) int64 {
	if street == StreetPreflop {
		if h.cfg.Straddle > 0 {
			return 2 * h.cfg.Straddle
		}
		return 2 * h.cfg.BigBlind
	}
	return h.cfg.BigBlind
}

// MinRaise is MinBet until someone bets, raises or moves all-in on street,
// then twice the bet to call.
func (h *Hand) MinRaise(street Street) int64 {
	f := h.analyze(street)
	if !f.anyBetOrRaise {
		return h.MinBet(street)
	}
	return 2 * f.highest
}

// EffectiveStack is what pos has left behind after everything committed
// through street. Never negative.
func (h *Hand) EffectiveStack(pos Position, street Street) int64 {
	p := h.seats[pos]
	if p == nil {
		return 0
	}
	return max(0, p.Stack-h.Contributions(street)[pos])
}

// allInTotal is the street total pos reaches by committing everything.
func (h *Hand) allInTotal(pos Position, f streetFacts) int64 {
	return f.contrib[pos] + h.EffectiveStack(pos, f.street)
}

// BetLimits returns the legal street totals for a call, bet or raise by pos.
// Max is the player's all-in total; amounts at or above it become all-in.
func (h *Hand) BetLimits(t ActionType, pos Position, street Street) (Limits, error) {
	if h.seats[pos] == nil {
		return Limits{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, pos)
	}
	if h.IsStreetComplete(street) {
		return Limits{}, fmt.Errorf("%w: %s", ErrStaleQuery, street)
	}
	f := h.analyze(street)
	switch t {
	case PlayerActionTypeCall:
		return Limits{Min: f.highest, Max: f.highest}, nil
	case PlayerActionTypeBet:
		return Limits{Min: h.MinBet(street), Max: h.allInTotal(pos, f)}, nil
	case PlayerActionTypeRaise:
		return Limits{Min: h.MinRaise(street), Max: h.allInTotal(pos, f)}, nil
	}
	return Limits{}, fmt.Errorf("%w: no limits for %s", ErrInvalidAction, t)
}

// LegalActions lists what pos may do now on street.
//
// Raising is withheld when nobody else could respond, and when the only
// aggression since pos last acted was an all-in short of a full raise.
func (h *Hand) LegalActions(pos Position, street Street) ([]ActionType, error) {
	if h.seats[pos] == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, pos)
	}
	if !street.Valid() {
		return nil, fmt.Errorf("%w: invalid street %d", ErrInvalidAction, byte(street))
	}
	if h.IsStreetComplete(street) {
		return nil, fmt.Errorf("%w: %s", ErrStaleQuery, street)
	}
	if h.hasFolded(pos, street) || h.IsPlayerAllIn(pos, street) {
		return nil, fmt.Errorf("%w: %s cannot act", ErrInvalidAction, pos)
	}

	f := h.analyze(street)
	owed := f.highest - f.contrib[pos]
	behind := h.EffectiveStack(pos, street)
	othersCanRespond := false
	for _, other := range h.ActingPlayers(street) {
		if other != pos {
			othersCanRespond = true
			break
		}
	}
	canAggress := othersCanRespond && behind > owed && h.reopened(pos, f)

	acts := []ActionType{PlayerActionTypeFold}
	if owed <= 0 {
		acts = append(acts, PlayerActionTypeCheck)
	} else {
		acts = append(acts, PlayerActionTypeCall)
	}
	if canAggress && !f.anyBetOrRaise {
		acts = append(acts, PlayerActionTypeBet)
	}
	if canAggress && f.highest > 0 {
		acts = append(acts, PlayerActionTypeRaise)
	}
	if behind > 0 && (canAggress || behind <= owed) {
		acts = append(acts, PlayerActionTypeAllin)
	}
	return acts, nil
}

// reopened reports whether pos may raise: either pos has not acted on the
// street, or a full bet or raise came after its last action.
func (h *Hand) reopened(pos Position, f streetFacts) bool {
	last, acted := f.lastActed[pos]
	if !acted {
		return true
	}
	for i := last + 1; i < len(f.actions); i++ {
		if f.full[i] {
			return true
		}
	}
	return false
}

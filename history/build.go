package history

import (
	"errors"
	"fmt"

	"holdem-recorder/card"
	"holdem-recorder/holdem"
)

// Build replays spec through the engine and returns the resulting hand. Every
// action must be the one the engine expects at that point; the first that is
// not stops the replay with a *ReplayError.
func Build(spec HandSpec) (*holdem.Hand, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}
	return replay(ns)
}

func replay(ns normalizedSpec) (*holdem.Hand, error) {
	h, err := holdem.NewHand(ns.cfg)
	if err != nil {
		return nil, setupError(ReasonInvalidTable, "%v", err)
	}
	for _, p := range ns.seats {
		if err := h.SitDown(p); err != nil {
			reason := ReasonInvalidSeat
			if errors.Is(err, holdem.ErrDuplicateCard) {
				reason = ReasonInvalidHoleCards
			}
			return nil, setupError(reason, "%s: %v", p.Position, err)
		}
	}
	if ns.straddle > 0 {
		if err := h.SetStraddle(ns.straddle); err != nil {
			return nil, setupError(ReasonInvalidStraddle, "%v", err)
		}
	}
	for _, s := range holdem.Streets {
		if len(ns.board[s]) == 0 {
			continue
		}
		if err := h.SetBoard(s, ns.board[s]); err != nil {
			return nil, setupError(ReasonInvalidBoard, "%v", err)
		}
	}

	for i, na := range ns.actions {
		step := int32(i)
		if h.IsHandOver() {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    ReasonNoActionExpected,
				Message:   "hand is already complete; no further actions are allowed",
			}
		}
		cur := h.CurrentStreet()
		if na.street != cur {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    ReasonStreetMismatch,
				Message:   fmt.Sprintf("expected street %s, got %s", cur, na.street),
				Expected:  expectedState(h),
			}
		}
		next, err := h.NextActingPlayer(cur)
		if err != nil {
			return nil, &ReplayError{StepIndex: step, Reason: ReasonActionRejected, Message: err.Error()}
		}
		if next != na.action.Player {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    ReasonOutOfTurn,
				Message:   fmt.Sprintf("expected %s to act, got %s", next, na.action.Player),
				Expected:  expectedState(h),
			}
		}
		if legal, _ := h.LegalActions(next, cur); !containsType(legal, na.action.Type) {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    ReasonIllegalAction,
				Message:   fmt.Sprintf("%s is not legal for %s", na.action.Type, next),
				Expected:  expectedState(h),
			}
		}
		if _, err := h.AppendAction(cur, na.action); err != nil {
			reason := ReasonActionRejected
			if errors.Is(err, holdem.ErrAmountOutOfRange) {
				reason = ReasonAmountOutOfRange
			}
			return nil, &ReplayError{StepIndex: step, Reason: reason, Message: err.Error(), Expected: expectedState(h)}
		}
	}
	return h, nil
}

func expectedState(h *holdem.Hand) *ExpectedState {
	cur := h.CurrentStreet()
	exp := &ExpectedState{
		Street:    cur.String(),
		BetToCall: h.CurrentBetToCall(cur),
		MinRaise:  h.MinRaise(cur),
	}
	if next, err := h.NextActingPlayer(cur); err == nil {
		exp.NextToAct = next.String()
		exp.LegalActions, _ = h.LegalActions(next, cur)
	}
	return exp
}

func containsType(list []holdem.ActionType, t holdem.ActionType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// Export writes h back out as a HandSpec. Actions appear as the engine
// recorded them, so building the result gives an identical hand.
func Export(h *holdem.Hand, title string) HandSpec {
	cfg := h.Config()
	spec := HandSpec{
		Version: SpecVersion,
		Title:   title,
		Table:   TableSpec{SB: cfg.SmallBlind, BB: cfg.BigBlind, Straddle: cfg.Straddle},
		Actions: []ActionSpec{},
	}
	for _, p := range h.Players() {
		spec.Seats = append(spec.Seats, SeatSpec{
			Position: p.Position.String(),
			Stack:    p.Stack,
			IsHero:   p.Hero,
			Hole:     cardStrings(p.HoleCards),
		})
	}

	var board BoardSpec
	if flop := h.Board(holdem.StreetFlop); len(flop) > 0 {
		board.Flop = cardStrings(flop)
	}
	if turn := h.Board(holdem.StreetTurn); len(turn) > 0 {
		s := turn[0].String()
		board.Turn = &s
	}
	if river := h.Board(holdem.StreetRiver); len(river) > 0 {
		s := river[0].String()
		board.River = &s
	}
	if board.Flop != nil || board.Turn != nil || board.River != nil {
		spec.Board = &board
	}

	for _, s := range holdem.Streets {
		for _, a := range h.Actions(s) {
			amount, _ := a.Amount()
			spec.Actions = append(spec.Actions, ActionSpec{
				Street:   s.String(),
				Position: a.Player.String(),
				Type:     a.Type.String(),
				Amount:   amount,
			})
		}
	}
	return spec
}

func cardStrings(cards card.CardList) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

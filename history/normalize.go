package history

import (
	"fmt"
	"strings"

	"holdem-recorder/card"
	"holdem-recorder/holdem"
)

type normalizedAction struct {
	street holdem.Street
	action holdem.Action
}

type normalizedSpec struct {
	title    string
	cfg      holdem.Config
	straddle int64
	seats    []holdem.Player
	board    [4]card.CardList
	actions  []normalizedAction
}

func normalizeSpec(spec HandSpec) (normalizedSpec, error) {
	var out normalizedSpec
	out.title = strings.TrimSpace(spec.Title)

	if spec.Version > SpecVersion {
		return out, setupError(ReasonInvalidTable, "unsupported spec version %d", spec.Version)
	}
	t := spec.Table
	if t.BB <= 0 || t.SB < 0 || t.SB > t.BB {
		return out, setupError(ReasonInvalidTable, "invalid blinds configuration sb=%d bb=%d", t.SB, t.BB)
	}
	if t.Straddle < 0 || (t.Straddle > 0 && t.Straddle <= t.BB) {
		return out, setupError(ReasonInvalidStraddle, "straddle %d must exceed bb %d", t.Straddle, t.BB)
	}
	out.cfg = holdem.Config{SmallBlind: t.SB, BigBlind: t.BB}
	out.straddle = t.Straddle

	if len(spec.Seats) < holdem.MinPlayers || len(spec.Seats) > holdem.MaxPlayers {
		return out, setupError(ReasonInvalidSeats, "between %d and %d seats are required, got %d",
			holdem.MinPlayers, holdem.MaxPlayers, len(spec.Seats))
	}

	seen := make(map[holdem.Position]struct{}, len(spec.Seats))
	heroCount := 0
	for i, seat := range spec.Seats {
		pos, err := holdem.ParsePosition(seat.Position)
		if err != nil {
			return out, setupError(ReasonInvalidSeat, "seat %d: %v", i, err)
		}
		if _, ok := seen[pos]; ok {
			return out, setupError(ReasonDuplicateSeat, "duplicate position %s", pos)
		}
		seen[pos] = struct{}{}
		if seat.Stack < 0 {
			return out, setupError(ReasonInvalidSeat, "seat %d stack must be >= 0", i)
		}
		hole, err := parseHoleCards(seat.Hole)
		if err != nil {
			return out, setupError(ReasonInvalidHoleCards, "seat %s: %v", pos, err)
		}
		if seat.IsHero {
			heroCount++
		}
		out.seats = append(out.seats, holdem.Player{
			Position:  pos,
			Stack:     seat.Stack,
			HoleCards: hole,
			Hero:      seat.IsHero,
		})
	}
	if heroCount > 1 {
		return out, setupError(ReasonInvalidHero, "multiple seats marked as hero")
	}
	if heroCount == 0 {
		out.seats[0].Hero = true
	}

	board, err := parseBoard(spec.Board)
	if err != nil {
		return out, err
	}
	out.board = board

	out.actions = make([]normalizedAction, 0, len(spec.Actions))
	for i, a := range spec.Actions {
		na, err := parseAction(a)
		if err != nil {
			return out, &ReplayError{StepIndex: int32(i), Reason: ReasonInvalidAction, Message: err.Error()}
		}
		if _, ok := seen[na.action.Player]; !ok {
			return out, &ReplayError{StepIndex: int32(i), Reason: ReasonInvalidAction, Message: fmt.Sprintf("%s is not seated", na.action.Player)}
		}
		out.actions = append(out.actions, na)
	}
	return out, nil
}

func parseAction(a ActionSpec) (normalizedAction, error) {
	street, err := holdem.ParseStreet(a.Street)
	if err != nil {
		return normalizedAction{}, err
	}
	pos, err := holdem.ParsePosition(a.Position)
	if err != nil {
		return normalizedAction{}, err
	}
	typ, err := holdem.ParseActionType(a.Type)
	if err != nil {
		return normalizedAction{}, err
	}
	amount := a.Amount
	if !typ.CarriesAmount() {
		amount = 0
	}
	action, err := holdem.NewAction(pos, typ, amount)
	if err != nil {
		return normalizedAction{}, err
	}
	return normalizedAction{street: street, action: action}, nil
}

func parseHoleCards(hole []string) (card.CardList, error) {
	if len(hole) == 0 {
		return nil, nil
	}
	if len(hole) != 2 {
		return nil, fmt.Errorf("hole cards must contain exactly 2 cards")
	}
	out := make(card.CardList, 2)
	for i := range hole {
		c, err := card.Parse(hole[i])
		if err != nil {
			return nil, fmt.Errorf("hole[%d]: %w", i, err)
		}
		out[i] = c
	}
	if out[0] == out[1] {
		return nil, fmt.Errorf("hole cards cannot duplicate")
	}
	return out, nil
}

func parseBoard(board *BoardSpec) ([4]card.CardList, error) {
	var out [4]card.CardList
	if board == nil {
		return out, nil
	}
	if len(board.Flop) != 0 && len(board.Flop) != 3 {
		return out, setupError(ReasonInvalidBoard, "flop must be either empty or 3 cards")
	}
	for i, raw := range board.Flop {
		c, err := card.Parse(raw)
		if err != nil {
			return out, setupError(ReasonInvalidBoard, "flop[%d]: %v", i, err)
		}
		out[holdem.StreetFlop] = append(out[holdem.StreetFlop], c)
	}
	for _, street := range []holdem.Street{holdem.StreetTurn, holdem.StreetRiver} {
		raw := board.Turn
		if street == holdem.StreetRiver {
			raw = board.River
		}
		if raw == nil {
			continue
		}
		c, err := card.Parse(*raw)
		if err != nil {
			return out, setupError(ReasonInvalidBoard, "%s: %v", street, err)
		}
		out[street] = card.CardList{c}
	}
	if (out[holdem.StreetRiver] != nil && out[holdem.StreetTurn] == nil) ||
		(out[holdem.StreetTurn] != nil && out[holdem.StreetFlop] == nil) {
		return out, setupError(ReasonInvalidBoard, "board streets must be dealt in order")
	}
	return out, nil
}

package holdem

import (
	"fmt"
	"strings"
)

// Position is a seat relative to the button. At most one player per position.
type Position byte

const (
	PositionBTN Position = iota
	PositionSB
	PositionBB
	PositionUTG
	PositionUTG1
	PositionUTG2
	PositionLJ
	PositionHJ
	PositionCO

	positionCount = 9
)

var PositionDictionary = map[Position]string{
	PositionBTN:  "BTN",
	PositionSB:   "SB",
	PositionBB:   "BB",
	PositionUTG:  "UTG",
	PositionUTG1: "UTG+1",
	PositionUTG2: "UTG+2",
	PositionLJ:   "LJ",
	PositionHJ:   "HJ",
	PositionCO:   "CO",
}

// PreflopOrder is the acting order before the flop; BB acts last absent a raise.
var PreflopOrder = []Position{
	PositionUTG, PositionUTG1, PositionUTG2, PositionLJ, PositionHJ, PositionCO,
	PositionBTN, PositionSB, PositionBB,
}

// PostflopOrder is the acting order on flop, turn and river.
var PostflopOrder = []Position{
	PositionSB, PositionBB, PositionUTG, PositionUTG1, PositionUTG2, PositionLJ,
	PositionHJ, PositionCO, PositionBTN,
}

func (p Position) Valid() bool { return p < positionCount }

func (p Position) String() string {
	if s, ok := PositionDictionary[p]; ok {
		return s
	}
	return fmt.Sprintf("Position(%d)", byte(p))
}

func ParsePosition(raw string) (Position, error) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	switch norm {
	case "UTG1":
		norm = "UTG+1"
	case "UTG2":
		norm = "UTG+2"
	case "D", "DEALER", "BUTTON":
		norm = "BTN"
	}
	for p, name := range PositionDictionary {
		if name == norm {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown position %q", raw)
}

func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", byte(p))
	}
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Street is one of the four betting rounds.
type Street byte

const (
	StreetPreflop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver

	streetCount = 4
)

var StreetDictionary = map[Street]string{
	StreetPreflop: "preflop",
	StreetFlop:    "flop",
	StreetTurn:    "turn",
	StreetRiver:   "river",
}

// Streets lists the streets in play order.
var Streets = []Street{StreetPreflop, StreetFlop, StreetTurn, StreetRiver}

func (s Street) Valid() bool { return s < streetCount }

func (s Street) String() string {
	if v, ok := StreetDictionary[s]; ok {
		return v
	}
	return fmt.Sprintf("Street(%d)", byte(s))
}

// BoardSize is the number of community cards dealt on the street.
func (s Street) BoardSize() int {
	switch s {
	case StreetFlop:
		return 3
	case StreetTurn, StreetRiver:
		return 1
	}
	return 0
}

func (s Street) order() []Position {
	if s == StreetPreflop {
		return PreflopOrder
	}
	return PostflopOrder
}

func ParseStreet(raw string) (Street, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	for s, name := range StreetDictionary {
		if name == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown street %q", raw)
}

func (s Street) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid street %d", byte(s))
	}
	return []byte(s.String()), nil
}

func (s *Street) UnmarshalText(b []byte) error {
	v, err := ParseStreet(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ActionType 0-NONE 1-CHECK 2-BET 3-CALL 4-RAISE 5-FOLD 6-ALLIN
type ActionType byte

const (
	PlayerActionTypeNone  ActionType = 0
	PlayerActionTypeCheck ActionType = 1
	PlayerActionTypeBet   ActionType = 2
	PlayerActionTypeCall  ActionType = 3
	PlayerActionTypeRaise ActionType = 4
	PlayerActionTypeFold  ActionType = 5
	PlayerActionTypeAllin ActionType = 6
)

var PlayerActionTypeDictionary = map[ActionType]string{
	PlayerActionTypeNone:  "none",
	PlayerActionTypeCheck: "check",
	PlayerActionTypeBet:   "bet",
	PlayerActionTypeCall:  "call",
	PlayerActionTypeRaise: "raise",
	PlayerActionTypeFold:  "fold",
	PlayerActionTypeAllin: "all-in",
}

func (t ActionType) String() string {
	if v, ok := PlayerActionTypeDictionary[t]; ok {
		return v
	}
	return fmt.Sprintf("ActionType(%d)", byte(t))
}

// CarriesAmount reports whether actions of this type record a street total.
func (t ActionType) CarriesAmount() bool {
	switch t {
	case PlayerActionTypeBet, PlayerActionTypeCall, PlayerActionTypeRaise, PlayerActionTypeAllin:
		return true
	}
	return false
}

func ParseActionType(raw string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "check":
		return PlayerActionTypeCheck, nil
	case "bet":
		return PlayerActionTypeBet, nil
	case "call":
		return PlayerActionTypeCall, nil
	case "raise":
		return PlayerActionTypeRaise, nil
	case "fold":
		return PlayerActionTypeFold, nil
	case "all-in", "allin", "all_in":
		return PlayerActionTypeAllin, nil
	}
	return PlayerActionTypeNone, fmt.Errorf("unsupported action type %q", raw)
}

func (t ActionType) MarshalText() ([]byte, error) {
	if t == PlayerActionTypeNone || t > PlayerActionTypeAllin {
		return nil, fmt.Errorf("invalid action type %d", byte(t))
	}
	return []byte(t.String()), nil
}

func (t *ActionType) UnmarshalText(b []byte) error {
	v, err := ParseActionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

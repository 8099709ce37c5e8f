package holdem

import (
	"encoding/json"
	"fmt"
)

// Action is one entry of a street's action log.
//
// Only bet, call, raise and all-in carry an amount, and that amount is the
// player's total commitment on the street so far, not an increment.
type Action struct {
	Player Position
	Type   ActionType

	amount int64
}

func Check(p Position) Action { return Action{Player: p, Type: PlayerActionTypeCheck} }
func Fold(p Position) Action  { return Action{Player: p, Type: PlayerActionTypeFold} }

func Bet(p Position, total int64) Action {
	return Action{Player: p, Type: PlayerActionTypeBet, amount: total}
}

func Call(p Position, total int64) Action {
	return Action{Player: p, Type: PlayerActionTypeCall, amount: total}
}

func Raise(p Position, total int64) Action {
	return Action{Player: p, Type: PlayerActionTypeRaise, amount: total}
}

func AllIn(p Position, total int64) Action {
	return Action{Player: p, Type: PlayerActionTypeAllin, amount: total}
}

// NewAction validates a loosely typed action, as received from a form or a file.
func NewAction(p Position, t ActionType, amount int64) (Action, error) {
	if !p.Valid() {
		return Action{}, fmt.Errorf("%w: invalid position %d", ErrInvalidAction, byte(p))
	}
	switch t {
	case PlayerActionTypeCheck, PlayerActionTypeFold:
		return Action{Player: p, Type: t}, nil
	case PlayerActionTypeBet, PlayerActionTypeCall, PlayerActionTypeRaise, PlayerActionTypeAllin:
		if amount < 0 {
			return Action{}, fmt.Errorf("%w: negative amount %d", ErrAmountOutOfRange, amount)
		}
		return Action{Player: p, Type: t, amount: amount}, nil
	}
	return Action{}, fmt.Errorf("%w: unsupported type %d", ErrInvalidAction, byte(t))
}

// Amount returns the street total for money-carrying actions.
func (a Action) Amount() (int64, bool) {
	if !a.Type.CarriesAmount() {
		return 0, false
	}
	return a.amount, true
}

func (a Action) String() string {
	if amt, ok := a.Amount(); ok {
		return fmt.Sprintf("%s %s %d", a.Player, a.Type, amt)
	}
	return fmt.Sprintf("%s %s", a.Player, a.Type)
}

type actionJSON struct {
	Player Position   `json:"player"`
	Type   ActionType `json:"type"`
	Amount *int64     `json:"amount,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	out := actionJSON{Player: a.Player, Type: a.Type}
	if amt, ok := a.Amount(); ok {
		out.Amount = &amt
	}
	return json.Marshal(out)
}

func (a *Action) UnmarshalJSON(b []byte) error {
	var in actionJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	var amount int64
	if in.Amount != nil {
		amount = *in.Amount
	}
	parsed, err := NewAction(in.Player, in.Type, amount)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

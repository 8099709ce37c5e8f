package history

import (
	"fmt"

	"holdem-recorder/holdem"
)

// Reasons reported in ReplayError.
const (
	ReasonInvalidTable     = "invalid_table"
	ReasonInvalidSeats     = "invalid_seats"
	ReasonInvalidSeat      = "invalid_seat"
	ReasonDuplicateSeat    = "duplicate_position"
	ReasonInvalidHero      = "invalid_hero"
	ReasonInvalidHoleCards = "invalid_hole_cards"
	ReasonInvalidBoard     = "invalid_board"
	ReasonInvalidStraddle  = "invalid_straddle"
	ReasonInvalidAction    = "invalid_action"
	ReasonNoActionExpected = "no_action_expected"
	ReasonStreetMismatch   = "street_mismatch"
	ReasonOutOfTurn        = "out_of_turn"
	ReasonIllegalAction    = "illegal_action"
	ReasonAmountOutOfRange = "amount_out_of_range"
	ReasonActionRejected   = "action_rejected"
	ReasonInvalidShareCode = "invalid_share_code"
)

// ReplayError explains why a HandSpec could not be rebuilt. StepIndex is the
// offending entry of Actions, or -1 for problems outside the action log.
type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState is what the engine would have accepted at the failing step.
type ExpectedState struct {
	Street       string              `json:"street,omitempty"`
	NextToAct    string              `json:"next_to_act,omitempty"`
	LegalActions []holdem.ActionType `json:"legal_actions,omitempty"`
	BetToCall    int64               `json:"bet_to_call,omitempty"`
	MinRaise     int64               `json:"min_raise,omitempty"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}

func setupError(reason, format string, args ...any) *ReplayError {
	return &ReplayError{StepIndex: -1, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

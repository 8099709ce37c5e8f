package holdem

import "errors"

var (
	ErrInvalidAction       = errors.New("invalid action")
	ErrAmountOutOfRange    = errors.New("amount out of range")
	ErrIllegalRemoval      = errors.New("illegal removal")
	ErrStaleQuery          = errors.New("street already complete")
	ErrOutOfTurn           = errors.New("action out of turn")
	ErrHandInProgress      = errors.New("hand in progress")
	ErrPositionTaken       = errors.New("position already taken")
	ErrUnknownPlayer       = errors.New("no player at position")
	ErrInvalidBoard        = errors.New("invalid board")
	ErrDuplicateCard       = errors.New("card already in use")
	ErrStraddleNotEligible = errors.New("straddle not eligible")
	ErrTableNotReady       = errors.New("table not ready")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }

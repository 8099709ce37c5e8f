package holdem

import "fmt"

const (
	MinPlayers = 2
	MaxPlayers = positionCount

	// DefaultStackBigBlinds is the starting depth for a freshly seated player.
	DefaultStackBigBlinds = 100
)

type Config struct {
	SmallBlind int64 `json:"sb"`
	BigBlind   int64 `json:"bb"`
	// Straddle is posted by UTG; 0 disables it.
	Straddle int64 `json:"straddle,omitempty"`
}

func (c Config) validate() error {
	if c.SmallBlind < 0 || c.BigBlind <= 0 || c.SmallBlind > c.BigBlind {
		return fmt.Errorf("invalid blinds: sb=%d bb=%d", c.SmallBlind, c.BigBlind)
	}
	if c.Straddle < 0 {
		return fmt.Errorf("straddle must be >= 0")
	}
	if c.Straddle > 0 && c.Straddle <= c.BigBlind {
		return fmt.Errorf("%w: straddle %d must exceed bb %d", ErrStraddleNotEligible, c.Straddle, c.BigBlind)
	}
	return nil
}

// DefaultStack is the stack a player gets when seated without a custom amount.
func (c Config) DefaultStack() int64 {
	return c.BigBlind * DefaultStackBigBlinds
}

// closing returns the position whose check ends an unraised preflop round
// and the amount it posted.
func (c Config) closing() (Position, int64) {
	if c.Straddle > 0 {
		return PositionUTG, c.Straddle
	}
	return PositionBB, c.BigBlind
}

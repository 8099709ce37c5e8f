package holdem

import "holdem-recorder/card"

// Player is a seated player. Stack is the amount brought into the hand; what
// remains at any point is derived from the action log, never stored.
type Player struct {
	Position  Position      `json:"position"`
	Stack     int64         `json:"stack"`
	HoleCards card.CardList `json:"hole_cards,omitempty"`
	Hero      bool          `json:"hero,omitempty"`
}

func (p Player) clone() Player {
	p.HoleCards = append(card.CardList(nil), p.HoleCards...)
	return p
}

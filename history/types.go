package history

// SpecVersion is written into every exported HandSpec.
const SpecVersion = 1

// HandSpec is a recorded hand in portable form: stakes, seats, board and the
// action log. Positions, streets, action types and cards are plain strings
// ("UTG+1", "flop", "raise", "Ah").
type HandSpec struct {
	Version int          `json:"version,omitempty"`
	Title   string       `json:"title,omitempty"`
	Table   TableSpec    `json:"table"`
	Seats   []SeatSpec   `json:"seats"`
	Board   *BoardSpec   `json:"board,omitempty"`
	Actions []ActionSpec `json:"actions"`
}

type TableSpec struct {
	SB       int64 `json:"sb"`
	BB       int64 `json:"bb"`
	Straddle int64 `json:"straddle,omitempty"`
}

type SeatSpec struct {
	Position string   `json:"position"`
	Stack    int64    `json:"stack,omitempty"`
	IsHero   bool     `json:"is_hero,omitempty"`
	Hole     []string `json:"hole,omitempty"`
}

type BoardSpec struct {
	Flop  []string `json:"flop,omitempty"`
	Turn  *string  `json:"turn,omitempty"`
	River *string  `json:"river,omitempty"`
}

// ActionSpec is one log entry. Amount is the player's street total and is
// ignored for check and fold.
type ActionSpec struct {
	Street   string `json:"street"`
	Position string `json:"position"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount,omitempty"`
}

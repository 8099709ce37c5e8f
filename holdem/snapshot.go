package holdem

import "holdem-recorder/card"

type PlayerView struct {
	Position       Position      `json:"position"`
	Hero           bool          `json:"hero,omitempty"`
	Stack          int64         `json:"stack"`
	EffectiveStack int64         `json:"effective_stack"`
	Committed      int64         `json:"committed"`
	Folded         bool          `json:"folded,omitempty"`
	AllIn          bool          `json:"all_in,omitempty"`
	HoleCards      card.CardList `json:"hole_cards,omitempty"`
}

type StreetView struct {
	Street        Street             `json:"street"`
	Board         card.CardList      `json:"board,omitempty"`
	Actions       []Action           `json:"actions"`
	PotEntering   int64              `json:"pot_entering"`
	Contributions map[Position]int64 `json:"contributions"`
	Complete      bool               `json:"complete"`
}

// View is every query answered at once, for a UI that redraws from scratch.
type View struct {
	Config  Config       `json:"config"`
	Players []PlayerView `json:"players"`
	Streets []StreetView `json:"streets"`

	CurrentStreet Street       `json:"current_street"`
	NextToAct     *Position    `json:"next_to_act,omitempty"`
	LegalActions  []ActionType `json:"legal_actions,omitempty"`
	BetLimits     *Limits      `json:"bet_limits,omitempty"`
	RaiseLimits   *Limits      `json:"raise_limits,omitempty"`
	BetToCall     int64        `json:"bet_to_call"`
	MinBet        int64        `json:"min_bet"`
	MinRaise      int64        `json:"min_raise"`

	NeedToRespond    []Position `json:"need_to_respond,omitempty"`
	AllPlayersAllIn  bool       `json:"all_players_all_in"`
	ReadyForShowdown bool       `json:"ready_for_showdown"`
	HandOver         bool       `json:"hand_over"`

	TotalPot     int64         `json:"total_pot"`
	SidePots     []Pot         `json:"side_pots,omitempty"`
	UncalledBet  int64         `json:"uncalled_bet,omitempty"`
	UncalledTo   *Position     `json:"uncalled_to,omitempty"`
	UsedCards    card.CardList `json:"used_cards,omitempty"`
}

func (h *Hand) View() View {
	cur := h.CurrentStreet()
	v := View{
		Config:           h.cfg,
		CurrentStreet:    cur,
		BetToCall:        h.CurrentBetToCall(cur),
		MinBet:           h.MinBet(cur),
		MinRaise:         h.MinRaise(cur),
		NeedToRespond:    h.PlayersWhoNeedToRespond(cur),
		AllPlayersAllIn:  h.IsAllPlayersAllIn(cur),
		ReadyForShowdown: h.ReadyForShowdown(),
		HandOver:         h.IsHandOver(),
		TotalPot:         h.TotalPot(StreetRiver),
		SidePots:         h.SidePots(StreetRiver),
		UsedCards:        h.UsedCards(),
	}

	committed := h.StreetContributions(cur)
	for _, p := range h.Players() {
		v.Players = append(v.Players, PlayerView{
			Position:       p.Position,
			Hero:           p.Hero,
			Stack:          p.Stack,
			EffectiveStack: h.EffectiveStack(p.Position, cur),
			Committed:      committed[p.Position],
			Folded:         h.hasFolded(p.Position, StreetRiver),
			AllIn:          h.IsPlayerAllIn(p.Position, cur),
			HoleCards:      p.HoleCards,
		})
	}

	for _, s := range Streets {
		v.Streets = append(v.Streets, StreetView{
			Street:        s,
			Board:         h.Board(s),
			Actions:       h.Actions(s),
			PotEntering:   h.PotEnteringStreet(s),
			Contributions: h.StreetContributions(s),
			Complete:      h.IsStreetComplete(s),
		})
	}

	if !v.HandOver {
		if next, err := h.NextActingPlayer(cur); err == nil {
			v.NextToAct = &next
			v.LegalActions, _ = h.LegalActions(next, cur)
			if lim, err := h.BetLimits(PlayerActionTypeBet, next, cur); err == nil && containsActionType(v.LegalActions, PlayerActionTypeBet) {
				v.BetLimits = &lim
			}
			if lim, err := h.BetLimits(PlayerActionTypeRaise, next, cur); err == nil && containsActionType(v.LegalActions, PlayerActionTypeRaise) {
				v.RaiseLimits = &lim
			}
		}
	}

	if pos, amt := h.UncalledBet(StreetRiver); amt > 0 {
		v.UncalledBet = amt
		v.UncalledTo = &pos
	}
	return v
}

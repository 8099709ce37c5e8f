package history

import (
	"strings"

	"holdem-recorder/card"
	"holdem-recorder/holdem"
	"holdem-recorder/locale"
)

// Transcript renders h as a plain-text hand history in the bundle's language.
func Transcript(h *holdem.Hand, title string, b *locale.Bundle) string {
	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	cfg := h.Config()
	if title != "" {
		line(b.T("transcript.title", title))
	}
	if cfg.Straddle > 0 {
		line(b.T("transcript.header_straddle", b.Chips(cfg.SmallBlind), b.Chips(cfg.BigBlind), b.Chips(cfg.Straddle)))
	} else {
		line(b.T("transcript.header", b.Chips(cfg.SmallBlind), b.Chips(cfg.BigBlind)))
	}

	players := h.Players()
	for _, p := range players {
		key := "transcript.seat"
		if p.Hero {
			key = "transcript.seat_hero"
		}
		line(b.T(key, p.Position, b.Chips(p.Stack)))
	}
	for _, p := range players {
		if len(p.HoleCards) == 2 {
			line(b.T("transcript.hole_cards", p.Position, p.HoleCards.String()))
		}
	}

	var board card.CardList
	for _, s := range holdem.Streets {
		acts := h.Actions(s)
		board = append(board, h.Board(s)...)
		if s != holdem.StreetPreflop && len(acts) == 0 && len(h.Board(s)) == 0 {
			continue
		}
		name := b.T("street." + s.String())
		pot := b.Chips(h.PotEnteringStreet(s))
		if len(board) > 0 {
			line(b.T("transcript.street_board", name, board.String(), pot))
		} else {
			line(b.T("transcript.street", name, pot))
		}
		for _, a := range acts {
			line(actionLine(a, b))
		}
	}

	pos, uncalled := h.UncalledBet(holdem.StreetRiver)
	if uncalled > 0 {
		line(b.T("transcript.uncalled", b.Chips(uncalled), pos))
	}

	switch active := h.ActivePlayers(holdem.StreetRiver); {
	case h.ReadyForShowdown():
		line(b.T("transcript.showdown"))
	case len(active) == 1:
		line(b.T("transcript.uncontested", active[0]))
	default:
		if next, err := h.NextActingPlayer(h.CurrentStreet()); err == nil {
			line(b.T("transcript.in_progress", next))
		}
	}

	line(b.T("transcript.total_pot", b.Chips(h.TotalPot(holdem.StreetRiver)-uncalled)))
	if pots := h.SidePots(holdem.StreetRiver); len(pots) > 1 {
		for i, p := range pots {
			if i == 0 {
				line(b.T("transcript.main_pot", b.Chips(p.Amount), joinPositions(p.Eligible)))
				continue
			}
			line(b.T("transcript.side_pot", i, b.Chips(p.Amount), joinPositions(p.Eligible)))
		}
	}
	return sb.String()
}

func actionLine(a holdem.Action, b *locale.Bundle) string {
	key := "action." + strings.ReplaceAll(a.Type.String(), "-", "")
	if amount, ok := a.Amount(); ok {
		return b.T(key, a.Player, b.Chips(amount))
	}
	return b.T(key, a.Player)
}

func joinPositions(list []holdem.Position) string {
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

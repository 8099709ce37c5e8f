package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"holdem-recorder/history"
	"holdem-recorder/holdem"
	"holdem-recorder/locale"
)

// render lays out the seats table, the board and the transcript.
func render(h *holdem.Hand, title string, b *locale.Bundle) string {
	v := h.View()

	boxTitle := "|HAND|"
	if title != "" {
		boxTitle = "|" + strings.ToUpper(title) + "|"
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(2).WithTopPadding(1).WithBottomPadding(1)
	transcript := pbox.WithTitle(pterm.LightYellow(boxTitle)).WithTitleTopCenter().Sprint(
		strings.TrimRight(history.Transcript(h, title, b), "\n"))

	panels := [][]pterm.Panel{
		{{Data: renderSeats(v, b)}, {Data: renderStatus(v, b)}},
		{{Data: transcript}},
	}
	out, err := pterm.DefaultPanel.WithPanels(panels).Srender()
	if err != nil {
		return transcript
	}
	return out
}

func renderSeats(v holdem.View, b *locale.Bundle) string {
	data := pterm.TableData{{"Seat", "Stack", "Left", "In pot", "Cards", "Status"}}
	for _, p := range v.Players {
		seat := p.Position.String()
		if p.Hero {
			seat = pterm.LightCyan(seat + "*")
		}
		status := pterm.LightGreen("active")
		switch {
		case p.Folded:
			status = pterm.LightRed("folded")
		case p.AllIn:
			status = pterm.LightMagenta("all-in")
		}
		cards := "-"
		if len(p.HoleCards) > 0 {
			cards = pterm.BgGreen.Sprint(p.HoleCards.String())
		}
		data = append(data, []string{
			seat,
			b.Chips(p.Stack),
			b.Chips(p.EffectiveStack),
			b.Chips(p.Committed),
			cards,
			status,
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Sprint(err)
	}
	return out
}

func renderStatus(v holdem.View, b *locale.Bundle) string {
	var sb strings.Builder
	var board []string
	for _, s := range v.Streets {
		if len(s.Board) > 0 {
			board = append(board, s.Board.String())
		}
	}
	if len(board) > 0 {
		sb.WriteString(pterm.BgGreen.Sprint(strings.Join(board, " | ")))
		sb.WriteByte('\n')
	}
	sb.WriteString(b.T("transcript.total_pot", b.Chips(v.TotalPot)))
	sb.WriteByte('\n')
	for i, p := range v.SidePots {
		if i == 0 {
			sb.WriteString(b.T("transcript.main_pot", b.Chips(p.Amount), positions(p.Eligible)))
		} else {
			sb.WriteString(b.T("transcript.side_pot", i, b.Chips(p.Amount), positions(p.Eligible)))
		}
		sb.WriteByte('\n')
	}
	switch {
	case v.HandOver:
		sb.WriteString(pterm.LightGreen("hand complete"))
	case v.NextToAct != nil:
		sb.WriteString(b.T("transcript.in_progress", *v.NextToAct))
		sb.WriteString(fmt.Sprintf(" %v", v.LegalActions))
	}
	return sb.String()
}

func positions(list []holdem.Position) string {
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

func describeReplayError(e *history.ReplayError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "reason: %s\n", e.Reason)
	if e.StepIndex >= 0 {
		fmt.Fprintf(&sb, "action #%d\n", e.StepIndex+1)
	}
	if exp := e.Expected; exp != nil {
		fmt.Fprintf(&sb, "expected street %s", exp.Street)
		if exp.NextToAct != "" {
			fmt.Fprintf(&sb, ", %s to act %v", exp.NextToAct, exp.LegalActions)
		}
		if exp.BetToCall > 0 {
			fmt.Fprintf(&sb, ", %d to call", exp.BetToCall)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Package homegame tracks buy-ins and cash-outs of a private game so the
// host can see who owes whom at the end of the night.
package homegame

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CodeLength is the length of a game code.
const CodeLength = 6

// codeAlphabet leaves out characters that are easy to misread (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

var (
	ErrInvalidCode      = errors.New("invalid game code")
	ErrInvalidName      = errors.New("invalid player name")
	ErrPlayerExists     = errors.New("player already in game")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAlreadyCashedOut = errors.New("player already cashed out")
)

type BuyIn struct {
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

type Player struct {
	Name    string           `json:"name"`
	BuyIns  []BuyIn          `json:"buy_ins"`
	CashOut *decimal.Decimal `json:"cash_out,omitempty"`
}

// TotalBuyIn is the sum of the player's buy-ins.
func (p Player) TotalBuyIn() decimal.Decimal {
	total := decimal.Zero
	for _, b := range p.BuyIns {
		total = total.Add(b.Amount)
	}
	return total
}

// Net is cash-out minus buy-ins. A player still at the table counts as
// having cashed out nothing.
func (p Player) Net() decimal.Decimal {
	out := decimal.Zero
	if p.CashOut != nil {
		out = *p.CashOut
	}
	return out.Sub(p.TotalBuyIn())
}

type Game struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	Players   []Player  `json:"players"`
}

// New starts an empty game with a fresh code.
func New(now time.Time) (*Game, error) {
	code, err := NewCode()
	if err != nil {
		return nil, err
	}
	return &Game{Code: code, CreatedAt: now.UTC(), Players: []Player{}}, nil
}

// NewCode returns a random game code.
func NewCode() (string, error) {
	return newCode(rand.Reader)
}

// newCode draws each letter uniformly: bytes at or above the largest multiple
// of the alphabet size are skipped.
func newCode(src io.Reader) (string, error) {
	limit := 256 - 256%len(codeAlphabet)
	out := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength)
	for len(out) < CodeLength {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("generate game code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == CodeLength {
				break
			}
		}
	}
	return string(out), nil
}

// NormalizeCode upper-cases a user-typed code and checks its shape.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != CodeLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, raw)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidCode, raw)
		}
	}
	return code, nil
}

// ParseAmount reads a money amount such as "20" or "12.50". Amounts are kept
// to cents.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d)
	}
	return d.Round(2), nil
}

func (g *Game) find(name string) int {
	for i := range g.Players {
		if strings.EqualFold(g.Players[i].Name, name) {
			return i
		}
	}
	return -1
}

func (g *Game) Player(name string) (Player, bool) {
	i := g.find(strings.TrimSpace(name))
	if i < 0 {
		return Player{}, false
	}
	return g.Players[i], true
}

// AddPlayer joins name to the game with an initial buy-in.
func (g *Game) AddPlayer(name string, amount decimal.Decimal, at time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if g.find(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrPlayerExists, name)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: buy-in must be positive", ErrInvalidAmount)
	}
	g.Players = append(g.Players, Player{
		Name:   name,
		BuyIns: []BuyIn{{Amount: amount, Timestamp: at.UTC()}},
	})
	return nil
}

// Rebuy adds another buy-in for a player still in the game.
func (g *Game) Rebuy(name string, amount decimal.Decimal, at time.Time) error {
	i := g.find(strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	if g.Players[i].CashOut != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyCashedOut, name)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: buy-in must be positive", ErrInvalidAmount)
	}
	g.Players[i].BuyIns = append(g.Players[i].BuyIns, BuyIn{Amount: amount, Timestamp: at.UTC()})
	return nil
}

// CashOut records what a player left with. Zero is allowed.
func (g *Game) CashOut(name string, amount decimal.Decimal) error {
	i := g.find(strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	if g.Players[i].CashOut != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyCashedOut, name)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: cash-out must be >= 0", ErrInvalidAmount)
	}
	out := amount
	g.Players[i].CashOut = &out
	return nil
}

// UndoCashOut puts a player back at the table.
func (g *Game) UndoCashOut(name string) error {
	i := g.find(strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	g.Players[i].CashOut = nil
	return nil
}

// BankBalance is what the bank still holds: all buy-ins minus all cash-outs.
// Zero once everyone has cashed out means the books balance.
func (g *Game) BankBalance() decimal.Decimal {
	balance := decimal.Zero
	for _, p := range g.Players {
		balance = balance.Add(p.TotalBuyIn())
		if p.CashOut != nil {
			balance = balance.Sub(*p.CashOut)
		}
	}
	return balance
}

// Settled reports whether every player has cashed out and the bank is empty.
func (g *Game) Settled() bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, p := range g.Players {
		if p.CashOut == nil {
			return false
		}
	}
	return g.BankBalance().IsZero()
}

// Result is one line of the end-of-night summary.
type Result struct {
	Name    string          `json:"name"`
	BuyIn   decimal.Decimal `json:"buy_in"`
	CashOut decimal.Decimal `json:"cash_out"`
	Net     decimal.Decimal `json:"net"`
	Playing bool            `json:"playing"`
}

// Results lists every player's totals in join order.
func (g *Game) Results() []Result {
	out := make([]Result, 0, len(g.Players))
	for _, p := range g.Players {
		r := Result{Name: p.Name, BuyIn: p.TotalBuyIn(), CashOut: decimal.Zero, Net: p.Net(), Playing: p.CashOut == nil}
		if p.CashOut != nil {
			r.CashOut = *p.CashOut
		}
		out = append(out, r)
	}
	return out
}

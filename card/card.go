package card

import (
	"fmt"
	"strings"
)

// Card is a single playing card.
//
// High nibble holds the suit (0:Spade, 1:Heart, 2:Club, 3:Diamond),
// low nibble the rank (1:A, 2..9, 10:T, 11:J, 12:Q, 13:K).
type Card byte

const CardInvalid Card = 0

const rankChars = "A23456789TJQK"

// New builds a card from suit and rank (1..13, ace low).
func New(s Suit, rank byte) (Card, error) {
	if s > Diamond {
		return CardInvalid, fmt.Errorf("invalid suit %d", s)
	}
	if rank < 1 || rank > 13 {
		return CardInvalid, fmt.Errorf("invalid rank %d", rank)
	}
	return Card(byte(s)<<4 | rank), nil
}

// Valid reports whether c encodes one of the 52 cards.
func (c Card) Valid() bool {
	r := c.Rank()
	return c.Suit() <= Diamond && r >= 1 && r <= 13
}

// String returns the two-character form used in hand histories, e.g. "As", "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()-1]) + c.Suit().Letter()
}

// Pretty renders the rank followed by the suit symbol.
func (c Card) Pretty() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()-1]) + c.Suit().String()
}

// Rank returns 1-13 (A=1, K=13).
func (c Card) Rank() byte {
	return byte(c & 0x0F)
}

func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card 0x%02x", byte(c))
	}
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse converts strings such as "As", "td" or "10h" to a Card.
func Parse(cardStr string) (Card, error) {
	cardStr = strings.TrimSpace(cardStr)
	if len(cardStr) < 2 {
		return CardInvalid, fmt.Errorf("invalid card string: %q", cardStr)
	}

	var suit Suit
	switch cardStr[len(cardStr)-1] {
	case 's', 'S':
		suit = Spade
	case 'h', 'H':
		suit = Heart
	case 'c', 'C':
		suit = Club
	case 'd', 'D':
		suit = Diamond
	default:
		return CardInvalid, fmt.Errorf("invalid suit: %c", cardStr[len(cardStr)-1])
	}

	rankStr := strings.ToUpper(cardStr[:len(cardStr)-1])
	if rankStr == "10" {
		rankStr = "T"
	}
	idx := strings.Index(rankChars, rankStr)
	if len(rankStr) != 1 || idx < 0 {
		return CardInvalid, fmt.Errorf("invalid rank: %s", rankStr)
	}
	return New(suit, byte(idx+1))
}

// ParseList parses a whitespace or comma separated list ("Ah 7d 2c").
func ParseList(raw string) (CardList, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' })
	out := make(CardList, 0, len(fields))
	for i, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("card[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Deck returns the 52 cards ordered by suit then rank.
func Deck() CardList {
	out := make(CardList, 0, 52)
	for s := Spade; s <= Diamond; s++ {
		for r := byte(1); r <= 13; r++ {
			out = append(out, Card(byte(s)<<4|r))
		}
	}
	return out
}

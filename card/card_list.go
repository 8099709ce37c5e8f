package card

import "strings"

type CardList []Card

func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) Contains(c Card) bool {
	for _, cc := range ds {
		if cc == c {
			return true
		}
	}
	return false
}

// Without returns the cards of ds that are not in exclude, keeping order.
func (ds CardList) Without(exclude CardList) CardList {
	out := make(CardList, 0, len(ds))
	for _, c := range ds {
		if !exclude.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// Duplicate returns the first card that appears twice, if any.
func (ds CardList) Duplicate() (Card, bool) {
	seen := make(map[Card]struct{}, len(ds))
	for _, c := range ds {
		if _, ok := seen[c]; ok {
			return c, true
		}
		seen[c] = struct{}{}
	}
	return CardInvalid, false
}

func (ds CardList) Bytes() []byte {
	out := make([]byte, 0, len(ds))
	for _, c := range ds {
		out = append(out, byte(c))
	}
	return out
}

// FromBytes is the inverse of Bytes; invalid cards are rejected by the caller via Valid.
func FromBytes(b []byte) CardList {
	out := make(CardList, 0, len(b))
	for _, v := range b {
		out = append(out, Card(v))
	}
	return out
}

func (ds CardList) String() string {
	parts := make([]string, 0, len(ds))
	for _, c := range ds {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

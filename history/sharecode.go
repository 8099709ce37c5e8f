package history

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"holdem-recorder/card"
	"holdem-recorder/holdem"
)

// Share code field numbers. The layout is a protobuf message so that fields
// can be added without breaking codes already handed out.
const (
	fieldVersion  protowire.Number = 1
	fieldTitle    protowire.Number = 2
	fieldSB       protowire.Number = 3
	fieldBB       protowire.Number = 4
	fieldStraddle protowire.Number = 5
	fieldSeat     protowire.Number = 6
	fieldBoard    protowire.Number = 7
	fieldAction   protowire.Number = 8

	seatPosition protowire.Number = 1
	seatStack    protowire.Number = 2
	seatHero     protowire.Number = 3
	seatHole     protowire.Number = 4

	actionStreet   protowire.Number = 1
	actionPosition protowire.Number = 2
	actionType     protowire.Number = 3
	actionAmount   protowire.Number = 4
)

var shareEncoding = base64.RawURLEncoding

// EncodeShareCode packs spec into a URL-safe string. The spec is validated
// and replayed first; an invalid hand has no share code.
func EncodeShareCode(spec HandSpec) (string, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return "", err
	}
	if _, err := replay(ns); err != nil {
		return "", err
	}

	var b []byte
	b = appendVarintField(b, fieldVersion, SpecVersion)
	if ns.title != "" {
		b = protowire.AppendTag(b, fieldTitle, protowire.BytesType)
		b = protowire.AppendString(b, ns.title)
	}
	b = appendVarintField(b, fieldSB, uint64(ns.cfg.SmallBlind))
	b = appendVarintField(b, fieldBB, uint64(ns.cfg.BigBlind))
	if ns.straddle > 0 {
		b = appendVarintField(b, fieldStraddle, uint64(ns.straddle))
	}
	for _, p := range ns.seats {
		var seat []byte
		seat = appendVarintField(seat, seatPosition, uint64(p.Position))
		seat = appendVarintField(seat, seatStack, uint64(p.Stack))
		if p.Hero {
			seat = appendVarintField(seat, seatHero, 1)
		}
		if len(p.HoleCards) > 0 {
			seat = protowire.AppendTag(seat, seatHole, protowire.BytesType)
			seat = protowire.AppendBytes(seat, p.HoleCards.Bytes())
		}
		b = protowire.AppendTag(b, fieldSeat, protowire.BytesType)
		b = protowire.AppendBytes(b, seat)
	}
	var board card.CardList
	for _, s := range holdem.Streets {
		board = append(board, ns.board[s]...)
	}
	if len(board) > 0 {
		b = protowire.AppendTag(b, fieldBoard, protowire.BytesType)
		b = protowire.AppendBytes(b, board.Bytes())
	}
	for _, na := range ns.actions {
		var act []byte
		act = appendVarintField(act, actionStreet, uint64(na.street))
		act = appendVarintField(act, actionPosition, uint64(na.action.Player))
		act = appendVarintField(act, actionType, uint64(na.action.Type))
		if amount, ok := na.action.Amount(); ok {
			act = appendVarintField(act, actionAmount, uint64(amount))
		}
		b = protowire.AppendTag(b, fieldAction, protowire.BytesType)
		b = protowire.AppendBytes(b, act)
	}
	return shareEncoding.EncodeToString(b), nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// DecodeShareCode unpacks a code made by EncodeShareCode and checks that the
// hand still replays.
func DecodeShareCode(code string) (HandSpec, error) {
	raw, err := shareEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return HandSpec{}, setupError(ReasonInvalidShareCode, "%v", err)
	}
	spec := HandSpec{Actions: []ActionSpec{}}
	var board card.CardList
	err = walkFields(raw, func(num protowire.Number, v uint64, payload []byte) error {
		switch num {
		case fieldVersion:
			spec.Version = int(v)
		case fieldTitle:
			spec.Title = string(payload)
		case fieldSB:
			spec.Table.SB = int64(v)
		case fieldBB:
			spec.Table.BB = int64(v)
		case fieldStraddle:
			spec.Table.Straddle = int64(v)
		case fieldSeat:
			seat, err := decodeSeat(payload)
			if err != nil {
				return err
			}
			spec.Seats = append(spec.Seats, seat)
		case fieldBoard:
			board = card.FromBytes(payload)
		case fieldAction:
			act, err := decodeAction(payload)
			if err != nil {
				return err
			}
			spec.Actions = append(spec.Actions, act)
		}
		return nil
	})
	if err != nil {
		return HandSpec{}, setupError(ReasonInvalidShareCode, "%v", err)
	}
	if len(board) > 0 {
		spec.Board, err = boardFromCards(board)
		if err != nil {
			return HandSpec{}, setupError(ReasonInvalidShareCode, "%v", err)
		}
	}
	if _, err := Build(spec); err != nil {
		return HandSpec{}, err
	}
	return spec, nil
}

func decodeSeat(payload []byte) (SeatSpec, error) {
	var seat SeatSpec
	err := walkFields(payload, func(num protowire.Number, v uint64, b []byte) error {
		switch num {
		case seatPosition:
			seat.Position = holdem.Position(v).String()
		case seatStack:
			seat.Stack = int64(v)
		case seatHero:
			seat.IsHero = v != 0
		case seatHole:
			seat.Hole = cardStrings(card.FromBytes(b))
		}
		return nil
	})
	return seat, err
}

func decodeAction(payload []byte) (ActionSpec, error) {
	var act ActionSpec
	err := walkFields(payload, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case actionStreet:
			act.Street = holdem.Street(v).String()
		case actionPosition:
			act.Position = holdem.Position(v).String()
		case actionType:
			act.Type = holdem.ActionType(v).String()
		case actionAmount:
			act.Amount = int64(v)
		}
		return nil
	})
	return act, err
}

func boardFromCards(cards card.CardList) (*BoardSpec, error) {
	board := &BoardSpec{}
	switch len(cards) {
	case 5:
		s := cards[4].String()
		board.River = &s
		fallthrough
	case 4:
		s := cards[3].String()
		board.Turn = &s
		fallthrough
	case 3:
		board.Flop = cardStrings(cards[:3])
	default:
		return nil, fmt.Errorf("board holds %d cards", len(cards))
	}
	return board, nil
}

// walkFields calls fn for each varint or length-delimited field of a message.
// Fields of other wire types are skipped.
func walkFields(b []byte, fn func(num protowire.Number, v uint64, payload []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if err := fn(num, v, nil); err != nil {
				return err
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if err := fn(num, 0, v); err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

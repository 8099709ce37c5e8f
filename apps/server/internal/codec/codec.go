package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"holdem-recorder/apps/server/internal/session"
	"holdem-recorder/card"
	"holdem-recorder/holdem"
)

var ErrInvalidCards = errors.New("invalid cards")

// ActionRequest is one action as posted by the recorder UI. Amount is the
// player's street total and is ignored for check and fold.
type ActionRequest struct {
	Street   string `json:"street"`
	Position string `json:"position"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount,omitempty"`
}

// ToAction resolves the request. An empty street means the current one.
func (r ActionRequest) ToAction(current holdem.Street) (holdem.Street, holdem.Action, error) {
	street := current
	if strings.TrimSpace(r.Street) != "" {
		s, err := holdem.ParseStreet(r.Street)
		if err != nil {
			return 0, holdem.Action{}, fmt.Errorf("%w: %v", holdem.ErrInvalidAction, err)
		}
		street = s
	}
	pos, err := holdem.ParsePosition(r.Position)
	if err != nil {
		return 0, holdem.Action{}, fmt.Errorf("%w: %v", holdem.ErrInvalidAction, err)
	}
	t, err := holdem.ParseActionType(r.Type)
	if err != nil {
		return 0, holdem.Action{}, fmt.Errorf("%w: %v", holdem.ErrInvalidAction, err)
	}
	a, err := holdem.NewAction(pos, t, r.Amount)
	if err != nil {
		return 0, holdem.Action{}, err
	}
	return street, a, nil
}

type SeatRequest struct {
	Position string   `json:"position"`
	Stack    int64    `json:"stack,omitempty"`
	Hero     bool     `json:"hero,omitempty"`
	Hole     []string `json:"hole,omitempty"`
}

func (r SeatRequest) ToPlayer() (holdem.Player, error) {
	pos, err := holdem.ParsePosition(r.Position)
	if err != nil {
		return holdem.Player{}, err
	}
	cards, err := ParseCards(r.Hole)
	if err != nil {
		return holdem.Player{}, err
	}
	return holdem.Player{Position: pos, Stack: r.Stack, Hero: r.Hero, HoleCards: cards}, nil
}

type StackRequest struct {
	Stack int64 `json:"stack"`
}

type StraddleRequest struct {
	Amount int64 `json:"amount"`
}

type CardsRequest struct {
	Cards []string `json:"cards"`
}

type NewHandRequest struct {
	PreserveSeats bool `json:"preserve_seats"`
}

type TitleRequest struct {
	Title string `json:"title"`
}

type SavedRequest struct {
	Saved bool `json:"saved"`
}

type ShareCodeRequest struct {
	Code string `json:"code"`
}

// ParseCards accepts cards either one per element or space separated.
func ParseCards(raw []string) (card.CardList, error) {
	var out card.CardList
	for _, item := range raw {
		list, err := card.ParseList(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCards, err)
		}
		out = append(out, list...)
	}
	return out, nil
}

// Envelope is every message pushed over the websocket.
type Envelope struct {
	Type       string            `json:"type"`
	SessionID  string            `json:"session_id,omitempty"`
	ServerSeq  uint64            `json:"server_seq"`
	ServerTsMs int64             `json:"server_ts_ms"`
	Hand       *session.Snapshot `json:"hand,omitempty"`
	Error      *ErrorPayload     `json:"error,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	EnvelopeHandView = "hand_view"
	EnvelopeError    = "error"
)

func WrapSnapshot(seq uint64, snap session.Snapshot) Envelope {
	return Envelope{
		Type:       EnvelopeHandView,
		SessionID:  snap.ID,
		ServerSeq:  seq,
		ServerTsMs: time.Now().UnixMilli(),
		Hand:       &snap,
	}
}

func WrapError(seq uint64, sessionID, code, msg string) Envelope {
	return Envelope{
		Type:       EnvelopeError,
		SessionID:  sessionID,
		ServerSeq:  seq,
		ServerTsMs: time.Now().UnixMilli(),
		Error:      &ErrorPayload{Code: code, Message: msg},
	}
}

// Money amounts travel as decimal strings ("20", "12.50").
type AddPlayerRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

package holdem

import (
	"fmt"

	"holdem-recorder/card"
)

type streetState struct {
	actions []Action
	board   card.CardList
}

// Hand is the state of one recorded hand: seating, stakes and the four streets.
//
// Every derived value (pot, next actor, legality, completion) is recomputed
// from the action log on each query. The only mutations are seating changes
// between hands, AppendAction and SetBoard. A Hand is not safe for concurrent
// use; callers serialize access.
type Hand struct {
	cfg     Config
	seats   map[Position]*Player
	streets [streetCount]streetState
}

func NewHand(cfg Config) (*Hand, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	// straddle needs a seated UTG, which cannot exist yet
	if cfg.Straddle > 0 {
		return nil, fmt.Errorf("%w: seat UTG before setting a straddle", ErrStraddleNotEligible)
	}
	return &Hand{
		cfg:   cfg,
		seats: make(map[Position]*Player, MaxPlayers),
	}, nil
}

func (h *Hand) Config() Config { return h.cfg }

// Players returns the seated players ordered by position.
func (h *Hand) Players() []Player {
	out := make([]Player, 0, len(h.seats))
	for pos := Position(0); pos < positionCount; pos++ {
		if p := h.seats[pos]; p != nil {
			out = append(out, p.clone())
		}
	}
	return out
}

func (h *Hand) Player(pos Position) (Player, bool) {
	p := h.seats[pos]
	if p == nil {
		return Player{}, false
	}
	return p.clone(), true
}

func (h *Hand) Hero() (Player, bool) {
	for _, p := range h.seats {
		if p.Hero {
			return p.clone(), true
		}
	}
	return Player{}, false
}

func (h *Hand) Actions(street Street) []Action {
	if !street.Valid() {
		return nil
	}
	return append([]Action(nil), h.streets[street].actions...)
}

func (h *Hand) Board(street Street) card.CardList {
	if !street.Valid() {
		return nil
	}
	return append(card.CardList(nil), h.streets[street].board...)
}

// inProgress reports whether any action has been recorded.
func (h *Hand) inProgress() bool {
	for i := range h.streets {
		if len(h.streets[i].actions) > 0 {
			return true
		}
	}
	return false
}

// SitDown seats a player between hands. A zero stack means the default depth.
func (h *Hand) SitDown(p Player) error {
	if !p.Position.Valid() {
		return fmt.Errorf("invalid position %d", byte(p.Position))
	}
	if h.inProgress() {
		return ErrHandInProgress
	}
	if h.seats[p.Position] != nil {
		return fmt.Errorf("%w: %s", ErrPositionTaken, p.Position)
	}
	if p.Stack < 0 {
		return fmt.Errorf("stack must be >= 0")
	}
	if p.Stack == 0 {
		p.Stack = h.cfg.DefaultStack()
	}
	if p.Hero {
		if hero, ok := h.Hero(); ok {
			return fmt.Errorf("hero already seated at %s", hero.Position)
		}
	}
	if err := h.checkHoleCards(p.Position, p.HoleCards); err != nil {
		return err
	}
	np := p.clone()
	h.seats[p.Position] = &np
	return nil
}

// StandUp removes a player between hands. The hero cannot leave, and the
// table never drops below MinPlayers.
func (h *Hand) StandUp(pos Position) error {
	p := h.seats[pos]
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, pos)
	}
	if p.Hero {
		return fmt.Errorf("%w: cannot remove the hero", ErrIllegalRemoval)
	}
	if len(h.seats) <= MinPlayers {
		return fmt.Errorf("%w: cannot remove the last opponent", ErrIllegalRemoval)
	}
	if h.inProgress() {
		return ErrHandInProgress
	}
	delete(h.seats, pos)
	if pos == PositionUTG {
		h.cfg.Straddle = 0
	}
	return nil
}

// SetStack changes a player's starting stack between hands.
func (h *Hand) SetStack(pos Position, stack int64) error {
	p := h.seats[pos]
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, pos)
	}
	if h.inProgress() {
		return ErrHandInProgress
	}
	if stack <= 0 {
		return fmt.Errorf("stack must be > 0")
	}
	p.Stack = stack
	return nil
}

// SetStraddle sets (or with 0 clears) the UTG straddle. It must exceed the
// big blind and UTG must be seated.
func (h *Hand) SetStraddle(amount int64) error {
	if h.inProgress() {
		return ErrHandInProgress
	}
	if amount < 0 {
		return fmt.Errorf("straddle must be >= 0")
	}
	if amount > 0 {
		if h.seats[PositionUTG] == nil {
			return fmt.Errorf("%w: no player at UTG", ErrStraddleNotEligible)
		}
		if amount <= h.cfg.BigBlind {
			return fmt.Errorf("%w: straddle %d must exceed bb %d", ErrStraddleNotEligible, amount, h.cfg.BigBlind)
		}
	}
	h.cfg.Straddle = amount
	return nil
}

func (h *Hand) SetHoleCards(pos Position, cards card.CardList) error {
	p := h.seats[pos]
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, pos)
	}
	if err := h.checkHoleCards(pos, cards); err != nil {
		return err
	}
	p.HoleCards = append(card.CardList(nil), cards...)
	return nil
}

func (h *Hand) checkHoleCards(pos Position, cards card.CardList) error {
	if len(cards) == 0 {
		return nil
	}
	if len(cards) != 2 {
		return fmt.Errorf("hole cards must contain exactly 2 cards")
	}
	in := h.UsedCards()
	if p := h.seats[pos]; p != nil {
		in = in.Without(p.HoleCards)
	}
	return checkCards(cards, in)
}

func checkCards(cards, inUse card.CardList) error {
	for _, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("invalid card 0x%02x", byte(c))
		}
		if inUse.Contains(c) {
			return fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
	}
	if c, dup := cards.Duplicate(); dup {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, c)
	}
	return nil
}

// SetBoard places the community cards of a postflop street; an empty list clears it.
func (h *Hand) SetBoard(street Street, cards card.CardList) error {
	if !street.Valid() || street == StreetPreflop {
		return fmt.Errorf("%w: no board on %s", ErrInvalidBoard, street)
	}
	if len(cards) != 0 && len(cards) != street.BoardSize() {
		return fmt.Errorf("%w: %s takes %d cards, got %d", ErrInvalidBoard, street, street.BoardSize(), len(cards))
	}
	if err := checkCards(cards, h.UsedCards().Without(h.streets[street].board)); err != nil {
		return err
	}
	h.streets[street].board = append(card.CardList(nil), cards...)
	return nil
}

// UsedCards lists hole and board cards already placed, for card pickers.
func (h *Hand) UsedCards() card.CardList {
	var out card.CardList
	for pos := Position(0); pos < positionCount; pos++ {
		if p := h.seats[pos]; p != nil {
			out = append(out, p.HoleCards...)
		}
	}
	for i := range h.streets {
		out = append(out, h.streets[i].board...)
	}
	return out
}

// NewHand clears every street. With preserveSeats the players keep their
// stacks; otherwise every stack is reset to the default depth. Hole cards are
// always cleared.
func (h *Hand) NewHand(preserveSeats bool) {
	for i := range h.streets {
		h.streets[i] = streetState{}
	}
	for _, p := range h.seats {
		p.HoleCards = nil
		if !preserveSeats {
			p.Stack = h.cfg.DefaultStack()
		}
	}
}

// AppendAction validates a and records it on street. The returned action is
// what was stored: call amounts are normalised to the bet faced, and a call,
// bet or raise that reaches the player's whole stack is recorded as all-in.
// A refused action leaves the hand unchanged.
func (h *Hand) AppendAction(street Street, a Action) (Action, error) {
	if !street.Valid() {
		return Action{}, fmt.Errorf("%w: invalid street %d", ErrInvalidAction, byte(street))
	}
	if err := h.ready(); err != nil {
		return Action{}, err
	}
	if h.seats[a.Player] == nil {
		return Action{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, a.Player)
	}
	if cur := h.CurrentStreet(); street != cur {
		if street < cur || h.IsStreetComplete(street) {
			return Action{}, fmt.Errorf("%w: %s", ErrStaleQuery, street)
		}
		return Action{}, fmt.Errorf("%w: %s is not open, current street is %s", ErrInvalidAction, street, cur)
	}
	next, err := h.NextActingPlayer(street)
	if err != nil {
		return Action{}, err
	}
	if next != a.Player {
		return Action{}, fmt.Errorf("%w: %s to act, got %s", ErrOutOfTurn, next, a.Player)
	}
	legal, err := h.LegalActions(a.Player, street)
	if err != nil {
		return Action{}, err
	}
	if !containsActionType(legal, a.Type) {
		return Action{}, fmt.Errorf("%w: %s cannot %s", ErrInvalidAction, a.Player, a.Type)
	}

	f := h.analyze(street)
	allInTotal := f.contrib[a.Player] + h.EffectiveStack(a.Player, street)

	rec := a
	switch a.Type {
	case PlayerActionTypeCheck, PlayerActionTypeFold:
		rec = Action{Player: a.Player, Type: a.Type}
	case PlayerActionTypeCall:
		rec = Call(a.Player, f.highest)
		if f.highest >= allInTotal {
			rec = AllIn(a.Player, allInTotal)
		}
	case PlayerActionTypeBet, PlayerActionTypeRaise:
		amt, _ := a.Amount()
		if amt >= allInTotal {
			rec = AllIn(a.Player, allInTotal)
			break
		}
		lim, err := h.BetLimits(a.Type, a.Player, street)
		if err != nil {
			return Action{}, err
		}
		if amt < lim.Min {
			return Action{}, fmt.Errorf("%w: %s to %d, minimum is %d", ErrAmountOutOfRange, a.Type, amt, lim.Min)
		}
	case PlayerActionTypeAllin:
		rec = AllIn(a.Player, allInTotal)
	}

	h.streets[street].actions = append(h.streets[street].actions, rec)
	return rec, nil
}

// ready checks the table can start recording: enough players and exactly one hero.
func (h *Hand) ready() error {
	if len(h.seats) < MinPlayers {
		return fmt.Errorf("%w: %d players seated, need %d", ErrTableNotReady, len(h.seats), MinPlayers)
	}
	if _, ok := h.Hero(); !ok {
		return fmt.Errorf("%w: no hero seated", ErrTableNotReady)
	}
	return nil
}

func containsActionType(list []ActionType, t ActionType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

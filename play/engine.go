package play

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/contract"
)

// IllegalPlayError rejects a card that is not held or violates follow-suit.
// Illegal plays are never silently corrected.
type IllegalPlayError struct {
	Seat   card.Seat
	Card   card.Card
	Reason string
}

func (e *IllegalPlayError) Error() string {
	return fmt.Sprintf("illegal play %v by %v: %s", e.Card, e.Seat, e.Reason)
}

// StartPlay creates the initial state for one hand of bridge from a dealt
// board and a finished auction's contract. The opening leader is declarer's
// left-hand opponent. With replay set, the caller is asserting this is a
// re-run of a stored board; hands are rebuilt from the deal's frozen
// original cards either way, which is what guarantees that a replay offers
// identical legal plays at every step.
func StartPlay(deal *card.Deal, c contract.Contract, vul contract.Vulnerability, replay bool) (*State, error) {
	if c.Level < 1 || c.Level > 7 {
		return nil, fmt.Errorf("contract level %d out of range", c.Level)
	}
	s := &State{
		contract:    c,
		vul:         vul,
		hands:       deal.Hands(),
		leader:      c.OpeningLeader(),
		onTurn:      c.OpeningLeader(),
		tricksTotal: 13,
	}
	if replay {
		log.Debug().Str("deal", deal.ID()).Str("contract", c.String()).Msg("replaying-stored-deal")
	}
	return s, nil
}

// NewEndgamePosition constructs a mid-play state directly from partial
// hands, for solvers and tests. All four hands must hold the same number of
// cards and the trick-won counts must account for the tricks already gone.
func NewEndgamePosition(hands [4][]card.Card, c contract.Contract, vul contract.Vulnerability,
	leader card.Seat, tricksWon [4]int) (*State, error) {

	n := len(hands[0])
	if n < 1 || n > 13 {
		return nil, fmt.Errorf("hands hold %d cards, want 1-13", n)
	}
	wonTotal := 0
	for _, w := range tricksWon {
		wonTotal += w
	}
	if wonTotal != 13-n {
		return nil, fmt.Errorf("tricks won sum to %d, want %d for %d-card hands", wonTotal, 13-n, n)
	}
	s := &State{
		contract:      c,
		vul:           vul,
		leader:        leader,
		onTurn:        leader,
		tricksWon:     tricksWon,
		tricksTotal:   n,
		dummyRevealed: true,
	}
	var seen [52]bool
	for _, seat := range card.Seats {
		if len(hands[seat]) != n {
			return nil, fmt.Errorf("%v holds %d cards, want %d", seat, len(hands[seat]), n)
		}
		for _, cd := range hands[seat] {
			if seen[cd.Index()] {
				return nil, fmt.Errorf("duplicate card %v in position", cd)
			}
			seen[cd.Index()] = true
		}
		h, err := card.NewHand(seat, hands[seat])
		if err != nil {
			return nil, err
		}
		s.hands[seat] = h
	}
	return s, nil
}

// LegalPlays computes the legal cards for the seat on turn. A leader may
// play anything; otherwise the led suit must be followed when held, and a
// void hand may play anything, trumping included but never mandatory. The
// result is non-empty while the seat holds any card.
func (s *State) LegalPlays() []card.Card {
	hand := s.hands[s.onTurn]
	if len(s.trick) == 0 {
		return hand.Remaining()
	}
	led := s.trick[0].Card.Suit
	inSuit := lo.Filter(hand.Remaining(), func(c card.Card, _ int) bool {
		return c.Suit == led
	})
	if len(inSuit) > 0 {
		return inSuit
	}
	return hand.Remaining()
}

// CurrentWinner returns the card currently winning the in-progress trick,
// or false if no card has been led.
func (s *State) CurrentWinner() (PlayedCard, bool) {
	if len(s.trick) == 0 {
		return PlayedCard{}, false
	}
	trump, hasTrump := s.contract.TrumpSuit()
	best := s.trick[0]
	for _, pc := range s.trick[1:] {
		if beats(pc.Card, best.Card, s.trick[0].Card.Suit, trump, hasTrump) {
			best = pc
		}
	}
	return best, true
}

// Beats reports whether playing c now would take over the in-progress
// trick. With no card led yet, any lead "wins" so far.
func (s *State) Beats(c card.Card) bool {
	best, ok := s.CurrentWinner()
	if !ok {
		return true
	}
	trump, hasTrump := s.contract.TrumpSuit()
	return beats(c, best.Card, s.trick[0].Card.Suit, trump, hasTrump)
}

// beats implements trick precedence: a trump beats any non-trump, a higher
// trump beats a lower one, and otherwise only a higher card of the led suit
// wins. Cards of other suits never win.
func beats(c, best card.Card, led card.Suit, trump card.Suit, hasTrump bool) bool {
	if hasTrump {
		cTrump := c.Suit == trump
		bestTrump := best.Suit == trump
		if cTrump != bestTrump {
			return cTrump
		}
		if cTrump && bestTrump {
			return c.Rank > best.Rank
		}
	}
	if c.Suit != led {
		return false
	}
	if best.Suit != led {
		// best is an off-suit discard; the led suit always heads it.
		return true
	}
	return c.Rank > best.Rank
}

// PlayCard validates and applies one card for the seat on turn. The fourth
// card of a trick resolves it: the winner is credited, the trick goes to
// history, and the winner leads next. The dummy is revealed the moment the
// opening lead hits the table.
func (s *State) PlayCard(c card.Card) error {
	seat := s.onTurn
	if s.Over() {
		return &IllegalPlayError{Seat: seat, Card: c, Reason: "the play is over"}
	}
	if !s.hands[seat].Holds(c) {
		return &IllegalPlayError{Seat: seat, Card: c, Reason: "card not held"}
	}
	if len(s.trick) > 0 {
		led := s.trick[0].Card.Suit
		if c.Suit != led && len(s.hands[seat].RemainingIn(led)) > 0 {
			return &IllegalPlayError{
				Seat: seat, Card: c,
				Reason: fmt.Sprintf("must follow %v", led),
			}
		}
	}

	played := PlayedCard{Card: c, Seat: seat}
	s.backup(played)

	if err := s.hands[seat].Remove(c); err != nil {
		return err
	}
	s.trick = append(s.trick, played)
	if !s.dummyRevealed {
		s.dummyRevealed = true
		log.Debug().Str("dummy", s.contract.Dummy().String()).Msg("dummy-revealed")
	}

	if len(s.trick) == 4 {
		s.resolveTrick()
	} else {
		s.onTurn = seat.Clockwise()
	}
	return nil
}

func (s *State) resolveTrick() {
	winner, _ := s.CurrentWinner()
	var done Trick
	copy(done.Cards[:], s.trick)
	done.Leader = s.leader
	done.Winner = winner.Seat
	s.history = append(s.history, done)
	s.tricksWon[winner.Seat]++
	s.trick = s.trick[:0]
	s.leader = winner.Seat
	s.onTurn = winner.Seat
}

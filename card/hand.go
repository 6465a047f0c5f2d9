package card

import (
	"fmt"
	"sort"
)

// Hand is one seat's cards. The original deal is frozen at construction and
// is the only source for valuation metrics (HCP, suit lengths); play removes
// cards from the remaining pile only, so valuations never drift as cards
// leave the hand.
type Hand struct {
	seat      Seat
	original  []Card
	remaining []Card
	hcp       int
	suitLen   [4]int
}

// NewHand builds a hand from the given cards. The card set is frozen as the
// hand's original holding. Duplicate cards are rejected; the length is
// validated at the deal level so that endgame positions with fewer than 13
// cards can be constructed directly.
func NewHand(seat Seat, cards []Card) (*Hand, error) {
	var seen [52]bool
	h := &Hand{seat: seat}
	for _, c := range cards {
		if seen[c.Index()] {
			return nil, fmt.Errorf("duplicate card %v in %v hand", c, seat)
		}
		seen[c.Index()] = true
		h.hcp += c.Rank.HCP()
		h.suitLen[c.Suit]++
	}
	h.original = make([]Card, len(cards))
	copy(h.original, cards)
	sortCards(h.original)
	h.remaining = make([]Card, len(h.original))
	copy(h.remaining, h.original)
	return h, nil
}

func sortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit > cards[j].Suit
		}
		return cards[i].Rank > cards[j].Rank
	})
}

func (h *Hand) Seat() Seat {
	return h.seat
}

// HCP returns the high-card points of the original holding. It never
// changes during play.
func (h *Hand) HCP() int {
	return h.hcp
}

// SuitLength returns the original length of the given suit.
func (h *Hand) SuitLength(s Suit) int {
	return h.suitLen[s]
}

// Original returns a copy of the frozen dealt cards.
func (h *Hand) Original() []Card {
	out := make([]Card, len(h.original))
	copy(out, h.original)
	return out
}

// Remaining returns a copy of the unplayed cards, sorted for display.
func (h *Hand) Remaining() []Card {
	out := make([]Card, len(h.remaining))
	copy(out, h.remaining)
	return out
}

// NumRemaining returns the count of unplayed cards.
func (h *Hand) NumRemaining() int {
	return len(h.remaining)
}

// Holds reports whether the card is still in the remaining pile.
func (h *Hand) Holds(c Card) bool {
	for _, rc := range h.remaining {
		if rc == c {
			return true
		}
	}
	return false
}

// RemainingIn returns the unplayed cards of one suit, highest first.
func (h *Hand) RemainingIn(s Suit) []Card {
	var out []Card
	for _, rc := range h.remaining {
		if rc.Suit == s {
			out = append(out, rc)
		}
	}
	return out
}

// Remove takes a card out of the remaining pile. It is intended for the
// play engine; removing a card the hand does not hold is an error.
func (h *Hand) Remove(c Card) error {
	for i, rc := range h.remaining {
		if rc == c {
			h.remaining = append(h.remaining[:i], h.remaining[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%v does not hold %v", h.seat, c)
}

// Restore puts a previously removed card back. It is intended for the play
// engine's backup stack; restoring a card that was never dealt to this hand
// is an error.
func (h *Hand) Restore(c Card) error {
	held := false
	for _, oc := range h.original {
		if oc == c {
			held = true
			break
		}
	}
	if !held {
		return fmt.Errorf("%v was never dealt %v", h.seat, c)
	}
	if h.Holds(c) {
		return fmt.Errorf("%v already holds %v", h.seat, c)
	}
	h.remaining = append(h.remaining, c)
	sortCards(h.remaining)
	return nil
}

// Copy returns a deep copy of the hand.
func (h *Hand) Copy() *Hand {
	nh := &Hand{
		seat:    h.seat,
		hcp:     h.hcp,
		suitLen: h.suitLen,
	}
	nh.original = make([]Card, len(h.original))
	copy(nh.original, h.original)
	nh.remaining = make([]Card, len(h.remaining))
	copy(nh.remaining, h.remaining)
	return nh
}

func (h *Hand) String() string {
	s := ""
	for i, suit := range []Suit{Spades, Hearts, Diamonds, Clubs} {
		if i > 0 {
			s += " "
		}
		s += suit.String()
		for _, c := range h.remaining {
			if c.Suit == suit {
				s += c.Rank.String()
			}
		}
	}
	return s
}

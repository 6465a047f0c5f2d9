package card

import (
	"fmt"
	"strings"

	"github.com/lithammer/shortuuid"
	"lukechampine.com/frand"
)

// NewDeck returns the 52 cards in suit-major index order.
func NewDeck() []Card {
	deck := make([]Card, 52)
	for i := range deck {
		deck[i] = FromIndex(i)
	}
	return deck
}

// Deal is an original four-hand board. It is immutable once constructed;
// replaying a board always starts from these cards.
type Deal struct {
	id    string
	hands [4][]Card
}

// NewDeal validates that the four hands partition the deck into 13 cards
// each with no duplicates or omissions.
func NewDeal(hands [4][]Card) (*Deal, error) {
	var seen [52]bool
	total := 0
	for seat, hand := range hands {
		if len(hand) != 13 {
			return nil, fmt.Errorf("%v was dealt %d cards, want 13", Seat(seat), len(hand))
		}
		for _, c := range hand {
			if seen[c.Index()] {
				return nil, fmt.Errorf("duplicate card %v in deal", c)
			}
			seen[c.Index()] = true
			total++
		}
	}
	if total != 52 {
		return nil, fmt.Errorf("deal holds %d cards, want 52", total)
	}
	d := &Deal{id: shortuuid.New()}
	for seat := range hands {
		d.hands[seat] = make([]Card, 13)
		copy(d.hands[seat], hands[seat])
		sortCards(d.hands[seat])
	}
	return d, nil
}

// RandomDeal shuffles a fresh deck and deals it clockwise from North.
func RandomDeal() *Deal {
	deck := NewDeck()
	frand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	var hands [4][]Card
	for seat := 0; seat < 4; seat++ {
		hands[seat] = deck[seat*13 : (seat+1)*13]
	}
	d, err := NewDeal(hands)
	if err != nil {
		// A shuffled full deck always partitions.
		panic(err)
	}
	return d
}

func (d *Deal) ID() string {
	return d.id
}

// Cards returns a copy of the original 13 cards dealt to a seat.
func (d *Deal) Cards(seat Seat) []Card {
	out := make([]Card, len(d.hands[seat]))
	copy(out, d.hands[seat])
	return out
}

// Hands builds fresh Hand objects for all four seats from the original
// cards. Each call returns independent hands, which is what makes replay
// reproducible: play-time mutation never touches the deal.
func (d *Deal) Hands() [4]*Hand {
	var out [4]*Hand
	for _, seat := range Seats {
		h, err := NewHand(seat, d.hands[seat])
		if err != nil {
			panic(err)
		}
		out[seat] = h
	}
	return out
}

// Compact serializes the deal in suit-dot notation, spades first, one field
// per seat in N E S W order: "AKQ2.T98.432.765 ...".
func (d *Deal) Compact() string {
	fields := make([]string, 4)
	for _, seat := range Seats {
		suits := make([]string, 4)
		for i, suit := range []Suit{Spades, Hearts, Diamonds, Clubs} {
			var sb strings.Builder
			for _, c := range d.hands[seat] {
				if c.Suit == suit {
					sb.WriteString(c.Rank.String())
				}
			}
			suits[i] = sb.String()
		}
		fields[seat] = strings.Join(suits, ".")
	}
	return strings.Join(fields, " ")
}

// ParseDeal reads the Compact form back into a deal with the given ID. An
// empty id assigns a fresh one.
func ParseDeal(id, layout string) (*Deal, error) {
	fields := strings.Fields(layout)
	if len(fields) != 4 {
		return nil, fmt.Errorf("deal layout has %d hands, want 4", len(fields))
	}
	var hands [4][]Card
	for seat, field := range fields {
		suits := strings.Split(field, ".")
		if len(suits) != 4 {
			return nil, fmt.Errorf("hand %q has %d suits, want 4", field, len(suits))
		}
		for i, suit := range []Suit{Spades, Hearts, Diamonds, Clubs} {
			for k := 0; k < len(suits[i]); k++ {
				rank, err := ParseRank(suits[i][k])
				if err != nil {
					return nil, fmt.Errorf("hand %q: %w", field, err)
				}
				hands[seat] = append(hands[seat], Card{Rank: rank, Suit: suit})
			}
		}
	}
	d, err := NewDeal(hands)
	if err != nil {
		return nil, err
	}
	if id != "" {
		d.id = id
	}
	return d, nil
}

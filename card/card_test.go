package card

import (
	"testing"

	"github.com/matryer/is"
)

func TestParseCard(t *testing.T) {
	is := is.New(t)

	c, err := Parse("♠A")
	is.NoErr(err)
	is.Equal(c, Card{Rank: Ace, Suit: Spades})

	c, err = Parse("hT")
	is.NoErr(err)
	is.Equal(c, Card{Rank: Ten, Suit: Hearts})

	_, err = Parse("♠")
	is.True(err != nil)
	_, err = Parse("Z5")
	is.True(err != nil)
	_, err = Parse("♦1")
	is.True(err != nil)
}

func TestRankOrder(t *testing.T) {
	is := is.New(t)
	is.True(Ace > King)
	is.True(King > Queen)
	is.True(Three > Two)
	is.Equal(Ace-Two, Rank(12))
}

func TestCardIndexRoundTrip(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 52; i++ {
		is.Equal(FromIndex(i).Index(), i)
	}
	is.Equal(Card{Rank: Two, Suit: Clubs}.Index(), 0)
	is.Equal(Card{Rank: Ace, Suit: Spades}.Index(), 51)
}

func TestSeatGeometry(t *testing.T) {
	is := is.New(t)
	is.Equal(North.Clockwise(), East)
	is.Equal(West.Clockwise(), North)
	is.Equal(North.Partner(), South)
	is.Equal(East.Partner(), West)
	is.True(North.SameSide(South))
	is.True(!North.SameSide(East))
}

func TestHandValuationFrozen(t *testing.T) {
	is := is.New(t)
	h, err := NewHand(North, []Card{
		MustParse("♠A"), MustParse("♠K"), MustParse("♥Q"), MustParse("♦J"),
		MustParse("♣2"),
	})
	is.NoErr(err)
	is.Equal(h.HCP(), 10)
	is.Equal(h.SuitLength(Spades), 2)

	// HCP and shape come from the original deal, so playing cards must not
	// change them.
	is.NoErr(h.Remove(MustParse("♠A")))
	is.Equal(h.HCP(), 10)
	is.Equal(h.SuitLength(Spades), 2)
	is.Equal(h.NumRemaining(), 4)
	is.True(!h.Holds(MustParse("♠A")))

	is.NoErr(h.Restore(MustParse("♠A")))
	is.True(h.Holds(MustParse("♠A")))
	// Only cards from the original deal can come back.
	is.True(h.Restore(MustParse("♦9")) != nil)
}

func TestHandRejectsDuplicates(t *testing.T) {
	is := is.New(t)
	_, err := NewHand(East, []Card{MustParse("♠A"), MustParse("♠A")})
	is.True(err != nil)
}

func TestRandomDealPartitionsDeck(t *testing.T) {
	is := is.New(t)
	d := RandomDeal()
	var seen [52]bool
	for _, seat := range Seats {
		cards := d.Cards(seat)
		is.Equal(len(cards), 13)
		for _, c := range cards {
			is.True(!seen[c.Index()])
			seen[c.Index()] = true
		}
	}
}

func TestDealCompactRoundTrip(t *testing.T) {
	is := is.New(t)
	d := RandomDeal()
	parsed, err := ParseDeal(d.ID(), d.Compact())
	is.NoErr(err)
	is.Equal(parsed.ID(), d.ID())
	is.Equal(parsed.Compact(), d.Compact())
	for _, seat := range Seats {
		is.Equal(parsed.Cards(seat), d.Cards(seat))
	}

	_, err = ParseDeal("", "only three.hands.here x")
	is.True(err != nil)
}

package contract

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/cardsoft/bridgetutor/card"
)

func TestParseContract(t *testing.T) {
	is := is.New(t)

	c, err := Parse("4♠X by N")
	is.NoErr(err)
	is.Equal(c, Contract{Level: 4, Strain: Spades, Declarer: card.North, Doubling: Doubled})
	is.Equal(c.TricksNeeded(), 10)
	is.Equal(c.Dummy(), card.South)
	is.Equal(c.OpeningLeader(), card.East)

	c, err = Parse("3NT by S")
	is.NoErr(err)
	is.Equal(c.Strain, NoTrump)
	_, hasTrump := c.TrumpSuit()
	is.True(!hasTrump)

	c, err = Parse("7♣XX by W")
	is.NoErr(err)
	is.Equal(c.Doubling, Redoubled)
	is.Equal(c.Doubling.Multiplier(), 4)

	c, err = Parse("2H by E")
	is.NoErr(err)
	is.Equal(c.Strain, Hearts)
	is.Equal(c.String(), "2♥ by E")
}

func TestParseContractErrors(t *testing.T) {
	is := is.New(t)
	for _, bad := range []string{
		"8♠ by N",   // level out of range
		"4♠ by Q",   // bad seat
		"4♠XXX by N",
		"4 by N",
		"4♠N",
		"",
	} {
		_, err := Parse(bad)
		is.True(err != nil)
		var pe *ParseError
		is.True(errors.As(err, &pe))
		is.Equal(pe.Input, bad)
	}
}

func TestParseVulnerability(t *testing.T) {
	is := is.New(t)

	v, err := ParseVulnerability("NS")
	is.NoErr(err)
	is.True(v.IsVulnerable(card.North))
	is.True(v.IsVulnerable(card.South))
	is.True(!v.IsVulnerable(card.East))

	v, err = ParseVulnerability("Both")
	is.NoErr(err)
	is.True(v.IsVulnerable(card.West))

	v, err = ParseVulnerability("None")
	is.NoErr(err)
	is.True(!v.IsVulnerable(card.North))

	// Strict: no aliases, no case folding.
	for _, bad := range []string{"ns", "All", "Love", "N-S", ""} {
		_, err := ParseVulnerability(bad)
		is.True(err != nil)
	}
}

func TestAuctionResult(t *testing.T) {
	is := is.New(t)

	// North deals and opens 1NT, South raises to 3NT, all pass. The final
	// bid seat is South, so South declares and West leads.
	a := &Auction{
		Dealer: card.North,
		Calls: []Call{
			Bid(1, NoTrump), Pass, Bid(3, NoTrump), Pass,
			Pass, Pass,
		},
	}
	c, err := a.Result()
	is.NoErr(err)
	is.Equal(c, Contract{Level: 3, Strain: NoTrump, Declarer: card.South})
	is.Equal(c.OpeningLeader(), card.West)
}

func TestAuctionDoubling(t *testing.T) {
	is := is.New(t)

	a := &Auction{
		Dealer: card.East,
		Calls: []Call{
			Bid(1, Spades), Pass, Bid(4, Spades), {Type: CallDouble},
			{Type: CallRedouble}, Pass, Pass, Pass,
		},
	}
	c, err := a.Result()
	is.NoErr(err)
	is.Equal(c.Declarer, card.West)
	is.Equal(c.Doubling, Redoubled)

	// A fresh bid wipes the doubling state.
	a = &Auction{
		Dealer: card.North,
		Calls: []Call{
			Bid(1, Hearts), {Type: CallDouble}, Bid(2, Hearts), Pass,
			Pass, Pass,
		},
	}
	c, err = a.Result()
	is.NoErr(err)
	is.Equal(c.Doubling, Undoubled)
	is.Equal(c.Declarer, card.South)
}

func TestAuctionErrors(t *testing.T) {
	is := is.New(t)

	a := &Auction{Dealer: card.North, Calls: []Call{Pass, Pass, Pass, Pass}}
	_, err := a.Result()
	is.Equal(err, ErrPassedOut)

	// Insufficient bid.
	a = &Auction{
		Dealer: card.North,
		Calls: []Call{
			Bid(2, Spades), Bid(2, Clubs), Pass, Pass,
			Pass,
		},
	}
	_, err = a.Result()
	is.True(err != nil)

	// Unfinished auction.
	a = &Auction{Dealer: card.North, Calls: []Call{Bid(1, Clubs), Pass, Pass}}
	_, err = a.Result()
	is.True(err != nil)

	// Double with nothing to double.
	a = &Auction{
		Dealer: card.North,
		Calls:  []Call{{Type: CallDouble}, Pass, Pass, Pass},
	}
	_, err = a.Result()
	is.True(err != nil)
}

func TestParseCall(t *testing.T) {
	is := is.New(t)

	cases := []struct {
		tok  string
		want Call
	}{
		{"P", Pass},
		{"pass", Pass},
		{"X", Call{Type: CallDouble}},
		{"XX", Call{Type: CallRedouble}},
		{"1C", Bid(1, Clubs)},
		{"3NT", Bid(3, NoTrump)},
		{"4♠", Bid(4, Spades)},
		{"7h", Bid(7, Hearts)},
	}
	for _, tc := range cases {
		got, err := ParseCall(tc.tok)
		is.NoErr(err)
		is.Equal(got, tc.want)
	}

	for _, bad := range []string{"", "8C", "1", "0NT", "1Z", "double"} {
		_, err := ParseCall(bad)
		is.True(err != nil)
	}
}

func TestAuctionDoubleSideLegality(t *testing.T) {
	is := is.New(t)

	// South doubling partner North's bid is not a call.
	a := &Auction{
		Dealer: card.North,
		Calls: []Call{
			Bid(1, Spades), Pass, {Type: CallDouble}, Pass,
			Pass, Pass,
		},
	}
	_, err := a.Result()
	is.True(err != nil)

	// West redoubling East's own double is not a call either.
	a = &Auction{
		Dealer: card.North,
		Calls: []Call{
			Bid(1, Spades), {Type: CallDouble}, Pass, {Type: CallRedouble},
			Pass, Pass, Pass,
		},
	}
	_, err = a.Result()
	is.True(err != nil)

	// The doubled side may redouble.
	a = &Auction{
		Dealer: card.North,
		Calls: []Call{
			Bid(1, Spades), {Type: CallDouble}, {Type: CallRedouble}, Pass,
			Pass, Pass,
		},
	}
	c, err := a.Result()
	is.NoErr(err)
	is.Equal(c.Doubling, Redoubled)
	is.Equal(c.Declarer, card.North)
}

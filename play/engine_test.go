package play

import (
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/contract"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

// fixedDeal deals the unshuffled deck clockwise one card at a time, so each
// seat gets a known spread of every suit. North: ♣2♣6♣T♦A... etc.
func fixedDeal(t *testing.T) *card.Deal {
	t.Helper()
	deck := card.NewDeck()
	var hands [4][]card.Card
	for i, c := range deck {
		hands[i%4] = append(hands[i%4], c)
	}
	d, err := card.NewDeal(hands)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func mustContract(t *testing.T, s string) contract.Contract {
	t.Helper()
	c, err := contract.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestOpeningLeaderAndDummyReveal(t *testing.T) {
	is := is.New(t)
	d := fixedDeal(t)
	st, err := StartPlay(d, mustContract(t, "3NT by S"), contract.NoneVul, false)
	is.NoErr(err)
	is.Equal(st.NextToPlay(), card.West)
	is.True(!st.DummyRevealed())

	lead := st.LegalPlays()[0]
	is.NoErr(st.PlayCard(lead))
	is.True(st.DummyRevealed())
	is.Equal(st.NextToPlay(), card.North)
}

func TestFollowSuitEnforced(t *testing.T) {
	is := is.New(t)

	// West leads a diamond; North holds diamonds, so every legal play for
	// North is a diamond and anything else is rejected.
	hands := [4][]card.Card{
		card.North: {card.MustParse("♦K"), card.MustParse("♣5"), card.MustParse("♠3")},
		card.East:  {card.MustParse("♦7"), card.MustParse("♥2"), card.MustParse("♠8")},
		card.South: {card.MustParse("♣2"), card.MustParse("♥9"), card.MustParse("♠J")},
		card.West:  {card.MustParse("♦4"), card.MustParse("♥K"), card.MustParse("♠Q")},
	}
	st, err := NewEndgamePosition(hands, mustContract(t, "3NT by S"), contract.NoneVul,
		card.West, [4]int{4, 2, 2, 2})
	is.NoErr(err)

	is.NoErr(st.PlayCard(card.MustParse("♦4")))
	legal := st.LegalPlays()
	is.Equal(legal, []card.Card{card.MustParse("♦K")})

	err = st.PlayCard(card.MustParse("♣5"))
	var ipe *IllegalPlayError
	is.True(errors.As(err, &ipe))
	is.Equal(ipe.Seat, card.North)

	// A card not held at all is also rejected.
	err = st.PlayCard(card.MustParse("♦2"))
	is.True(errors.As(err, &ipe))
}

func TestVoidMayPlayAnything(t *testing.T) {
	is := is.New(t)
	hands := [4][]card.Card{
		card.North: {card.MustParse("♥K"), card.MustParse("♣5")},
		card.East:  {card.MustParse("♦7"), card.MustParse("♥2")},
		card.South: {card.MustParse("♣2"), card.MustParse("♥9")},
		card.West:  {card.MustParse("♦4"), card.MustParse("♦9")},
	}
	st, err := NewEndgamePosition(hands, mustContract(t, "3NT by S"), contract.NoneVul,
		card.West, [4]int{5, 2, 2, 2})
	is.NoErr(err)

	is.NoErr(st.PlayCard(card.MustParse("♦4")))
	// North is void in diamonds: both remaining cards are legal.
	is.Equal(len(st.LegalPlays()), 2)
}

func TestTrumpWinsTrick(t *testing.T) {
	is := is.New(t)

	// Clubs are trump, ♦4 led by W, ♦K by N, ♦7 by E, ♣2 by S. The lone
	// small trump wins over every diamond.
	hands := [4][]card.Card{
		card.North: {card.MustParse("♦K")},
		card.East:  {card.MustParse("♦7")},
		card.South: {card.MustParse("♣2")},
		card.West:  {card.MustParse("♦4")},
	}
	st, err := NewEndgamePosition(hands, mustContract(t, "5♣ by S"), contract.NoneVul,
		card.West, [4]int{3, 3, 3, 3})
	is.NoErr(err)

	for _, tok := range []string{"♦4", "♦K", "♦7", "♣2"} {
		is.NoErr(st.PlayCard(card.MustParse(tok)))
	}
	is.True(st.Over())
	hist := st.History()
	is.Equal(len(hist), 1)
	is.Equal(hist[0].Winner, card.South)
	is.Equal(st.NextToPlay(), card.South)
}

func TestHighestOfLedSuitWinsWithoutTrump(t *testing.T) {
	is := is.New(t)
	hands := [4][]card.Card{
		card.North: {card.MustParse("♦K")},
		card.East:  {card.MustParse("♦7")},
		card.South: {card.MustParse("♠A")}, // off-suit, cannot win in NT
		card.West:  {card.MustParse("♦4")},
	}
	st, err := NewEndgamePosition(hands, mustContract(t, "3NT by S"), contract.NoneVul,
		card.West, [4]int{3, 3, 3, 3})
	is.NoErr(err)
	for _, tok := range []string{"♦4", "♦K", "♦7", "♠A"} {
		is.NoErr(st.PlayCard(card.MustParse(tok)))
	}
	is.Equal(st.History()[0].Winner, card.North)
}

// playOut plays every hand to completion with the first legal card,
// checking the partition and trick-count invariants at each step.
func playOut(t *testing.T, st *State, d *card.Deal) {
	t.Helper()
	is := is.New(t)
	for !st.Over() {
		checkPartition(t, st, d)
		is.Equal(st.DeclarerTricks()+st.DefenderTricks()+st.TricksRemaining(), 13)
		legal := st.LegalPlays()
		is.True(len(legal) > 0)
		is.NoErr(st.PlayCard(legal[0]))
	}
	is.Equal(st.DeclarerTricks()+st.DefenderTricks(), 13)
	is.Equal(len(st.History()), 13)
}

// checkPartition asserts that remaining piles plus played cards are exactly
// the original 52-card deal.
func checkPartition(t *testing.T, st *State, d *card.Deal) {
	t.Helper()
	var count [52]int
	for _, seat := range card.Seats {
		for _, c := range st.Remaining(seat) {
			count[c.Index()]++
		}
	}
	for _, trick := range st.History() {
		for _, pc := range trick.Cards {
			count[pc.Card.Index()]++
		}
	}
	for _, pc := range st.CurrentTrick() {
		count[pc.Card.Index()]++
	}
	for i := 0; i < 52; i++ {
		if count[i] != 1 {
			t.Fatalf("card %v appears %d times", card.FromIndex(i), count[i])
		}
	}
}

func TestFullPlayoutInvariants(t *testing.T) {
	for i := 0; i < 5; i++ {
		d := card.RandomDeal()
		st, err := StartPlay(d, mustContract(t, "4♥ by N"), contract.BothVul, false)
		if err != nil {
			t.Fatal(err)
		}
		playOut(t, st, d)
	}
}

func TestReplayIdempotence(t *testing.T) {
	is := is.New(t)
	d := card.RandomDeal()
	c := mustContract(t, "4♠ by S")

	first, err := StartPlay(d, c, contract.NSVul, true)
	is.NoErr(err)
	// Mutate the first state heavily.
	for i := 0; i < 20; i++ {
		is.NoErr(first.PlayCard(first.LegalPlays()[0]))
	}

	second, err := StartPlay(d, c, contract.NSVul, true)
	is.NoErr(err)
	third, err := StartPlay(d, c, contract.NSVul, true)
	is.NoErr(err)

	is.Equal(second.NextToPlay(), third.NextToPlay())
	for _, seat := range card.Seats {
		is.Equal(second.Remaining(seat), third.Remaining(seat))
		is.Equal(second.Remaining(seat), d.Cards(seat))
	}
	is.Equal(second.LegalPlays(), third.LegalPlays())
}

func TestUnplayRestoresState(t *testing.T) {
	is := is.New(t)
	d := fixedDeal(t)
	st, err := StartPlay(d, mustContract(t, "1♠ by N"), contract.NoneVul, false)
	is.NoErr(err)

	sim := st.Copy()
	sim.SetBackupMode(SimulationMode)
	sim.SetStateStackLength(8)

	before := sim.Copy()
	// Play through a full trick plus one card, then rewind it all.
	for i := 0; i < 5; i++ {
		is.NoErr(sim.PlayCard(sim.LegalPlays()[0]))
	}
	is.Equal(len(sim.History()), 1)
	for i := 0; i < 5; i++ {
		is.NoErr(sim.UnplayLastMove())
	}

	is.Equal(sim.NextToPlay(), before.NextToPlay())
	is.Equal(sim.TrickLeader(), before.TrickLeader())
	is.Equal(len(sim.History()), 0)
	for _, seat := range card.Seats {
		is.Equal(sim.Remaining(seat), before.Remaining(seat))
	}

	// The live state was untouched by the simulation.
	is.Equal(st.Remaining(card.North), before.Remaining(card.North))
	err = st.UnplayLastMove()
	is.True(err != nil)
}

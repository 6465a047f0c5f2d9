package ai

import (
	"context"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/config"
	"github.com/cardsoft/bridgetutor/contract"
	"github.com/cardsoft/bridgetutor/play"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func cardsOf(toks ...string) []card.Card {
	out := make([]card.Card, len(toks))
	for i, tok := range toks {
		out[i] = card.MustParse(tok)
	}
	return out
}

func position(t *testing.T, hands [4][]card.Card, contractStr string, leader card.Seat) *play.State {
	t.Helper()
	c, err := contract.Parse(contractStr)
	if err != nil {
		t.Fatal(err)
	}
	gone := 13 - len(hands[0])
	st, err := play.NewEndgamePosition(hands, c, contract.NoneVul, leader,
		[4]int{gone / 2, (gone + 1) / 2, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestParseTier(t *testing.T) {
	is := is.New(t)
	for _, tier := range []Tier{Beginner, Intermediate, Advanced, Expert} {
		got, err := ParseTier(tier.String())
		is.NoErr(err)
		is.Equal(got, tier)
	}
	got, err := ParseTier("ADVANCED")
	is.NoErr(err)
	is.Equal(got, Advanced)
	_, err = ParseTier("grandmaster")
	is.True(err != nil)
}

func TestNewCoversEveryTier(t *testing.T) {
	is := is.New(t)
	cfg := config.Default()
	for _, tier := range []Tier{Beginner, Intermediate, Advanced, Expert} {
		s, err := New(tier, cfg)
		is.NoErr(err)
		is.Equal(s.Tier(), tier)
		is.True(s.Name() != "")
	}
}

func TestHeuristicWinsCheaply(t *testing.T) {
	is := is.New(t)
	// East has beaten the ♠5 lead with the ♠J; South holds three higher
	// spades and should spend the queen, not the ace.
	hands := [4][]card.Card{
		card.North: cardsOf("♠5", "♦2", "♦3"),
		card.East:  cardsOf("♠J", "♦5", "♦6"),
		card.South: cardsOf("♠A", "♠K", "♠Q"),
		card.West:  cardsOf("♠4", "♦8", "♦9"),
	}
	st := position(t, hands, "3NT by S", card.North)
	is.NoErr(st.PlayCard(card.MustParse("♠5")))
	is.NoErr(st.PlayCard(card.MustParse("♠J")))

	h := &Heuristic{}
	got, err := h.ChooseCard(context.Background(), st, card.South)
	is.NoErr(err)
	is.Equal(got, card.MustParse("♠Q"))
}

func TestHeuristicLosesCheaply(t *testing.T) {
	is := is.New(t)
	// South cannot beat the ace and must follow: throw the smallest spade.
	hands := [4][]card.Card{
		card.North: cardsOf("♠A", "♦2", "♦3"),
		card.East:  cardsOf("♠J", "♦5", "♦6"),
		card.South: cardsOf("♠K", "♠Q", "♠7"),
		card.West:  cardsOf("♠4", "♦8", "♦9"),
	}
	st := position(t, hands, "3NT by S", card.North)
	is.NoErr(st.PlayCard(card.MustParse("♠A")))
	is.NoErr(st.PlayCard(card.MustParse("♠J")))

	h := &Heuristic{}
	got, err := h.ChooseCard(context.Background(), st, card.South)
	is.NoErr(err)
	is.Equal(got, card.MustParse("♠7"))
}

func TestHeuristicRuffsWithSmallestTrump(t *testing.T) {
	is := is.New(t)
	// Hearts are trumps and South is void in the led suit: the cheapest
	// ruff wins the trick, so the heart three is the card.
	hands := [4][]card.Card{
		card.North: cardsOf("♠A", "♠2", "♦3"),
		card.East:  cardsOf("♠K", "♠5", "♦6"),
		card.South: cardsOf("♥3", "♥8", "♣2"),
		card.West:  cardsOf("♠4", "♠7", "♦9"),
	}
	st := position(t, hands, "4♥ by S", card.North)
	is.NoErr(st.PlayCard(card.MustParse("♠A")))
	is.NoErr(st.PlayCard(card.MustParse("♠K")))

	h := &Heuristic{}
	got, err := h.ChooseCard(context.Background(), st, card.South)
	is.NoErr(err)
	is.Equal(got, card.MustParse("♥3"))
}

func TestHeuristicDiscardSparesBossCard(t *testing.T) {
	is := is.New(t)
	// Trumps are hearts. South, out of spades and trumps, must discard.
	// The ♦A is the top diamond left; the club, from an equally short
	// suit, goes instead.
	hands := [4][]card.Card{
		card.North: cardsOf("♠A", "♠2"),
		card.East:  cardsOf("♠K", "♠5"),
		card.South: cardsOf("♦A", "♣4"),
		card.West:  cardsOf("♦9", "♣9"),
	}
	st := position(t, hands, "4♥ by N", card.North)
	is.NoErr(st.PlayCard(card.MustParse("♠A")))
	is.NoErr(st.PlayCard(card.MustParse("♠K")))

	h := &Heuristic{}
	got, err := h.ChooseCard(context.Background(), st, card.South)
	is.NoErr(err)
	is.Equal(got, card.MustParse("♣4"))
}

func TestHeuristicLeadsLowFromLongestSideSuit(t *testing.T) {
	is := is.New(t)
	// Spades are trumps; diamonds are South's longest side suit.
	hands := [4][]card.Card{
		card.North: cardsOf("♣A", "♣2", "♥3", "♥4"),
		card.East:  cardsOf("♣K", "♣5", "♥6", "♥7"),
		card.South: cardsOf("♠A", "♦7", "♦5", "♦2"),
		card.West:  cardsOf("♣4", "♣7", "♥9", "♥T"),
	}
	st := position(t, hands, "4♠ by S", card.South)

	h := &Heuristic{}
	got, err := h.ChooseCard(context.Background(), st, card.South)
	is.NoErr(err)
	is.Equal(got, card.MustParse("♦2"))
}

func TestHeuristicPlaysFullHandLegally(t *testing.T) {
	is := is.New(t)
	c, err := contract.Parse("4♥ by S")
	is.NoErr(err)

	h := &Heuristic{}
	for i := 0; i < 5; i++ {
		deal := card.RandomDeal()
		st, err := play.StartPlay(deal, c, contract.NoneVul, false)
		is.NoErr(err)
		for !st.Over() {
			seat := st.NextToPlay()
			chosen, err := h.ChooseCard(context.Background(), st, seat)
			is.NoErr(err)
			is.NoErr(st.PlayCard(chosen))
		}
		won := 0
		for _, s := range card.Seats {
			won += st.TricksWon(s)
		}
		is.Equal(won, 13)
	}
}

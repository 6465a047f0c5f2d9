package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/play"
)

// Heuristic is the beginner tier: a stateless one-ply card chooser. It
// never looks past the current trick.
//
// Leading, it plays low from its longest non-trump suit. Following, it
// wins as cheaply as it can (ruffing counts as winning) or loses as
// cheaply as it can. Discarding, it throws from its shortest non-trump
// suit but hangs on to a suit's top remaining card unless nothing else is
// left.
type Heuristic struct{}

func (h *Heuristic) ChooseCard(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error) {
	if st.NextToPlay() != seat {
		return card.Card{}, fmt.Errorf("%v is not on turn (%v is)", seat, st.NextToPlay())
	}
	legal := st.LegalPlays()
	if len(legal) == 0 {
		return card.Card{}, errors.New("no legal plays: hand is out of cards")
	}
	if len(legal) == 1 {
		return legal[0], nil
	}
	trump, hasTrump := st.Contract().TrumpSuit()

	if len(st.CurrentTrick()) == 0 {
		return h.lead(legal, trump, hasTrump), nil
	}

	winners := lo.Filter(legal, func(c card.Card, _ int) bool {
		return st.Beats(c)
	})
	if len(winners) > 0 {
		return lowestByRank(winners), nil
	}

	ledSuit := st.CurrentTrick()[0].Card.Suit
	if legal[0].Suit == ledSuit {
		// Following suit and beaten either way.
		return lowestByRank(legal), nil
	}
	return h.discard(st, legal, trump, hasTrump), nil
}

// lead picks low from the longest suit, avoiding the trump suit while any
// side suit remains.
func (h *Heuristic) lead(legal []card.Card, trump card.Suit, hasTrump bool) card.Card {
	candidates := legal
	if hasTrump {
		side := lo.Filter(legal, func(c card.Card, _ int) bool {
			return c.Suit != trump
		})
		if len(side) > 0 {
			candidates = side
		}
	}
	counts := map[card.Suit]int{}
	for _, c := range candidates {
		counts[c.Suit]++
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case counts[c.Suit] > counts[best.Suit]:
			best = c
		case counts[c.Suit] == counts[best.Suit] && c.Suit == best.Suit && c.Rank < best.Rank:
			best = c
		}
	}
	return best
}

// discard throws from the shortest side suit, sparing any card that is the
// highest one still unplayed in its suit. If every choice is such a boss
// card the shortest-suit rule alone decides.
func (h *Heuristic) discard(st *play.State, legal []card.Card, trump card.Suit, hasTrump bool) card.Card {
	candidates := legal
	if hasTrump {
		side := lo.Filter(legal, func(c card.Card, _ int) bool {
			return c.Suit != trump
		})
		if len(side) > 0 {
			candidates = side
		}
	}
	counts := map[card.Suit]int{}
	for _, c := range candidates {
		counts[c.Suit]++
	}
	spareable := lo.Filter(candidates, func(c card.Card, _ int) bool {
		return !isBoss(st, c)
	})
	if len(spareable) > 0 {
		candidates = spareable
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case counts[c.Suit] < counts[best.Suit]:
			best = c
		case counts[c.Suit] == counts[best.Suit] && c.Rank < best.Rank:
			best = c
		}
	}
	return best
}

// isBoss reports whether no higher card of c's suit remains unplayed in
// any hand.
func isBoss(st *play.State, c card.Card) bool {
	for _, seat := range card.Seats {
		for _, other := range st.Remaining(seat) {
			if other.Suit == c.Suit && other.Rank > c.Rank {
				return false
			}
		}
	}
	return true
}

func lowestByRank(cards []card.Card) card.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < best.Rank {
			best = c
		}
	}
	return best
}

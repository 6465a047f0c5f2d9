package minimax

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/play"
)

// Player selects cards by alpha-beta search. It keeps one zobrist table and
// one transposition table for its lifetime, so deepening work from earlier
// tricks of the same hand is reused. A Player holds no reference to any
// game; every call gets the state passed in.
type Player struct {
	depth         int
	budget        time.Duration
	ttMemFraction float64

	once    sync.Once
	zobrist *Zobrist
	ttable  *TranspositionTable
}

// NewPlayer builds a search player. depth is in individual card plays;
// budget bounds one selection, zero meaning no time limit.
func NewPlayer(depth int, budget time.Duration, ttMemFraction float64) *Player {
	if depth < 1 {
		depth = 1
	}
	return &Player{depth: depth, budget: budget, ttMemFraction: ttMemFraction}
}

func (p *Player) Depth() int {
	return p.depth
}

func (p *Player) String() string {
	return fmt.Sprintf("alpha-beta(%d plies)", p.depth)
}

func (p *Player) initTables() {
	p.zobrist = &Zobrist{}
	p.zobrist.Initialize()
	p.ttable = &TranspositionTable{}
	frac := p.ttMemFraction
	if frac <= 0 {
		frac = 0.05
	}
	p.ttable.Reset(frac)
}

// ChooseCard picks a card for the seat on turn. The live state is copied
// and simulated on; it is never mutated. The result is always a member of
// the state's legal plays: if the budget expires before any search
// iteration completes, the lowest-ranked legal card is played rather than
// failing the hand.
func (p *Player) ChooseCard(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error) {
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
	p.once.Do(p.initTables)

	sim := st.Copy()
	sim.SetBackupMode(play.SimulationMode)
	cardsLeft := 0
	for _, s := range card.Seats {
		cardsLeft += sim.Hand(s).NumRemaining()
	}
	plies := p.depth
	if plies > cardsLeft {
		plies = cardsLeft
	}
	sim.SetStateStackLength(plies + 2)

	if p.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.budget)
		defer cancel()
	}

	solver := &Solver{}
	if err := solver.Init(sim); err != nil {
		return card.Card{}, err
	}
	solver.SetZobrist(p.zobrist)
	solver.SetTranspositionTable(p.ttable)

	val, best, err := solver.Solve(ctx, plies)
	if err != nil {
		// Nothing searched in time; lose as cheaply as possible instead of
		// aborting the hand.
		log.Warn().AnErr("solve-err", err).Str("seat", seat.String()).
			Msg("search-budget-exhausted-playing-fallback")
		return lowestCard(legal), nil
	}
	log.Debug().Str("seat", seat.String()).Str("card", best.String()).
		Int16("val", val).Msg("search-selected")
	return best, nil
}

func lowestCard(cards []card.Card) card.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < best.Rank {
			best = c
		}
	}
	return best
}

// Package minimax is a bounded-depth adversarial search over the remaining
// card plays of one hand. The two partnerships are the opposing agents:
// declarer's side maximizes its trick spread, the defense minimizes it.
//
// The search sees all four hands. This is the double-dummy simplification
// the tutoring tiers are built on; a defender with this knowledge plays
// better than any human could with closed hands. Do not reuse this solver
// anywhere genuine hidden-information defense is required.
package minimax

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/play"
)

const HugeNumber = int16(32767)

// trickScale scales spreads so leaf estimates keep sub-trick resolution.
const trickScale = 100

// HashMoveOffset forces the transposition-table move to be searched first.
const HashMoveOffset = int16(6000)

// winnerOffset orders probable trick-winning cards ahead of everything
// else, cheapest winner first.
const winnerOffset = int16(1000)

var ErrNoSolution = errors.New("no move searched within budget")

// PVLine is the principal variation: the best play sequence found so far.
type PVLine struct {
	Moves []card.Card
	score int16
}

func (pv *PVLine) Clear() {
	pv.Moves = nil
}

// Update replaces the line with a new best move followed by the best
// continuation found below it.
func (pv *PVLine) Update(move card.Card, newPVLine PVLine, score int16) {
	pv.Clear()
	pv.Moves = append(pv.Moves, move)
	pv.Moves = append(pv.Moves, newPVLine.Moves...)
	pv.score = score
}

func (pv PVLine) NLBString() string {
	s := fmt.Sprintf("PV; val %d; ", pv.score)
	for i := range pv.Moves {
		s += fmt.Sprintf("%d: %v; ", i+1, pv.Moves[i])
	}
	return s
}

type scoredMove struct {
	card     card.Card
	estimate int16
}

// Solver runs iterative-deepening alpha-beta on a simulation-mode copy of
// the live state. The caller owns the copy; Solve never touches the
// original game.
type Solver struct {
	zobrist *Zobrist
	game    *play.State
	ttable  *TranspositionTable

	transpositionTableOptim bool
	iterativeDeepeningOptim bool

	declarer      card.Seat
	rootMoves     []*scoredMove
	initialSpread int16

	principalVariation PVLine
	bestPVValue        int16
	haveResult         bool

	currentIDDepth int
	requestedPlies int
	// nodes is atomic only so the watchdog goroutine can read it while the
	// search goroutine writes.
	nodes atomic.Uint64
}

func max(x, y int16) int16 {
	if x < y {
		return y
	}
	return x
}

func min(x, y int16) int16 {
	if x < y {
		return x
	}
	return y
}

// Init points the solver at a simulation-mode state. The zobrist table and
// transposition table may be replaced afterwards so a player can reuse them
// across calls within one hand.
func (s *Solver) Init(g *play.State) error {
	if g == nil {
		return errors.New("nil game state")
	}
	s.game = g
	s.declarer = g.Contract().Declarer
	s.transpositionTableOptim = true
	s.iterativeDeepeningOptim = true
	return nil
}

// SetZobrist replaces the hash tables. Must be paired with the
// transposition table that was filled under the same tables.
func (s *Solver) SetZobrist(z *Zobrist) {
	s.zobrist = z
}

func (s *Solver) SetTranspositionTable(tt *TranspositionTable) {
	s.ttable = tt
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

// scaledSpread is the declarer-side trick spread of resolved tricks.
func (s *Solver) scaledSpread() int16 {
	return int16((s.game.DeclarerTricks() - s.game.DefenderTricks()) * trickScale)
}

// evaluate estimates the final spread when the depth limit cuts the search
// off: the resolved spread plus a split of the remaining tricks weighted by
// each side's remaining high-card strength and trump length.
func (s *Solver) evaluate() int16 {
	spread := s.scaledSpread()
	remaining := s.game.TricksRemaining()
	if remaining == 0 {
		return spread
	}
	trump, hasTrump := s.game.Contract().TrumpSuit()
	var power [2]float64 // declarer side, defender side
	for _, seat := range card.Seats {
		p := 0.0
		for _, c := range s.game.Remaining(seat) {
			p += float64(c.Rank.HCP())
			if hasTrump && c.Suit == trump {
				p += 1.5
			}
		}
		if seat.SameSide(s.declarer) {
			power[0] += p
		} else {
			power[1] += p
		}
	}
	declShare := 0.5
	if total := power[0] + power[1]; total > 0 {
		declShare = power[0] / total
	}
	estDecl := declShare * float64(remaining)
	est := (2*estDecl - float64(remaining)) * trickScale
	return spread + int16(math.Round(est))
}

// orderedPlays generates and orders the side-to-move's legal cards:
// probable trick winners first (cheapest winner leading), then low cards,
// with the hash move forced to the front.
func (s *Solver) orderedPlays(ttMove card.Card, haveTTMove bool) []*scoredMove {
	legal := s.game.LegalPlays()
	moves := make([]*scoredMove, len(legal))
	for i, c := range legal {
		est := int16(card.Ace - c.Rank)
		if s.game.Beats(c) {
			est += winnerOffset
		}
		if haveTTMove && c == ttMove {
			est += HashMoveOffset
		}
		moves[i] = &scoredMove{card: c, estimate: est}
	}
	sort.Slice(moves, func(i, j int) bool {
		return moves[i].estimate > moves[j].estimate
	})
	return moves
}

func (s *Solver) alphabeta(ctx context.Context, nodeKey uint64, depth int, α, β int16, pv *PVLine) (int16, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	g := s.game
	ourSpread := s.scaledSpread()
	alphaOrig := α
	betaOrig := β

	var ttMove card.Card
	haveTTMove := false
	if s.transpositionTableOptim {
		entry := s.ttable.lookup(nodeKey)
		if entry.valid() && entry.depth() >= uint8(depth) {
			// Stored scores are spread-independent; add ours back.
			score := entry.score + ourSpread
			switch entry.flag() {
			case TTExact:
				return score, nil
			case TTLower:
				α = max(α, score)
			case TTUpper:
				β = min(β, score)
			}
			if α >= β {
				return score, nil
			}
			if entry.play != 0 {
				ttMove = card.FromIndex(int(entry.play) - 1)
				haveTTMove = true
			}
		}
	}

	if depth == 0 || g.Over() {
		return s.evaluate(), nil
	}

	maximizing := g.NextToPlay().SameSide(s.declarer)
	children := s.orderedPlays(ttMove, haveTTMove)
	childPV := PVLine{}
	bestValue := HugeNumber
	if maximizing {
		bestValue = -HugeNumber
	}
	var bestMove card.Card
	haveBest := false

	for _, child := range children {
		if err := g.PlayCard(child.card); err != nil {
			return 0, err
		}
		s.nodes.Add(1)
		childKey := s.zobrist.Hash(g)
		value, err := s.alphabeta(ctx, childKey, depth-1, α, β, &childPV)
		if uerr := g.UnplayLastMove(); uerr != nil {
			return 0, uerr
		}
		if err != nil {
			return value, err
		}
		if maximizing {
			if value > bestValue || !haveBest {
				bestValue = value
				bestMove = child.card
				haveBest = true
				pv.Update(child.card, childPV, bestValue-s.initialSpread)
			}
			α = max(α, bestValue)
		} else {
			if value < bestValue || !haveBest {
				bestValue = value
				bestMove = child.card
				haveBest = true
				pv.Update(child.card, childPV, bestValue-s.initialSpread)
			}
			β = min(β, bestValue)
		}
		if α >= β {
			break // cut-off
		}
		childPV.Clear()
	}

	if s.transpositionTableOptim && haveBest {
		entry := TableEntry{score: bestValue - ourSpread}
		var flag uint8
		switch {
		case bestValue <= alphaOrig:
			flag = TTUpper
		case bestValue >= betaOrig:
			flag = TTLower
		default:
			flag = TTExact
		}
		entry.flagAndDepth = flag<<6 + uint8(depth)
		entry.play = uint8(bestMove.Index()) + 1
		s.ttable.store(nodeKey, entry)
	}
	return bestValue, nil
}

// remainingHonors counts the root seat's unplayed honors in a suit, for
// the discard tie-break.
func (s *Solver) remainingHonors(seat card.Seat, suit card.Suit) int {
	n := 0
	for _, c := range s.game.Hand(seat).RemainingIn(suit) {
		if c.Rank >= card.Jack {
			n++
		}
	}
	return n
}

// tieBreakPrefer decides between root moves of equal searched value:
// lowest rank first, and between equal ranks the card from the suit with
// the fewest remaining high cards. This is what keeps a guaranteed winner
// in hand when several moves score the same.
func (s *Solver) tieBreakPrefer(seat card.Seat, c, best card.Card) bool {
	if c.Rank != best.Rank {
		return c.Rank < best.Rank
	}
	return s.remainingHonors(seat, c.Suit) < s.remainingHonors(seat, best.Suit)
}

// confirmEqual re-searches a root move with the window (target-1, target+1)
// and reports whether its value is exactly target. A value strictly inside
// an open window is exact, never a bound.
func (s *Solver) confirmEqual(ctx context.Context, c card.Card, depth int, target int16, pv *PVLine) (bool, error) {
	g := s.game
	if err := g.PlayCard(c); err != nil {
		return false, err
	}
	s.nodes.Add(1)
	childKey := s.zobrist.Hash(g)
	pv.Clear()
	value, err := s.alphabeta(ctx, childKey, depth-1, target-1, target+1, pv)
	if uerr := g.UnplayLastMove(); uerr != nil {
		return false, uerr
	}
	if err != nil {
		return false, err
	}
	return value == target, nil
}

// searchRoot runs one fixed-depth search over the root moves, which carry
// their ordering from the previous iteration.
func (s *Solver) searchRoot(ctx context.Context, depth int) error {
	g := s.game
	rootSeat := g.NextToPlay()
	maximizing := rootSeat.SameSide(s.declarer)
	α := -HugeNumber
	β := HugeNumber

	bestValue := HugeNumber
	if maximizing {
		bestValue = -HugeNumber
	}
	var bestMove card.Card
	haveBest := false
	pv := PVLine{}
	childPV := PVLine{}

	for _, rm := range s.rootMoves {
		if err := g.PlayCard(rm.card); err != nil {
			return err
		}
		s.nodes.Add(1)
		childKey := s.zobrist.Hash(g)
		value, err := s.alphabeta(ctx, childKey, depth-1, α, β, &childPV)
		if uerr := g.UnplayLastMove(); uerr != nil {
			return uerr
		}
		if err != nil {
			return err
		}
		rm.estimate = value
		if !maximizing {
			rm.estimate = -value
		}

		better := !haveBest
		if haveBest {
			if maximizing {
				better = value > bestValue
			} else {
				better = value < bestValue
			}
			if !better && value == bestValue && s.tieBreakPrefer(rootSeat, rm.card, bestMove) {
				// With the window narrowed to the best value, a strictly
				// worse move can fail low (or high, minimizing) and come
				// back as exactly bestValue, which is a bound, not the
				// move's value. Re-search around bestValue and swap only
				// on confirmed equality.
				equal, cerr := s.confirmEqual(ctx, rm.card, depth, bestValue, &childPV)
				if cerr != nil {
					return cerr
				}
				better = equal
			}
		}
		if better {
			bestValue = value
			bestMove = rm.card
			haveBest = true
			pv.Update(rm.card, childPV, bestValue-s.initialSpread)
		}
		if maximizing {
			α = max(α, bestValue)
		} else {
			β = min(β, bestValue)
		}
		childPV.Clear()
	}
	if !haveBest {
		return ErrNoSolution
	}

	// Keep the best-first order for the next deepening iteration.
	sort.SliceStable(s.rootMoves, func(i, j int) bool {
		return s.rootMoves[i].estimate > s.rootMoves[j].estimate
	})
	s.principalVariation = pv
	s.bestPVValue = bestValue - s.initialSpread
	s.haveResult = true
	return nil
}

func (s *Solver) iterativelyDeepen(ctx context.Context, plies int) error {
	start := 1
	if !s.iterativeDeepeningOptim {
		start = plies
	}
	for p := start; p <= plies; p++ {
		s.currentIDDepth = p
		if err := s.searchRoot(ctx, p); err != nil {
			return err
		}
		log.Debug().Int("ply", p).Int16("val", s.bestPVValue).
			Str("pv", s.principalVariation.NLBString()).Msg("deepening-iteratively")
	}
	return nil
}

// Solve searches to at most the given number of plies (card plays) and
// returns the best card for the seat on turn with its evaluated spread
// delta. It honors the anytime contract: if the context expires mid-search
// the best move from the last completed iteration is returned rather than
// an error. ErrNoSolution is returned only when not even a 1-ply iteration
// finished.
func (s *Solver) Solve(ctx context.Context, plies int) (int16, card.Card, error) {
	if plies < 1 {
		return 0, card.Card{}, errors.New("need at least 1 ply")
	}
	tstart := time.Now()
	s.requestedPlies = plies
	s.initialSpread = s.scaledSpread()
	s.haveResult = false
	s.nodes.Store(0)
	if s.zobrist == nil {
		s.zobrist = &Zobrist{}
		s.zobrist.Initialize()
	}
	if s.ttable == nil {
		s.ttable = &TranspositionTable{}
		s.ttable.Reset(0.05)
	}

	legal := s.game.LegalPlays()
	if len(legal) == 0 {
		return 0, card.Card{}, errors.New("no legal plays to search")
	}
	s.rootMoves = s.orderedPlays(card.Card{}, false)

	g := &errgroup.Group{}
	done := make(chan bool)
	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	var searchErr error
	g.Go(func() error {
		searchErr = s.iterativelyDeepen(ctx, plies)
		done <- true
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, card.Card{}, err
	}

	if searchErr != nil {
		if !s.haveResult {
			log.Debug().AnErr("search-err", searchErr).Msg("no-iteration-completed")
			return 0, card.Card{}, ErrNoSolution
		}
		log.Debug().AnErr("search-err", searchErr).
			Int("completed-depth", s.currentIDDepth-1).
			Msg("budget-exhausted-returning-best-so-far")
	}
	log.Debug().
		Uint64("nodes", s.nodes.Load()).
		Uint64("ttable-created", s.ttable.created.Load()).
		Uint64("ttable-lookups", s.ttable.lookups.Load()).
		Uint64("ttable-hits", s.ttable.hits.Load()).
		Uint64("ttable-t2collisions", s.ttable.t2collisions.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return s.bestPVValue, s.principalVariation.Moves[0], nil
}

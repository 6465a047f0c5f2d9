package minimax

import (
	"lukechampine.com/frand"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/play"
)

const bignum = 1<<63 - 2

// Zobrist hashes a trick-play position: who still holds which card, which
// cards sit in the open trick and who played them, whose turn it is, and
// who led. Trick counts are deliberately not hashed; stored scores are made
// spread-independent instead, which keeps transpositions that differ only
// in the running total sharing an entry.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	held     [4][52]uint64
	trickPos [4][52]uint64
	onTurn   [4]uint64
	leader   [4]uint64
}

func (z *Zobrist) Initialize() {
	for seat := 0; seat < 4; seat++ {
		for idx := 0; idx < 52; idx++ {
			z.held[seat][idx] = frand.Uint64n(bignum) + 1
			z.trickPos[seat][idx] = frand.Uint64n(bignum) + 1
		}
		z.onTurn[seat] = frand.Uint64n(bignum) + 1
		z.leader[seat] = frand.Uint64n(bignum) + 1
	}
}

// Hash computes the full position key. At most 55 XORs; cheap enough that
// no incremental update is kept.
func (z *Zobrist) Hash(s *play.State) uint64 {
	key := uint64(0)
	for _, seat := range card.Seats {
		for _, c := range s.Remaining(seat) {
			key ^= z.held[seat][c.Index()]
		}
	}
	for _, pc := range s.CurrentTrick() {
		key ^= z.trickPos[pc.Seat][pc.Card.Index()]
	}
	key ^= z.onTurn[s.NextToPlay()]
	key ^= z.leader[s.TrickLeader()]
	return key
}

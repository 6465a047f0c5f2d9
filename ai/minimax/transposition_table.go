package minimax

import (
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 12

const bottom3ByteMask = (1 << 24) - 1
const depthMask = (1 << 6) - 1

// TableEntry packs a solved position into 12 bytes. Only the top 5 bytes of
// the hash are stored; the bottom 3 are implied by the bucket index.
type TableEntry struct {
	top4bytes    uint32
	score        int16
	fifthbyte    uint8
	flagAndDepth uint8
	// play is the encoded best card, card index + 1; 0 means none.
	play uint8
}

// fullHash reconstructs the 64-bit hash for this entry, given the bucket
// index holding the bottom bytes.
func (t TableEntry) fullHash(idx uint64) uint64 {
	return uint64(t.top4bytes)<<32 + uint64(t.fifthbyte)<<24 + (idx & bottom3ByteMask)
}

func (t TableEntry) flag() uint8 {
	return t.flagAndDepth >> 6
}

func (t TableEntry) depth() uint8 {
	return t.flagAndDepth & depthMask
}

func (t TableEntry) valid() bool {
	return t.flag() != 0
}

// TranspositionTable is a fixed-size, overwrite-on-store table. The solver
// is single-threaded within one hand, so no locking is needed; the stats
// counters are atomic only so a watchdog goroutine may read them.
type TranspositionTable struct {
	table        []TableEntry
	sizePowerOf2 int
	sizeMask     uint64

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
	// "type 2" collisions: two positions sharing the same bottom bytes.
	t2collisions atomic.Uint64
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.lookups.Add(1)
	idx := zval & t.sizeMask
	entry := t.table[idx]
	if entry.fullHash(idx) != zval {
		if entry.valid() {
			t.t2collisions.Add(1)
		}
		return TableEntry{}
	}
	t.hits.Add(1)
	return entry
}

func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	idx := zval & t.sizeMask
	tentry.top4bytes = uint32(zval >> 32)
	tentry.fifthbyte = uint8(zval >> 24)
	t.table[idx] = tentry
	t.created.Add(1)
}

// Reset sizes the table to a fraction of system memory and clears it. The
// size is at least 2^24 entries so the 5-byte hash proxy stays sound.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	t.sizePowerOf2 = int(math.Log2(desiredNElems))
	if t.sizePowerOf2 < 24 {
		t.sizePowerOf2 = 24
	}
	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	if t.table != nil && len(t.table) == numElems {
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}
	log.Debug().Int("num-elems", numElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")

	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

package search

import (
	"fmt"
	"math/bits"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/eval"
	"go.uber.org/atomic"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	LowerBound Bound = iota
	UpperBound
	ExactBound
)

func (b Bound) String() string {
	switch b {
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	case ExactBound:
		return "Exact"
	default:
		return "?"
	}
}

// HashEntry is the unpacked form of a transposition table entry.
type HashEntry struct {
	Move  board.Move
	Score eval.Score
	Depth int
	Bound Bound
}

// HashTable is a shared, lock-free transposition table over 64-bit position
// hashes. Each slot is a single 64-bit word accessed with relaxed atomics:
//
//	0x 00     00     0000   0000  0000
//	   bound  depth  score  move  key
//
// Torn reads between fields are impossible within one atomic word; a stale
// or colliding slot is rejected by the 16-bit key match. Scores are stored in
// the root frame: mate scores are adjusted by ply on insertion and retrieval
// (exact inverses), so they compare correctly across nodes.
type HashTable struct {
	table    []atomic.Uint64
	capacity uint64
	filled   atomic.Uint64
}

// NewHashTable creates a table of the given size in mebibytes, rounded down
// to a power of two.
func NewHashTable(mib uint64) *HashTable {
	t := &HashTable{}
	t.Resize(mib)
	return t
}

// Resize sets the capacity to a power-of-two number of entries fitting in
// the given mebibytes, discarding all entries.
func (t *HashTable) Resize(mib uint64) {
	if mib == 0 {
		mib = 1
	}
	mib = 1 << (63 - bits.LeadingZeros64(mib))

	t.capacity = mib << 20 / 8
	t.filled.Store(0)
	t.table = make([]atomic.Uint64, t.capacity)
}

// Clear zeroes every slot.
func (t *HashTable) Clear() {
	for i := range t.table {
		t.table[i].Store(0)
	}
	t.filled.Store(0)
}

// Capacity returns the number of entry slots.
func (t *HashTable) Capacity() uint64 {
	return t.capacity
}

// Filled returns the number of occupied slots.
func (t *HashTable) Filled() uint64 {
	return t.filled.Load()
}

// Hashfull returns the utilization in permill, as reported over UCI.
func (t *HashTable) Hashfull() int {
	return int(t.Filled() * 1000 / t.capacity)
}

// Probe returns the entry for the given hash, if present, with mate scores
// translated back into the current-node frame.
func (t *HashTable) Probe(hash board.ZobristHash, ply int) (HashEntry, bool) {
	word := t.table[uint64(hash)&(t.capacity-1)].Load()
	if uint16(word) != uint16(hash>>48) {
		return HashEntry{}, false
	}

	entry := unpack(word)
	entry.Score -= mateAdjustment(entry.Score, ply)
	return entry, true
}

// Push stores an entry, translating mate scores into the root frame.
// Replacement: always replace an empty or foreign slot, else only when the
// new depth is not shallower. The read-then-write pair is not atomic; a
// losing interleave merely forfeits one slot of ordering quality.
func (t *HashTable) Push(hash board.ZobristHash, move board.Move, depth int, bound Bound, score eval.Score, ply int) {
	slot := &t.table[uint64(hash)&(t.capacity-1)]
	old := slot.Load()

	if uint16(old) == uint16(hash>>48) && depth < unpack(old).Depth {
		return // skip: deeper entry for same position
	}

	score += mateAdjustment(score, ply)
	if old == 0 {
		t.filled.Inc()
	}
	slot.Store(pack(uint16(hash>>48), move, score, depth, bound))
}

func pack(key uint16, move board.Move, score eval.Score, depth int, bound Bound) uint64 {
	return uint64(key) |
		uint64(move)<<16 |
		uint64(uint16(score))<<32 |
		uint64(uint8(int8(depth)))<<48 |
		uint64(bound)<<56
}

func unpack(word uint64) HashEntry {
	return HashEntry{
		Move:  board.Move(word >> 16),
		Score: eval.Score(int16(word >> 32)),
		Depth: int(int8(word >> 48)),
		Bound: Bound(word >> 56),
	}
}

// mateAdjustment translates mate scores between frames: scores near either
// mate bound move away from zero by ply at insertion and back at retrieval.
func mateAdjustment(score eval.Score, ply int) eval.Score {
	switch {
	case score > eval.MateScore:
		return eval.Score(ply)
	case score < -eval.MateScore:
		return eval.Score(-ply)
	default:
		return 0
	}
}

func (t *HashTable) String() string {
	return fmt.Sprintf("TT[%v entries @ %v%%]", t.capacity, t.Hashfull()/10)
}

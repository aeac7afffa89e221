package search

import (
	"fmt"
	"time"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/eval"
)

// Variation is a principal variation under construction during search. Each
// node clears its line and rebuilds it from the best move plus the child's
// line.
type Variation struct {
	moves []board.Move
}

// Clear empties the line.
func (v *Variation) Clear() {
	v.moves = v.moves[:0]
}

// First returns the first move of the line, if any.
func (v *Variation) First() (board.Move, bool) {
	if len(v.moves) == 0 {
		return 0, false
	}
	return v.moves[0], true
}

// Update replaces the line with the given move followed by the sub-line.
func (v *Variation) Update(m board.Move, sub *Variation) {
	v.moves = append(v.moves[:0], m)
	v.moves = append(v.moves, sub.moves...)
}

// Moves returns a copy of the line.
func (v *Variation) Moves() []board.Move {
	return append([]board.Move(nil), v.moves...)
}

// PV represents the principal variation for some search depth.
type PV struct {
	Depth    int           // depth of search
	Seldepth int           // maximum ply reached, including quiescence
	Moves    []board.Move  // principal variation
	Score    eval.Score    // evaluation at depth
	Nodes    uint64        // interior/leaf nodes searched
	Time     time.Duration // time taken by search
	Hashfull int           // hash table utilization in permill
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v seldepth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v",
		p.Depth, p.Seldepth, p.Score, p.Nodes, p.Time, p.Hashfull/10, board.PrintMoves(p.Moves))
}

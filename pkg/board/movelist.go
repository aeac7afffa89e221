package board

import "fmt"

// maxMoves bounds the number of pseudo-legal moves in any reachable position.
// The known maximum is 218; promotions inflate the pseudo-legal count.
const maxMoves = 256

// ScoredMove is a move with its ordering score.
type ScoredMove struct {
	Move  Move
	Score int16
}

// MoveList is a fixed-capacity list of moves with score-and-pick-best
// iteration. Picking removes one element per call by partial selection sort,
// which is cheaper than a full sort when the search cuts off early.
type MoveList struct {
	moves  [maxMoves]ScoredMove
	len    int
	picked int
}

// Add appends a move with a zero score.
func (l *MoveList) Add(m Move) {
	l.moves[l.len] = ScoredMove{Move: m}
	l.len++
}

// Len returns the number of moves in the list.
func (l *MoveList) Len() int {
	return l.len
}

// At returns the i'th move in generation order.
func (l *MoveList) At(i int) Move {
	return l.moves[i].Move
}

// Score assigns a score to every move in the list.
func (l *MoveList) Score(fn func(Move) int16) {
	for i := 0; i < l.len; i++ {
		l.moves[i].Score = fn(l.moves[i].Move)
	}
}

// Pick returns the best-scored remaining move, if any. Each call removes the
// returned move from the remaining set.
func (l *MoveList) Pick() (ScoredMove, bool) {
	if l.picked == l.len {
		return ScoredMove{}, false
	}

	best := l.picked
	for i := l.picked + 1; i < l.len; i++ {
		if l.moves[i].Score > l.moves[best].Score {
			best = i
		}
	}
	l.moves[best], l.moves[l.picked] = l.moves[l.picked], l.moves[best]

	ret := l.moves[l.picked]
	l.picked++
	return ret, true
}

func (l *MoveList) String() string {
	if l.len == 0 {
		return "[size=0]"
	}
	return fmt.Sprintf("[top=%v, size=%v]", l.moves[0].Move, l.len)
}

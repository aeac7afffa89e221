package eval

import (
	"github.com/herohde/kestrel/pkg/board"
)

// Evaluator is a static position evaluator. The returned score is relative
// to the side to move.
type Evaluator interface {
	Evaluate(pos *board.Position) Score
}

// Tapered is the standard evaluator: a midgame/endgame blend of material and
// piece-square totals read from the position's incremental accumulators, plus
// pawn-structure terms served from a pawn-hash cache and an endgame king
// activity term. Not thread-safe; each search worker owns one.
type Tapered struct {
	pawns *PawnTable
}

func NewTapered() *Tapered {
	return &Tapered{pawns: NewPawnTable()}
}

func (e *Tapered) Evaluate(pos *board.Position) Score {
	phase := int32(pos.Phase())
	if phase > board.TotalPhase {
		phase = board.TotalPhase
	}

	mat := taper(phase,
		pos.MaterialMG(board.White)-pos.MaterialMG(board.Black),
		pos.MaterialEG(board.White)-pos.MaterialEG(board.Black))
	pst := taper(phase,
		pos.PieceSquareMG(board.White)-pos.PieceSquareMG(board.Black),
		pos.PieceSquareEG(board.White)-pos.PieceSquareEG(board.Black))

	pawnMG, pawnEG := e.pawns.structure(pos)
	pwn := taper(phase, pawnMG, pawnEG)

	score := mat + pst + pwn
	if score != 0 {
		score += kingActivity(pos, phase, score < 0)
	}

	// Negamax-relative: negate for black to move.
	if pos.Turn() == board.Black {
		return -score
	}
	return score
}

// taper blends a midgame and endgame value by the clamped phase counter.
func taper(phase int32, mg, eg int16) Score {
	return Score((phase*int32(mg) + (board.TotalPhase-phase)*int32(eg)) / board.TotalPhase)
}

// centreManhattanDistance is indexed by square, for driving the losing king
// to the edge in won endgames.
var centreManhattanDistance = [board.NumSquares]int16{
	6, 5, 4, 3, 3, 4, 5, 6,
	5, 4, 3, 2, 2, 3, 4, 5,
	4, 3, 2, 1, 1, 2, 3, 4,
	3, 2, 1, 0, 0, 1, 2, 3,
	3, 2, 1, 0, 0, 1, 2, 3,
	4, 3, 2, 1, 1, 2, 3, 4,
	5, 4, 3, 2, 2, 3, 4, 5,
	6, 5, 4, 3, 3, 4, 5, 6,
}

// kingActivity is the endgame mop-up term for the side already ahead: push
// the losing king to the edge and bring the winning king close.
func kingActivity(pos *board.Position, phase int32, blackWinning bool) Score {
	winner := board.White
	if blackWinning {
		winner = board.Black
	}
	loserKing := pos.KingSquare(winner.Opponent())
	winnerKing := pos.KingSquare(winner)

	cmd := centreManhattanDistance[loserKing]
	md := abs(int16(loserKing.File())-int16(winnerKing.File())) +
		abs(int16(loserKing.Rank())-int16(winnerKing.Rank()))

	score := taper(phase, 0, 5*cmd+2*(14-md))
	if winner == board.Black {
		return -score
	}
	return score
}

func abs(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

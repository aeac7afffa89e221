package search

import (
	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/eval"
)

// quiesce resolves tactical noise at the horizon by searching captures only,
// in MVV-LVA order, until the position is quiet. Fail-soft: the returned
// score is at least the stand-pat evaluation.
func (r *runAlphaBeta) quiesce(alpha, beta eval.Score) eval.Score {
	r.qnodes++
	if r.ply > r.seldepth {
		r.seldepth = r.ply
	}

	best := r.eval.Evaluate(r.pos)
	if best >= beta {
		return best
	}
	alpha = eval.Max(alpha, best)

	var captures board.MoveList
	r.pos.GenerateMoves(&captures, false)
	captures.Score(r.scoreCapture)

	r.ply++
	for {
		m, ok := captures.Pick()
		if !ok {
			break
		}
		if !r.pos.PushMove(m.Move) {
			continue // skip: not legal
		}

		score := -r.quiesce(-beta, -alpha)
		r.pos.PopMove()

		if score > best {
			best = score
			if score >= beta {
				break // cutoff
			}
			alpha = eval.Max(alpha, score)
		}
	}
	r.ply--

	return best
}

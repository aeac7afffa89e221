// Package search contains search functionality and utilities.
package search

import (
	"context"
	"errors"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// ErrHalted is an error indicating that the search was halted.
var ErrHalted = errors.New("search halted")

// MaxPly is the maximum search distance from the root.
const MaxPly = 96

// Context holds the shared state of a search: the transposition table and
// the cooperative cancellation watchdog.
type Context struct {
	TT     *HashTable
	Limits *Limits
}

// Search implements search of the game tree to a given depth. It expects
// exclusive ownership of the position for the duration of the call.
type Search interface {
	Search(ctx context.Context, sctx *Context, pos *board.Position, depth int) (PV, error)
}

// Move ordering scores. The hash move sorts first, then captures by
// MVV-LVA, then quiet moves.
const (
	hashMoveScore  int16 = 30000
	quietMoveScore int16 = 0
)

// mvvLVA is indexed [victim][attacker]: a more valuable victim dominates,
// and a less valuable attacker breaks the tie.
var mvvLVA = [board.NumPieces][board.NumPieces]int16{
	{15, 14, 13, 12, 11, 10}, // victim pawn
	{25, 24, 23, 22, 21, 20}, // victim knight
	{35, 34, 33, 32, 31, 30}, // victim bishop
	{45, 44, 43, 42, 41, 40}, // victim rook
	{55, 54, 53, 52, 51, 50}, // victim queen
	{0, 0, 0, 0, 0, 0},       // victim king (not reachable)
}

// AlphaBeta implements fixed-depth negamax search with alpha-beta pruning,
// quiescence, transposition-table probing, hash-move ordering and late-move
// reductions. Iterative deepening is driven by searchctl.Iterative.
type AlphaBeta struct {
	Eval eval.Evaluator
}

func (s AlphaBeta) Search(ctx context.Context, sctx *Context, pos *board.Position, depth int) (PV, error) {
	run := &runAlphaBeta{
		pos:    pos,
		tt:     sctx.TT,
		limits: sctx.Limits,
		eval:   evalIfNotSet(s.Eval),
	}

	line := &Variation{}
	score := run.search(-eval.MaxScore, eval.MaxScore, depth, pos.InCheck(), line)
	if sctx.Limits.Aborting() || contextx.IsCancelled(ctx) {
		return PV{}, ErrHalted
	}

	return PV{
		Depth:    depth,
		Seldepth: run.seldepth,
		Moves:    line.Moves(),
		Score:    score,
		Nodes:    run.nodes + run.qnodes,
	}, nil
}

type runAlphaBeta struct {
	pos    *board.Position
	tt     *HashTable
	limits *Limits
	eval   eval.Evaluator

	ply           int
	nodes, qnodes uint64
	seldepth      int
}

// search returns the negamax score of the position, relative to the side to
// move. The abort sentinel 0 is unambiguous: the driver discards the entire
// iteration when the abort flag is set.
func (r *runAlphaBeta) search(alpha, beta eval.Score, depth int, inCheck bool, line *Variation) eval.Score {
	// The counter passed to the watchdog must tick by one between calls so
	// the every-1024-nodes sampling cannot skip over its trigger.
	if r.limits.Aborting() || r.limits.ShouldAbort(r.nodes) {
		return eval.AbortScore
	}

	line.Clear()

	// Draws are scored at the node, before any table interaction: repetition
	// counts are path-dependent and must not be cached.
	if r.pos.IsDrawBy50() || r.pos.IsDrawByRepetition(2) || r.pos.HasInsufficientMaterial() {
		return eval.DrawScore
	}

	if depth <= 0 || r.ply == MaxPly {
		return r.quiesce(alpha, beta)
	}

	r.nodes++

	pvNode := beta > alpha+1
	hash := r.pos.Hash()
	hashMove := board.Move(0)
	writeToHash := true

	if entry, ok := r.tt.Probe(hash, r.ply); ok {
		// Only a strictly deeper search may overwrite the entry.
		writeToHash = depth > entry.Depth
		hashMove = entry.Move

		if !pvNode && !writeToHash {
			switch entry.Bound {
			case LowerBound:
				if entry.Score >= beta {
					return entry.Score
				}
			case UpperBound:
				if entry.Score <= alpha {
					return entry.Score
				}
			default:
				return entry.Score
			}
		}
	}

	var moves board.MoveList
	r.pos.GenerateMoves(&moves, true)
	moves.Score(func(m board.Move) int16 { return r.scoreMove(m, hashMove) })

	bestMove := hashMove
	bestScore := -eval.MaxScore
	bound := UpperBound
	legal := 0
	sub := &Variation{}

	// Late-move reductions apply below the root when not in check.
	doLMR := depth > 1 && r.ply > 0 && !inCheck

	r.ply++
	for {
		m, ok := moves.Pick()
		if !ok {
			break
		}
		if !r.pos.PushMove(m.Move) {
			continue // skip: not legal
		}
		legal++

		check := r.pos.InCheck()

		reduce := 0
		if doLMR && !check && m.Score == quietMoveScore {
			reduce = 1
		}

		var score eval.Score
		if legal == 1 {
			// Full-window search for the first move, expected best by ordering.
			score = -r.search(-beta, -alpha, depth-1, check, sub)
		} else {
			// Null-window search to cheaply prove the move worse than the
			// current best; re-search on a fail-high.
			score = -r.search(-alpha-1, -alpha, depth-1-reduce, check, sub)
			if (pvNode || reduce > 0) && score > alpha {
				score = -r.search(-beta, -alpha, depth-1, check, sub)
			}
		}

		r.pos.PopMove()

		if score > bestScore {
			bestScore = score
			bestMove = m.Move

			if score > alpha {
				alpha = score
				bound = ExactBound
				line.Update(bestMove, sub)

				if score >= beta {
					bound = LowerBound
					break // cutoff
				}
			}
		}
	}
	r.ply--

	if legal == 0 {
		if inCheck {
			return eval.Score(r.ply) - eval.MaxScore // mated in ply
		}
		return eval.DrawScore // stalemate
	}

	if writeToHash && !r.limits.Aborting() {
		r.tt.Push(hash, bestMove, depth, bound, bestScore, r.ply)
	}
	return bestScore
}

func evalIfNotSet(e eval.Evaluator) eval.Evaluator {
	if e == nil {
		return eval.NewTapered()
	}
	return e
}

func (r *runAlphaBeta) scoreMove(m board.Move, hashMove board.Move) int16 {
	if hashMove != 0 && m == hashMove {
		return hashMoveScore
	}
	if m.IsCapture() {
		return r.scoreCapture(m)
	}
	return quietMoveScore
}

func (r *runAlphaBeta) scoreCapture(m board.Move) int16 {
	victim := board.Pawn // en passant
	if m.Flag() != board.EnPassant {
		_, pc, _ := r.pos.Square(m.To())
		victim = pc
	}
	_, attacker, _ := r.pos.Square(m.From())
	return mvvLVA[victim][attacker]
}

package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/eval"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Iterative is a search harness for iterative-deepening search. Each Launch
// spawns a single worker goroutine that searches depth 1, 2, .. until a
// limit is reached or the search is halted. A partial iteration is never
// used: the abort flag discards its result entirely.
type Iterative struct {
	Root search.Search
}

func (i *Iterative) Launch(ctx context.Context, pos *board.Position, tt *search.HashTable, opt Options) (Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{
		init:   iox.NewAsyncCloser(),
		quit:   iox.NewAsyncCloser(),
		limits: search.NewLimits(),
	}
	go h.process(ctx, i.Root, pos, tt, opt, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser
	limits     *search.Limits

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, root search.Search, pos *board.Position, tt *search.HashTable, opt Options, out chan search.PV) {
	defer h.init.Close()
	defer close(out)

	h.limits.Reset()
	if d, ok := opt.DepthLimit.V(); ok {
		h.limits.SetDepth(int(d))
	}
	if n, ok := opt.NodeLimit.V(); ok {
		h.limits.SetNodes(n)
	}
	soft := false
	if t, ok := opt.MoveTime.V(); ok {
		h.limits.SetMoveTime(t)
	} else if tc, ok := opt.TimeControl.V(); ok {
		h.limits.SetMoveTime(tc.Budget(pos.Turn()))
		soft = true
	}

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	sctx := &search.Context{TT: tt, Limits: h.limits}
	start := time.Now()

	for depth := 1; !h.quit.IsClosed(); depth++ {
		pv, err := root.Search(wctx, sctx, pos, depth)
		if err != nil {
			if err == search.ErrHalted {
				return // Halt was called or a budget ran out mid-iteration.
			}
			logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", pos, depth, err)
			return
		}

		pv.Time = time.Since(start)
		pv.Hashfull = tt.Hashfull()

		logw.Debugf(ctx, "Searched %v: %v", pos, pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()

		if depth >= h.limits.Depth() {
			return // halt: reached max depth
		}
		if plies := pliesToMate(pv.Score); plies > 0 && plies <= depth {
			return // halt: forced mate found within full-width search. Exact result.
		}
		if soft && time.Since(start) > h.limits.MoveTime()/2 {
			return // halt: past half the budget. Do not start a deeper search.
		}
	}
}

func (h *handle) Halt() search.PV {
	h.limits.Abort()
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}

// pliesToMate returns the half-move distance encoded in a mate score, or 0.
func pliesToMate(s eval.Score) int {
	if !s.IsMate() {
		return 0
	}
	if s < 0 {
		s = -s
	}
	return int(eval.MaxScore - s)
}

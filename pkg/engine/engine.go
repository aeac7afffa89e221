// Package engine contains the engine facade: position, transposition table
// and active search management.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/board/fen"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/herohde/kestrel/pkg/search/searchctl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 3, 0)

// Options are engine creation options.
type Options struct {
	// Depth is the default search depth limit. If zero, there is no limit.
	// Overridden by search options if provided.
	Depth uint
	// Hash is the transposition table size in MiB, rounded down to a power
	// of two.
	Hash uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v}", o.Depth, o.Hash)
}

// Engine encapsulates game-playing logic, search and evaluation. The engine
// owns the game position; an active search runs on a private copy, so the
// main thread never mutates state under the worker.
type Engine struct {
	name, author string

	launcher searchctl.Launcher
	opts     Options

	pos    *board.Position
	tt     *search.HashTable
	active searchctl.Handle
	mu     sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

func New(ctx context.Context, name, author string, root search.Search, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: &searchctl.Iterative{Root: root},
		opts:     Options{Hash: 128},
	}
	for _, fn := range opts {
		fn(e)
	}

	e.tt = search.NewHashTable(uint64(e.opts.Hash))
	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

// SetHash resizes the transposition table to the given size in MiB. Returns
// an error, leaving the previous table in place, only for a zero size; an
// allocation failure of the new table is not caught.
func (e *Engine) SetHash(ctx context.Context, mib uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if mib == 0 {
		return fmt.Errorf("invalid hash size: %v", mib)
	}

	_, _ = e.haltSearchIfActive(ctx)

	e.opts.Hash = mib
	e.tt.Resize(uint64(mib))

	logw.Infof(ctx, "Resized %v", e.tt)
	return nil
}

// NewGame resets the position to the starting position and clears the
// transposition table.
func (e *Engine) NewGame(ctx context.Context) {
	_ = e.Reset(ctx, fen.Initial)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
}

// Snapshot returns a copy of the current position.
func (e *Engine) Snapshot() *board.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.pos.Copy()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.pos)
}

// Hashfull returns the transposition table utilization in permill.
func (e *Engine) Hashfull() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tt.Hashfull()
}

// Reset resets the engine to a new starting position in FEN format. The
// position is unchanged on error.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	pos, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.pos = pos

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMiB", position, e.opts.Depth, e.opts.Hash)
	return nil
}

// Move applies the given move in coordinate notation, usually an opponent
// move. The position is unchanged on error.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	var moves board.MoveList
	e.pos.GenerateMoves(&moves, true)
	for i := 0; i < moves.Len(); i++ {
		m := moves.At(i)
		if !candidate.Matches(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.pos.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Debugf(ctx, "Move %v: %v", m, e.pos)
		return nil
	}
	return fmt.Errorf("no matching legal move: %v", move)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, ok := e.pos.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Debugf(ctx, "Takeback %v", m)
	return nil
}

// Perft counts the legal move tree of the current position to the given
// depth, split by root move.
func (e *Engine) Perft(ctx context.Context, depth int) ([]board.PerftSplit, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	return board.PerftDivide(e.pos.Copy(), depth)
}

// Analyze analyzes the current position on a worker goroutine. The returned
// channel carries one PV per completed iteration.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.pos, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	handle, out := e.launcher.Launch(ctx, e.pos.Copy(), e.tt, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.pos, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}

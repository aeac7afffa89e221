// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/board/fen"
	"github.com/herohde/kestrel/pkg/engine"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/herohde/kestrel/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

const (
	defaultHash = 128
	minHash     = 1
	maxHash     = 512
)

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool    // user is waiting for engine to move
	ponder chan search.PV // chan for intermediate search information
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
		ponder:      make(chan search.PV, 400),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	// The engine identifies itself and lists its options after "uci" has
	// been consumed, then acknowledges with "uciok".

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", defaultHash, minHash, maxHash)
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(strings.TrimSpace(line))
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				// Sync point: all preceding commands have been processed.

				d.out <- "readyok"

			case "setoption":
				// * setoption name <id> [value <x>]

				d.setOption(ctx, args)

			case "ucinewgame":
				// The next search is from a different game: reset the
				// position and drop all cached search results.

				d.ensureInactive(ctx)
				d.e.NewGame(ctx)

			case "position":
				// * position [fen <fenstring> | startpos ] moves <move1> .. <movei>

				d.ensureInactive(ctx)
				d.setPosition(ctx, line, args)

			case "go":
				// * go [depth N | nodes N | movetime ms | wtime ms btime ms
				//      winc ms binc ms movestogo k | infinite | perft N]

				d.ensureInactive(ctx)
				d.startSearch(ctx, line, args)

			case "stop":
				// Flip the abort flag; the worker unwinds and the pending
				// result becomes bestmove.

				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(ctx, pv)
				}

			case "debug", "register", "ponderhit":
				// accepted, no effect

			case "quit":
				return

			default:
				// Unknown commands are ignored on the protocol stream.

				logw.Debugf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case pv := <-d.ponder:
			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) setOption(ctx context.Context, args []string) {
	var name, value string
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 3 {
		value = args[3]
	}

	switch strings.ToLower(name) {
	case "hash":
		size, err := strconv.Atoi(value)
		if err != nil {
			logw.Warningf(ctx, "Invalid Hash value '%v': %v. Using default %vMiB", value, err, defaultHash)
			size = defaultHash
		}
		if size < minHash {
			size = minHash
		}
		if size > maxHash {
			size = maxHash
		}
		if err := d.e.SetHash(ctx, uint(size)); err != nil {
			logw.Errorf(ctx, "Failed to resize hash table: %v", err)
		}

	default:
		logw.Debugf(ctx, "Unknown option '%v'", name)
	}
}

func (d *Driver) setPosition(ctx context.Context, line string, args []string) {
	position := fen.Initial
	rest := args
	if len(args) > 0 {
		switch args[0] {
		case "startpos":
			rest = args[1:]
		case "fen":
			// Collect FEN tokens until "moves"; the clock fields may be absent.

			var fields []string
			rest = nil
			for i, arg := range args[1:] {
				if arg == "moves" {
					rest = args[1+i:]
					break
				}
				fields = append(fields, arg)
			}
			if len(fields) == 0 {
				logw.Errorf(ctx, "Invalid position: %v", line)
				return
			}
			position = strings.Join(fields, " ")
		}
	}

	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "Invalid position '%v': %v", line, err)
		return
	}

	move := false
	for _, arg := range rest {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}

		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
			return
		}
	}
}

func (d *Driver) startSearch(ctx context.Context, line string, args []string) {
	var opt searchctl.Options
	var tc searchctl.TimeControl
	useClock := false
	infinite := false

	for i := 0; i < len(args); i++ {
		cmd := args[i]
		switch cmd {
		case "depth", "nodes", "movetime", "wtime", "btime", "winc", "binc", "movestogo", "perft":
			// Next argument is an int.

			i++
			if i == len(args) {
				logw.Errorf(ctx, "No argument for %v: %v", cmd, line)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", line, err)
				return
			}

			switch cmd {
			case "depth":
				opt.DepthLimit = lang.Some(uint(n))
			case "nodes":
				opt.NodeLimit = lang.Some(uint64(n))
			case "movetime":
				opt.MoveTime = lang.Some(time.Millisecond * time.Duration(n))
			case "wtime":
				tc.White, useClock = time.Millisecond*time.Duration(n), true
			case "btime":
				tc.Black, useClock = time.Millisecond*time.Duration(n), true
			case "winc":
				tc.WhiteInc, useClock = time.Millisecond*time.Duration(n), true
			case "binc":
				tc.BlackInc, useClock = time.Millisecond*time.Duration(n), true
			case "movestogo":
				tc.Moves, useClock = n, true
			case "perft":
				d.perft(ctx, n)
				return
			}

		case "infinite":
			infinite = true

		default:
			// silently ignore anything not handled.
		}
	}

	if useClock {
		opt.TimeControl = lang.Some(tc)
	}

	out, err := d.e.Analyze(ctx, opt)
	if err != nil {
		logw.Errorf(ctx, "Analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	// Forward intermediate info. Complete the search when the worker is
	// exhausted, unless infinite: then only "stop" concludes it.

	go func() {
		var last search.PV
		for pv := range out {
			last = pv
			d.ponder <- pv
		}
		if !infinite {
			d.searchCompleted(ctx, last)
		}
	}()
}

func (d *Driver) perft(ctx context.Context, depth int) {
	if depth < 1 {
		logw.Errorf(ctx, "Invalid perft depth: %v", depth)
		return
	}

	start := time.Now()
	split, total := d.e.Perft(ctx, depth)
	elapsed := time.Since(start)

	for _, s := range split {
		d.out <- fmt.Sprintf("%v: %v", s.Move, s.Nodes)
	}
	d.out <- fmt.Sprintf("perft %v time %v nodes %v", depth, elapsed.Milliseconds(), total)
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CompareAndSwap(true, false) {
		if len(pv.Moves) > 0 {
			d.out <- printPV(pv)
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		} else {
			// No PV. Position is checkmate or stalemate. Send NullMove.

			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

func printPV(pv search.PV) string {
	// "info depth 2 seldepth 3 score cp 214 time 1242 nodes 2124 nps 1710 hashfull 1 pv e2e4 e7e5"

	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if pv.Seldepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %v", pv.Seldepth))
	}
	if pv.Score.IsMate() {
		parts = append(parts, fmt.Sprintf("score mate %v", pv.Score.MateDistance()))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	parts = append(parts, fmt.Sprintf("hashfull %v", pv.Hashfull))
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv", board.PrintMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}

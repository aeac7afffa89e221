// Package console contains an interactive line driver for debugging.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/board/fen"
	"github.com/herohde/kestrel/pkg/engine"
	"github.com/herohde/kestrel/pkg/eval"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/herohde/kestrel/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "console"

// Driver implements a console driver for debugging. It is activated if sent
// "console".
type Driver struct {
	iox.AsyncCloser

	e  *engine.Engine
	ev eval.Evaluator

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, ev eval.Evaluator, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		ev:          ev,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard()

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
			case "reset", "r":
				// reset [<fenstring>] [moves ...]

				d.ensureInactive(ctx)

				pos := fen.Initial
				if len(args) >= 6 && args[0] != "moves" {
					pos = strings.Join(args[0:6], " ")
				}
				if err := d.e.Reset(ctx, pos); err != nil {
					d.out <- fmt.Sprintf("invalid position: %v", err)
					break
				}
				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}
					if err := d.e.Move(ctx, arg); err != nil {
						d.out <- fmt.Sprintf("invalid move '%v': %v", arg, err)
						break
					}
				}
				d.printBoard()

			case "undo", "u":
				d.ensureInactive(ctx)

				_ = d.e.TakeBack(ctx)
				d.printBoard()

			case "print", "p", "display":
				d.printBoard()

			case "fen":
				d.out <- d.e.Position()

			case "eval", "e":
				d.out <- fmt.Sprintf("static eval: %v", d.ev.Evaluate(d.e.Snapshot()))

			case "perft":
				depth := 4
				if len(args) > 0 {
					depth, _ = strconv.Atoi(args[0])
				}

				start := time.Now()
				split, total := d.e.Perft(ctx, depth)
				for _, s := range split {
					d.out <- fmt.Sprintf("%v: %v", s.Move, s.Nodes)
				}
				d.out <- fmt.Sprintf("perft %v time %v nodes %v", depth, time.Since(start).Milliseconds(), total)

			case "analyze", "a":
				d.ensureInactive(ctx)

				var opt searchctl.Options
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					opt.DepthLimit = lang.Some(uint(depth))
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					break
				}
				d.active.Store(true)

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.out <- pv.String()
					}
					d.searchCompleted(last)
				}()

			case "hash": // size in MiB
				if len(args) > 0 {
					size, _ := strconv.Atoi(args[0])
					_ = d.e.SetHash(ctx, uint(size))
				}

			case "halt", "stop":
				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(pv)
				}

			case "quit", "exit", "q":
				d.ensureInactive(ctx)
				return

			default:
				// Assume move if not a recognized command.

				d.ensureInactive(ctx)
				if err := d.e.Move(ctx, cmd); err != nil {
					d.out <- fmt.Sprintf("invalid move: '%v'", cmd)
				} else {
					d.printBoard()
				}
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(pv search.PV) {
	if d.active.CompareAndSwap(true, false) {
		if len(pv.Moves) > 0 {
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		}
	} // else: stale or duplicate result
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard() {
	p := d.e.Snapshot()

	d.out <- ""
	d.out <- files
	d.out <- horizontal
	for r := board.NumRanks; r > 0; r-- {
		var sb strings.Builder
		sb.WriteString(board.Rank(r - 1).String())
		sb.WriteString(vertical)
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			if color, piece, ok := p.Square(board.NewSquare(f, board.Rank(r-1))); ok {
				sb.WriteString(printPiece(color, piece))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal
	}
	d.out <- files
	d.out <- ""
	d.out <- fmt.Sprintf("fen:  %v", d.e.Position())
	d.out <- fmt.Sprintf("ply:  %v, hash: 0x%x", p.Ply(), uint64(p.Hash()))
	d.out <- ""
}

func printPiece(c board.Color, p board.Piece) string {
	if c == board.White {
		return strings.ToUpper(p.String())
	}
	return p.String()
}

// Package searchctl contains search control: the iterative-deepening driver
// and time management.
package searchctl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Options hold dynamic search options. The user may change these on a
// particular search.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth.
	DepthLimit lang.Optional[uint]
	// NodeLimit, if set, limits the search to the given node count.
	NodeLimit lang.Optional[uint64]
	// MoveTime, if set, limits the search to the given wall-clock budget.
	MoveTime lang.Optional[time.Duration]
	// TimeControl, if set, derives a move budget from the clock state.
	// Ignored if MoveTime is set.
	TimeControl lang.Optional[TimeControl]
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.NodeLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("nodes=%v", v))
	}
	if v, ok := o.MoveTime.V(); ok {
		ret = append(ret, fmt.Sprintf("movetime=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher is an interface for managing searches.
type Launcher interface {
	// Launch a new search from the given position. It expects an exclusive
	// (copied) position and returns a PV channel for iteratively deeper
	// searches. If the search is exhausted, the channel is closed. The search
	// can be stopped at any time.
	Launch(ctx context.Context, pos *board.Position, tt *search.HashTable, opt Options) (Handle, <-chan search.PV)
}

// Handle is an interface for the engine to manage searches. The engine is
// expected to spin off searches with copied positions and close/abandon them
// when no longer needed. This design keeps stopping conditions and
// re-synchronization trivial.
type Handle interface {
	// Halt halts the search, if running. Idempotent.
	Halt() search.PV
}

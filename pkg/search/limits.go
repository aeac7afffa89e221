package search

import (
	"math"
	"time"

	"go.uber.org/atomic"
)

// Limits is the search watchdog: a shared abort flag plus time, node and
// depth budgets. The worker polls Aborting at every node and samples the
// wall clock every 1024 nodes in ShouldAbort; the main thread may flip the
// flag at any time via Abort. Exceeding a budget is self-inflicted: the
// worker sets the flag itself.
type Limits struct {
	abort atomic.Bool
	start atomic.Time

	maxTime  time.Duration
	maxDepth int
	maxNodes uint64
}

func NewLimits() *Limits {
	l := &Limits{
		maxTime:  time.Duration(math.MaxInt64),
		maxDepth: MaxPly,
		maxNodes: math.MaxUint64,
	}
	l.start.Store(time.Now())
	return l
}

// Reset clears the abort flag and restarts the clock.
func (l *Limits) Reset() {
	l.abort.Store(false)
	l.start.Store(time.Now())
}

// SetMoveTime caps the search wall-clock time.
func (l *Limits) SetMoveTime(d time.Duration) {
	l.maxTime = d
}

// SetDepth caps the iterative-deepening depth.
func (l *Limits) SetDepth(depth int) {
	if depth > MaxPly {
		depth = MaxPly
	}
	l.maxDepth = depth
}

// SetNodes caps the number of searched nodes.
func (l *Limits) SetNodes(nodes uint64) {
	l.maxNodes = nodes
}

// Depth returns the depth limit.
func (l *Limits) Depth() int {
	return l.maxDepth
}

// MoveTime returns the time budget.
func (l *Limits) MoveTime() time.Duration {
	return l.maxTime
}

// Elapsed returns the time since Reset.
func (l *Limits) Elapsed() time.Duration {
	return time.Since(l.start.Load())
}

// Aborting returns true iff the search should unwind.
func (l *Limits) Aborting() bool {
	return l.abort.Load()
}

// Abort flips the abort flag. Idempotent.
func (l *Limits) Abort() {
	l.abort.Store(true)
}

// ShouldAbort checks the time and node budgets every 1024 nodes and flips
// the abort flag when either is exhausted.
func (l *Limits) ShouldAbort(nodes uint64) bool {
	if nodes&1023 == 0 && (l.Elapsed() > l.maxTime || nodes >= l.maxNodes) {
		l.abort.Store(true)
		return true
	}
	return false
}

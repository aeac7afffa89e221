package searchctl

import (
	"fmt"
	"time"

	"github.com/herohde/kestrel/pkg/board"
)

// TimeControl represents the clock state reported by the GUI.
type TimeControl struct {
	White, Black       time.Duration
	WhiteInc, BlackInc time.Duration
	Moves              int // moves to the next time control; 0 == rest of game
}

// Budget returns the wall-clock budget for one move by the given color: an
// even split of the remaining time when the move count is known, else a
// 1/32 slice of the remainder plus the increment.
func (t TimeControl) Budget(c board.Color) time.Duration {
	remainder, inc := t.White, t.WhiteInc
	if c == board.Black {
		remainder, inc = t.Black, t.BlackInc
	}

	if t.Moves > 0 {
		return remainder / time.Duration(t.Moves)
	}
	return remainder/32 + inc
}

func (t TimeControl) String() string {
	if t.Moves == 0 {
		return fmt.Sprintf("%.1f<>%.1f", t.White.Seconds(), t.Black.Seconds())
	}
	return fmt.Sprintf("%.1f<>%.1f[moves=%v]", t.White.Seconds(), t.Black.Seconds(), t.Moves)
}

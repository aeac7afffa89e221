package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/herohde/kestrel/pkg/engine"
	"github.com/herohde/kestrel/pkg/engine/uci"
	"github.com/herohde/kestrel/pkg/eval"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	e      *engine.Engine
	in     chan string
	out    <-chan string
	driver *uci.Driver
}

func newSession(ctx context.Context, t *testing.T) *session {
	t.Helper()

	e := engine.New(ctx, "kestrel", "test", search.AlphaBeta{Eval: eval.NewTapered()},
		engine.WithOptions(engine.Options{Hash: 1}),
	)

	in := make(chan string, 16)
	driver, out := uci.NewDriver(ctx, e, in)
	return &session{e: e, in: in, out: out, driver: driver}
}

// await reads output lines until the predicate matches, returning all lines
// seen. Fails the test on timeout.
func (s *session) await(t *testing.T, match func(string) bool) []string {
	t.Helper()

	var seen []string
	deadline := time.After(30 * time.Second)
	for {
		select {
		case line, ok := <-s.out:
			if !ok {
				t.Fatalf("output closed; seen: %v", seen)
			}
			seen = append(seen, line)
			if match(line) {
				return seen
			}
		case <-deadline:
			t.Fatalf("timeout; seen: %v", seen)
		}
	}
}

func prefix(p string) func(string) bool {
	return func(line string) bool { return strings.HasPrefix(line, p) }
}

func TestPreamble(t *testing.T) {
	s := newSession(context.Background(), t)

	lines := s.await(t, prefix("uciok"))
	assert.True(t, strings.HasPrefix(lines[0], "id name kestrel"))
	assert.True(t, strings.HasPrefix(lines[1], "id author"))
	assert.Contains(t, lines, "option name Hash type spin default 128 min 1 max 512")

	s.in <- "isready"
	s.await(t, prefix("readyok"))

	s.in <- "quit"
	<-s.driver.Closed()
}

func TestGoDepthEmitsBestmove(t *testing.T) {
	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	s.in <- "position startpos moves e2e4 e7e5"
	s.in <- "go depth 3"

	lines := s.await(t, prefix("bestmove"))

	var infos []string
	for _, l := range lines {
		if strings.HasPrefix(l, "info depth") {
			infos = append(infos, l)
		}
	}
	require.NotEmpty(t, infos)
	assert.Contains(t, infos[len(infos)-1], "depth 3")
	assert.Contains(t, infos[len(infos)-1], "score cp")
	assert.Contains(t, infos[len(infos)-1], " pv ")

	best := lines[len(lines)-1]
	assert.Regexp(t, `^bestmove [a-h][1-8][a-h][1-8]`, best)

	s.in <- "quit"
	<-s.driver.Closed()
}

func TestHashfullResetAfterNewGame(t *testing.T) {
	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	// Fill the table a little, then resize and start a new game: the first
	// info line of the next search must report hashfull 0.
	s.in <- "position startpos"
	s.in <- "go depth 4"
	s.await(t, prefix("bestmove"))

	s.in <- "setoption name Hash value 64"
	s.in <- "ucinewgame"
	s.in <- "isready"
	s.await(t, prefix("readyok"))

	s.in <- "go depth 2"
	lines := s.await(t, prefix("bestmove"))

	for _, l := range lines {
		if strings.HasPrefix(l, "info depth") {
			assert.Contains(t, l, "hashfull 0")
			return
		}
	}
	t.Fatal("no info line")
}

func TestMateScoreReported(t *testing.T) {
	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	s.in <- "position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"
	s.in <- "go depth 5"

	lines := s.await(t, prefix("bestmove"))
	assert.Equal(t, "bestmove a1a8", lines[len(lines)-1])

	found := false
	for _, l := range lines {
		if strings.Contains(l, "score mate 1") {
			found = true
		}
	}
	assert.True(t, found, "expected mate score: %v", lines)
}

func TestQueenEndgameMate(t *testing.T) {
	if testing.Short() {
		t.Skip("deeper search skipped in short mode")
	}

	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	s.in <- "position fen 1Q6/8/8/8/2k2P2/1p6/1B4K1/8 w - - 3 63"
	s.in <- "go depth 10"

	lines := s.await(t, prefix("bestmove"))

	found := false
	for _, l := range lines {
		if strings.Contains(l, "score mate 1") || strings.Contains(l, "score mate 2") || strings.Contains(l, "score mate 3") {
			found = true
		}
	}
	assert.True(t, found, "expected mate 1..3: %v", lines)
}

func TestOpeningMoveReasonable(t *testing.T) {
	if testing.Short() {
		t.Skip("deeper search skipped in short mode")
	}

	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	s.in <- "position startpos"
	s.in <- "go depth 6"

	lines := s.await(t, prefix("bestmove"))
	best := strings.TrimPrefix(lines[len(lines)-1], "bestmove ")
	assert.Contains(t, []string{"e2e4", "d2d4", "g1f3", "c2c4", "b1c3", "e2e3"}, best)
}

func TestStop(t *testing.T) {
	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	s.in <- "position startpos"
	s.in <- "go movetime 60000"
	time.Sleep(100 * time.Millisecond)
	s.in <- "stop"

	s.await(t, prefix("bestmove"))

	s.in <- "quit"
	<-s.driver.Closed()
}

func TestGoPerft(t *testing.T) {
	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	s.in <- "position startpos"
	s.in <- "go perft 3"

	lines := s.await(t, prefix("perft"))
	assert.Contains(t, lines[len(lines)-1], "nodes 8902")
}

func TestInvalidHashValueUsesDefault(t *testing.T) {
	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	// Non-integer value: a diagnostic is logged, the table is resized to the
	// default size and the engine stays responsive.
	s.in <- "setoption name Hash value banana"
	s.in <- "isready"
	s.await(t, prefix("readyok"))
	assert.Equal(t, uint(128), s.e.Options().Hash)

	s.in <- "quit"
	<-s.driver.Closed()
}

func TestUnknownCommandIgnored(t *testing.T) {
	s := newSession(context.Background(), t)
	s.await(t, prefix("uciok"))

	s.in <- "xyzzy"
	s.in <- "isready"
	lines := s.await(t, prefix("readyok"))
	assert.Len(t, lines, 1, "unknown command must produce no output")

	s.in <- "quit"
	<-s.driver.Closed()
}

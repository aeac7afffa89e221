package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/herohde/kestrel/pkg/board/fen"
	"github.com/herohde/kestrel/pkg/engine"
	"github.com/herohde/kestrel/pkg/eval"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/herohde/kestrel/pkg/search/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(ctx context.Context, t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(ctx, "kestrel", "test", search.AlphaBeta{Eval: eval.NewTapered()},
		engine.WithOptions(engine.Options{Hash: 1}),
	)
}

func TestEngineMoves(t *testing.T) {
	ctx := context.Background()
	e := newEngine(ctx, t)

	assert.Equal(t, fen.Initial, e.Position())

	require.NoError(t, e.Move(ctx, "e2e4"))
	require.NoError(t, e.Move(ctx, "c7c5"))
	assert.True(t, strings.HasPrefix(e.Position(), "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w"))

	assert.Error(t, e.Move(ctx, "e9e4"))
	assert.Error(t, e.Move(ctx, "e4e6"))
	assert.Error(t, e.Move(ctx, "a7a6")) // black pawn, white to move

	require.NoError(t, e.TakeBack(ctx))
	require.NoError(t, e.TakeBack(ctx))
	assert.Equal(t, fen.Initial, e.Position())
	assert.Error(t, e.TakeBack(ctx))
}

func TestEngineReset(t *testing.T) {
	ctx := context.Background()
	e := newEngine(ctx, t)

	prev := e.Position()
	assert.Error(t, e.Reset(ctx, "not a fen"))
	assert.Equal(t, prev, e.Position(), "position unchanged on parse error")

	kiwi := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	require.NoError(t, e.Reset(ctx, kiwi))
	assert.Equal(t, kiwi, e.Position())
}

func TestEngineAnalyze(t *testing.T) {
	ctx := context.Background()
	e := newEngine(ctx, t)

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(uint(3))})
	require.NoError(t, err)

	var last search.PV
	for pv := range out {
		last = pv
	}
	assert.Equal(t, 3, last.Depth)
	assert.NotEmpty(t, last.Moves)

	_, err = e.Halt(ctx)
	assert.NoError(t, err)
}

func TestEngineNewGameClearsTable(t *testing.T) {
	ctx := context.Background()
	e := newEngine(ctx, t)

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(uint(4))})
	require.NoError(t, err)
	for range out {
	}
	_, _ = e.Halt(ctx)

	require.NoError(t, e.SetHash(ctx, 2))
	e.NewGame(ctx)
	assert.Equal(t, 0, e.Hashfull())
	assert.Equal(t, fen.Initial, e.Position())
}

func TestEnginePerft(t *testing.T) {
	ctx := context.Background()
	e := newEngine(ctx, t)

	split, total := e.Perft(ctx, 3)
	assert.Equal(t, uint64(8902), total)
	assert.Len(t, split, 20)
}

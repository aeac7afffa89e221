package board_test

import (
	"math/rand"
	"testing"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, str string) *board.Position {
	t.Helper()
	pos, err := fen.Decode(str)
	require.NoError(t, err)
	return pos
}

func TestStartPosition(t *testing.T) {
	pos := decode(t, fen.Initial)

	assert.Equal(t, board.White, pos.Turn())
	assert.Equal(t, board.FullCastlingRights, pos.Castling())
	assert.Equal(t, 32, pos.Occupied().PopCount())
	assert.Equal(t, board.E1, pos.KingSquare(board.White))
	assert.Equal(t, board.E8, pos.KingSquare(board.Black))
	assert.Equal(t, int16(board.TotalPhase), pos.Phase())
	assert.False(t, pos.InCheck())
	assert.NoError(t, pos.Validate())

	assert.Len(t, pos.LegalMoves(), 20)
}

func TestPushPopRestoresPosition(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		moves []string
	}{
		{"quiet", fen.Initial, []string{"g1f3", "g8f6"}},
		{"double push and capture", fen.Initial, []string{"e2e4", "d7d5", "e4d5", "d8d5"}},
		{"en passant", fen.Initial, []string{"e2e4", "a7a6", "e4e5", "d7d5", "e5d6"}},
		{"castles", "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1", []string{"e1g1", "e8c8"}},
		{"promotion", "8/P6k/8/8/8/8/p6K/8 w - - 0 1", []string{"a7a8q", "a2a1n"}},
		{"capture promotion", "1n6/P7/8/8/8/7k/p7/1N5K w - - 0 1", []string{"a7b8q", "a2b1r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := decode(t, tt.fen)

			var undo int
			for _, str := range tt.moves {
				m := findMove(t, pos, str)

				snapshot := *pos.Copy()
				require.True(t, pos.PushMove(m), "move %v", str)
				require.NoError(t, pos.Validate(), "after %v", str)

				// Single do/undo restores the prior state bit-for-bit.
				prev := *pos.Copy()
				_, ok := pos.PopMove()
				require.True(t, ok)
				require.Equal(t, snapshot, *pos.Copy(), "undo %v", str)

				require.True(t, pos.PushMove(m))
				require.Equal(t, prev, *pos.Copy())
				undo++
			}

			for i := 0; i < undo; i++ {
				_, ok := pos.PopMove()
				require.True(t, ok)
				require.NoError(t, pos.Validate())
			}
			assert.Equal(t, 0, pos.Ply())
		})
	}
}

func findMove(t *testing.T, pos *board.Position, str string) board.Move {
	t.Helper()
	candidate, err := board.ParseMove(str)
	require.NoError(t, err)

	for _, m := range pos.LegalMoves() {
		if candidate.Matches(m) {
			return m
		}
	}
	t.Fatalf("no legal move %v in %v", str, pos)
	return 0
}

// TestRandomWalk plays random legal moves from assorted positions, checking
// after every make and unmake that the incremental hashes and accumulators
// equal their from-scratch derivations.
func TestRandomWalk(t *testing.T) {
	starts := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq -",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	walks := 40
	plies := 80
	if testing.Short() {
		walks = 10
	}

	r := rand.New(rand.NewSource(42))
	for _, start := range starts {
		for w := 0; w < walks; w++ {
			pos := decode(t, start)

			depth := 0
			for i := 0; i < plies; i++ {
				moves := pos.LegalMoves()
				if len(moves) == 0 {
					break
				}
				m := moves[r.Intn(len(moves))]

				require.True(t, pos.PushMove(m))
				require.NoError(t, pos.Validate(), "start=%v move=%v", start, m)
				depth++
			}

			for i := 0; i < depth; i++ {
				_, ok := pos.PopMove()
				require.True(t, ok)
				require.NoError(t, pos.Validate(), "start=%v undo %v", start, i)
			}
			require.NoError(t, pos.Validate())
			require.Equal(t, *decode(t, start), *pos.Copy(), "start=%v", start)
		}
	}
}

func TestIllegalMoveRejected(t *testing.T) {
	// The d-pawn is pinned against the king by the rook on d8.
	pos := decode(t, "3r3k/8/8/8/8/4q3/3P4/3K4 w - - 0 1")

	snapshot := *pos.Copy()

	var moves board.MoveList
	pos.GenerateMoves(&moves, true)

	legal := 0
	for i := 0; i < moves.Len(); i++ {
		m := moves.At(i)
		if m.From() != board.D2 {
			continue
		}
		if m.To().File() != board.FileD {
			// Pawn captures off the pin line must be rejected and undone.
			assert.False(t, pos.PushMove(m))
			assert.Equal(t, snapshot, *pos.Copy())
		}
	}
	for _, m := range pos.LegalMoves() {
		if m.From() == board.D2 {
			legal++
			assert.Equal(t, board.FileD, m.To().File())
		}
	}
	assert.Equal(t, 2, legal) // d3 and d4 stay on the pin line
}

func TestCheckersPinned(t *testing.T) {
	// Rook pins the knight; bishop checks from afar.
	pos := decode(t, "4r2k/8/8/8/1b6/8/4N3/4K3 w - - 0 1")

	checkers, pinned := pos.CheckersPinned(board.White)
	assert.Equal(t, board.BitMask(board.B4), checkers)
	assert.Equal(t, board.BitMask(board.E2), pinned)
	assert.True(t, pos.InCheck())
}

func TestEnPassantLegality(t *testing.T) {
	// Capturing en passant would expose the king on the fifth rank.
	pos := decode(t, "8/8/8/KPp4r/8/8/8/7k w - c6 0 1")

	for _, m := range pos.LegalMoves() {
		assert.NotEqual(t, board.EnPassant, m.Flag(), "illegal ep: %v", m)
	}
}

func TestCastlingThroughAttackRejected(t *testing.T) {
	// Black rook on f8 covers f1: white may not castle king-side, but
	// queen-side remains available.
	pos := decode(t, "5rk1/8/8/8/8/8/8/R3K2R w KQ - 0 1")

	var ks, qs bool
	for _, m := range pos.LegalMoves() {
		switch m.Flag() {
		case board.KingCastle:
			ks = true
		case board.QueenCastle:
			qs = true
		}
	}
	assert.False(t, ks)
	assert.True(t, qs)
}

func TestHalfmoveClock(t *testing.T) {
	pos := decode(t, fen.Initial)

	require.True(t, pos.PushMove(findMove(t, pos, "g1f3")))
	assert.Equal(t, 1, pos.HalfmoveClock())
	require.True(t, pos.PushMove(findMove(t, pos, "d7d5")))
	assert.Equal(t, 0, pos.HalfmoveClock())
	require.True(t, pos.PushMove(findMove(t, pos, "f3e5")))
	assert.Equal(t, 1, pos.HalfmoveClock())
	require.True(t, pos.PushMove(findMove(t, pos, "d8d6")))
	require.True(t, pos.PushMove(findMove(t, pos, "e5c4")))
	require.True(t, pos.PushMove(findMove(t, pos, "d6e6")))
	require.True(t, pos.PushMove(findMove(t, pos, "c4e3")))
	assert.Equal(t, 5, pos.HalfmoveClock())
}

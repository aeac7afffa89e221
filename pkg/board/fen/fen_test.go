package fen_test

import (
	"testing"

	"github.com/herohde/kestrel/pkg/board"
	"github.com/herohde/kestrel/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundtrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"1Q6/8/8/8/2k2P2/1p6/1B4K1/8 b - - 3 63",
		"4k3/8/8/8/8/8/8/4K2R w K - 99 80",
	}

	for _, tt := range tests {
		pos, err := fen.Decode(tt)
		require.NoError(t, err, "%v", tt)

		assert.Equal(t, tt, fen.Encode(pos), "roundtrip %v", tt)
		assert.NoError(t, pos.Validate())
	}
}

func TestDecodeOptionalClocks(t *testing.T) {
	pos, err := fen.Decode("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	require.NoError(t, err)

	assert.Equal(t, 0, pos.HalfmoveClock())
	assert.Equal(t, 1, pos.FullMoves())
	assert.Equal(t, board.FullCastlingRights, pos.Castling())
}

func TestDecodeEnPassant(t *testing.T) {
	pos, err := fen.Decode("rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2")
	require.NoError(t, err)

	sq, ok := pos.EnPassant()
	require.True(t, ok)
	assert.Equal(t, board.C6, sq)
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",              // missing fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1", // bad piece
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",          // short placement
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // bad rank width
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1", // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e5 0 1", // bad ep rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",  // bad halfmove
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 x",  // bad fullmove
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w KQkq - 0 1",  // missing king
		"8/8/8/8/8/8/8/KK4kk w - - 0 1",                             // too many kings
	}

	for _, tt := range tests {
		_, err := fen.Decode(tt)
		assert.Error(t, err, "'%v'", tt)
	}
}

package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawByRepetition(t *testing.T) {
	pos := decode(t, "4k3/8/8/8/8/8/8/4K2R w - - 0 1")

	shuffle := []string{"h1h2", "e8d8", "h2h1", "d8e8"}

	assert.False(t, pos.IsDrawByRepetition(2))
	for _, str := range shuffle {
		require.True(t, pos.PushMove(findMove(t, pos, str)))
	}
	// First recurrence: detected at num=2, not at num=3.
	assert.True(t, pos.IsDrawByRepetition(2))
	assert.False(t, pos.IsDrawByRepetition(3))

	for _, str := range shuffle {
		require.True(t, pos.PushMove(findMove(t, pos, str)))
	}
	assert.True(t, pos.IsDrawByRepetition(3))
}

func TestRepetitionResetByIrreversibleMove(t *testing.T) {
	pos := decode(t, "4k3/7p/8/8/8/8/8/4K2R w - - 0 1")

	for _, str := range []string{"h1h2", "h7h6", "h2h1", "e8d8", "h1h2", "d8e8"} {
		require.True(t, pos.PushMove(findMove(t, pos, str)))
	}
	// The pawn move starts the scan window; the position it produced recurs
	// after the four shuffling moves and is counted.
	assert.True(t, pos.IsDrawByRepetition(2))
}

func TestDrawBy50(t *testing.T) {
	pos := decode(t, "4k3/8/8/8/8/8/8/4K2R w - - 99 80")
	assert.False(t, pos.IsDrawBy50())

	require.True(t, pos.PushMove(findMove(t, pos, "h1h2")))
	assert.True(t, pos.IsDrawBy50())
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen      string
		expected bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},                // KvK
		{"4k3/8/8/8/8/8/8/4KN2 w - - 0 1", true},               // KNvK
		{"4kb2/8/8/8/8/8/8/4K3 w - - 0 1", true},               // KvKB
		{"4kb2/8/8/8/8/8/8/1B2K3 w - - 0 1", false},            // opposite-color bishops
		{"4kb2/8/8/8/8/8/8/2B1K3 w - - 0 1", true},             // same-color bishops
		{"4kn2/8/8/8/8/8/8/4KN2 w - - 0 1", false},             // two knights
		{"4k3/8/8/8/8/8/8/4KR2 w - - 0 1", false},              // rook mates
		{"4k3/7p/8/8/8/8/8/4K3 w - - 0 1", false},              // pawn promotes
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", false},
	}

	for _, tt := range tests {
		pos := decode(t, tt.fen)
		assert.Equal(t, tt.expected, pos.HasInsufficientMaterial(), "%v", tt.fen)
	}
}

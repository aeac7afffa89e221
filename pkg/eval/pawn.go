package eval

import (
	"github.com/herohde/kestrel/pkg/board"
)

// Pawn-structure terms: doubled, isolated and passed pawns, plus a pawn
// shield in front of the king. The terms depend only on pawns and kings, so
// they are cached in a small table keyed by the position's pawn hash.
const (
	doubledMG  = 1
	doubledEG  = -15
	isolatedMG = -8
	isolatedEG = -5
	passedMG   = -7
	passedEG   = 27
	shieldMG   = 2
	shieldEG   = 1
)

const pawnTableSize = 1 << 16 // entries

type pawnEntry struct {
	key    board.ZobristHash
	mg, eg int16
	ok     bool
}

// PawnTable is a pawn-structure cache. It is owned by a single search worker
// and requires no synchronization.
type PawnTable struct {
	entries []pawnEntry
}

func NewPawnTable() *PawnTable {
	return &PawnTable{entries: make([]pawnEntry, pawnTableSize)}
}

// structure returns the white-minus-black midgame and endgame pawn-structure
// totals, from cache if present. A nil table computes directly.
func (t *PawnTable) structure(pos *board.Position) (int16, int16) {
	if t == nil {
		wmg, weg := sidePawnScore(pos, board.White)
		bmg, beg := sidePawnScore(pos, board.Black)
		return wmg - bmg, weg - beg
	}

	key := pos.PawnHash()
	entry := &t.entries[uint64(key)&(pawnTableSize-1)]
	if entry.ok && entry.key == key {
		return entry.mg, entry.eg
	}

	wmg, weg := sidePawnScore(pos, board.White)
	bmg, beg := sidePawnScore(pos, board.Black)
	*entry = pawnEntry{key: key, mg: wmg - bmg, eg: weg - beg, ok: true}
	return entry.mg, entry.eg
}

func sidePawnScore(pos *board.Position, c board.Color) (mg, eg int16) {
	own := pos.Piece(c, board.Pawn)
	opp := pos.Piece(c.Opponent(), board.Pawn)

	for bb := own; bb != 0; bb = bb.Drop() {
		sq := bb.FirstSquare()
		file := sq.File()

		if own&rails[file] == 0 {
			mg += isolatedMG
			eg += isolatedEG
		}
		if frontSpan[c][sq]&opp == 0 {
			mg += passedMG
			eg += passedEG
		}
	}

	for f := board.ZeroFile; f < board.NumFiles; f++ {
		if n := int16((own & board.BitFile(f)).PopCount()); n > 1 {
			mg += (n - 1) * doubledMG
			eg += (n - 1) * doubledEG
		}
	}

	shield := int16((own & shieldZone[c][pos.KingSquare(c)]).PopCount())
	mg += shield * shieldMG
	eg += shield * shieldEG

	return mg, eg
}

var (
	// rails are the files adjacent to a file.
	rails [board.NumFiles]board.Bitboard
	// frontSpan covers the file and adjacent files strictly ahead of a
	// square, from the pawn's marching direction.
	frontSpan [board.NumColors][board.NumSquares]board.Bitboard
	// shieldZone covers the king's file and adjacent files on the two ranks
	// in front of the king.
	shieldZone [board.NumColors][board.NumSquares]board.Bitboard
)

func init() {
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		if f > board.FileA {
			rails[f] |= board.BitFile(f - 1)
		}
		if f < board.FileH {
			rails[f] |= board.BitFile(f + 1)
		}
	}

	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		files := rails[sq.File()] | board.BitFile(sq.File())

		var ahead, behind board.Bitboard
		for r := board.ZeroRank; r < board.NumRanks; r++ {
			if r > sq.Rank() {
				ahead |= board.BitRank(r)
			}
			if r < sq.Rank() {
				behind |= board.BitRank(r)
			}
		}
		frontSpan[board.White][sq] = files & ahead
		frontSpan[board.Black][sq] = files & behind

		var nearAhead, nearBehind board.Bitboard
		if sq.Rank() < board.Rank8 {
			nearAhead |= board.BitRank(sq.Rank() + 1)
		}
		if sq.Rank() < board.Rank7 {
			nearAhead |= board.BitRank(sq.Rank() + 2)
		}
		if sq.Rank() > board.Rank1 {
			nearBehind |= board.BitRank(sq.Rank() - 1)
		}
		if sq.Rank() > board.Rank2 {
			nearBehind |= board.BitRank(sq.Rank() - 2)
		}
		shieldZone[board.White][sq] = files & nearAhead
		shieldZone[board.Black][sq] = files & nearBehind
	}
}

package board

// IsDrawBy50 returns true iff the position is drawn under the 50-move rule.
func (p *Position) IsDrawBy50() bool {
	return p.halfmove >= 100
}

// IsDrawByRepetition returns true iff the position occurred at least num
// times in total, scanning the move stack back to the last irreversible
// move. The classical rule requires num=3; a search may call with num=2.
func (p *Position) IsDrawByRepetition(num int) bool {
	l := len(p.stack)
	if l < 4 {
		return false
	}

	from := l - p.halfmove
	if from < 0 {
		from = 0
	}
	count := 1
	for i := l - 2; i >= from; i -= 2 {
		if p.stack[i].hash == p.hash {
			count++
			if count >= num {
				return true
			}
		}
	}
	return false
}

var (
	lightSquares = Bitboard(0x55AA55AA55AA55AA)
	darkSquares  = Bitboard(0xAA55AA55AA55AA55)
)

// HasInsufficientMaterial returns true iff neither side can possibly deliver
// mate: bare kings, king vs king and minor, or king and bishop each with both
// bishops on the same square color.
//
// See: https://www.chessprogramming.org/Draw_Evaluation.
func (p *Position) HasInsufficientMaterial() bool {
	if p.pieces[White][Pawn]|p.pieces[Black][Pawn] != 0 {
		return false
	}
	if p.matEG[White] > PieceValueEG(Bishop) || p.matEG[Black] > PieceValueEG(Bishop) {
		return false
	}

	total := p.matEG[White] + p.matEG[Black]
	if total >= 2*PieceValueEG(Knight) {
		if total == 2*PieceValueEG(Bishop) {
			bishops := p.pieces[White][Bishop] | p.pieces[Black][Bishop]
			if bishops&lightSquares == bishops || bishops&darkSquares == bishops {
				return true
			}
		}
		return false
	}
	return true
}

package board

import "fmt"

// Validate checks the internal invariants of the position: bitboard/mailbox
// agreement, incremental hashes and evaluation accumulators against their
// from-scratch derivations, and king safety of the side not to move. Intended
// for tests and debugging; it rescans the whole position.
func (p *Position) Validate() error {
	for c := ZeroColor; c < NumColors; c++ {
		var union Bitboard
		for pc := ZeroPiece; pc < NumPieces; pc++ {
			union |= p.pieces[c][pc]
		}
		if union != p.sides[c] {
			return fmt.Errorf("side bitboard mismatch for %v: %v != %v", c, p.sides[c], union)
		}
	}
	if p.occupied != p.sides[White]|p.sides[Black] {
		return fmt.Errorf("occupancy mismatch: %v", p.occupied)
	}
	if p.sides[White]&p.sides[Black] != 0 {
		return fmt.Errorf("overlapping sides: %v", p.sides[White]&p.sides[Black])
	}

	for sq := ZeroSquare; sq < NumSquares; sq++ {
		pc := p.squares[sq]
		if pc == NoPiece {
			if p.occupied.IsSet(sq) {
				return fmt.Errorf("mailbox empty but occupied: %v", sq)
			}
			continue
		}
		if !p.occupied.IsSet(sq) {
			return fmt.Errorf("mailbox %v but unoccupied: %v", pc, sq)
		}
		c := White
		if p.sides[Black].IsSet(sq) {
			c = Black
		}
		if !p.pieces[c][pc].IsSet(sq) {
			return fmt.Errorf("mailbox disagrees with bitboards at %v: %v", sq, pc)
		}
	}

	if hash := computeZobrist(p); hash != p.hash {
		return fmt.Errorf("zobrist mismatch: %x != %x", p.hash, hash)
	}
	if hash := computePawnHash(p); hash != p.pawnHash {
		return fmt.Errorf("pawn hash mismatch: %x != %x", p.pawnHash, hash)
	}

	phase, matMG, matEG, pstMG, pstEG := computeScores(p)
	switch {
	case phase != p.phase:
		return fmt.Errorf("phase mismatch: %v != %v", p.phase, phase)
	case matMG != p.matMG, matEG != p.matEG:
		return fmt.Errorf("material mismatch: %v/%v != %v/%v", p.matMG, p.matEG, matMG, matEG)
	case pstMG != p.pstMG, pstEG != p.pstEG:
		return fmt.Errorf("piece-square mismatch: %v/%v != %v/%v", p.pstMG, p.pstEG, pstMG, pstEG)
	}

	if p.IsChecked(p.stm.Opponent()) {
		return fmt.Errorf("side not to move is in check")
	}
	return nil
}

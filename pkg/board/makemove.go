package board

// PushMove attempts to make a pseudo-legal move. Returns true iff legal: a
// move leaving the mover's king attacked is unmade again before returning.
// Castles and en passant are assumed verified by the generator.
func (p *Position) PushMove(m Move) bool {
	us := p.stm
	them := us.Opponent()
	from, to, flag := m.From(), m.To(), m.Flag()
	fromBit, toBit := BitMask(from), BitMask(to)
	moved := p.squares[from]

	ctx := MoveContext{
		move:      m,
		moved:     moved,
		captured:  NoPiece,
		castling:  p.castling,
		enpassant: p.enpassant,
		halfmove:  p.halfmove,
		hash:      p.hash,
		pawnHash:  p.pawnHash,
		phase:     p.phase,
		matMG:     p.matMG,
		matEG:     p.matEG,
		pstMG:     p.pstMG,
		pstEG:     p.pstEG,
	}

	// (1) Lift the moved piece and undo the prior hash metadata.

	p.squares[from] = NoPiece
	p.pieces[us][moved] ^= fromBit | toBit
	p.sides[us] ^= fromBit | toBit
	p.pstMG[us] -= weightMG(from, us, moved)
	p.pstEG[us] -= weightEG(from, us, moved)
	p.hash ^= zobrist.side
	p.hash ^= pieceHash(from, us, moved)
	if p.enpassant != ZeroSquare {
		p.hash ^= enpassantHash(p.enpassant.File())
	}
	p.enpassant = ZeroSquare

	// (2) Flag-specific updates.

	switch {
	case flag == Quiet || flag == DoublePush:
		p.squares[to] = moved
		p.pstMG[us] += weightMG(to, us, moved)
		p.pstEG[us] += weightEG(to, us, moved)
		p.hash ^= pieceHash(to, us, moved)
		if moved == Pawn {
			p.pawnHash ^= pieceHash(from, us, Pawn) ^ pieceHash(to, us, Pawn)
		}
		if flag == DoublePush {
			if us == White {
				p.enpassant = to - 8
			} else {
				p.enpassant = to + 8
			}
			p.hash ^= enpassantHash(to.File())
		}

	case flag == Capture:
		captured := p.squares[to]
		ctx.captured = captured
		p.pieces[them][captured] ^= toBit
		p.sides[them] ^= toBit
		p.squares[to] = moved
		p.pstMG[us] += weightMG(to, us, moved)
		p.pstEG[us] += weightEG(to, us, moved)
		p.matMG[them] -= PieceValueMG(captured)
		p.matEG[them] -= PieceValueEG(captured)
		p.pstMG[them] -= weightMG(to, them, captured)
		p.pstEG[them] -= weightEG(to, them, captured)
		p.hash ^= pieceHash(to, us, moved) ^ pieceHash(to, them, captured)
		p.phase -= PhaseValue(captured)
		if moved == Pawn {
			p.pawnHash ^= pieceHash(from, us, Pawn) ^ pieceHash(to, us, Pawn)
		}
		if captured == Pawn {
			p.pawnHash ^= pieceHash(to, them, Pawn)
		}

	case flag == EnPassant:
		ctx.captured = Pawn
		capSq := enpassantVictim(us, to)
		capBit := BitMask(capSq)
		p.pieces[them][Pawn] ^= capBit
		p.sides[them] ^= capBit
		p.squares[to] = Pawn
		p.squares[capSq] = NoPiece
		p.pstMG[us] += weightMG(to, us, Pawn)
		p.pstEG[us] += weightEG(to, us, Pawn)
		p.matMG[them] -= PieceValueMG(Pawn)
		p.matEG[them] -= PieceValueEG(Pawn)
		p.pstMG[them] -= weightMG(capSq, them, Pawn)
		p.pstEG[them] -= weightEG(capSq, them, Pawn)
		p.hash ^= pieceHash(to, us, Pawn) ^ pieceHash(capSq, them, Pawn)
		p.pawnHash ^= pieceHash(from, us, Pawn) ^ pieceHash(to, us, Pawn) ^ pieceHash(capSq, them, Pawn)

	case flag == KingCastle || flag == QueenCastle:
		rookFrom, rookTo := castlingRookMove(us, flag)
		rookBits := BitMask(rookFrom) | BitMask(rookTo)
		p.pieces[us][Rook] ^= rookBits
		p.sides[us] ^= rookBits
		p.squares[rookFrom] = NoPiece
		p.squares[rookTo] = Rook
		p.squares[to] = King
		p.pstMG[us] += weightMG(to, us, King) - weightMG(rookFrom, us, Rook) + weightMG(rookTo, us, Rook)
		p.pstEG[us] += weightEG(to, us, King) - weightEG(rookFrom, us, Rook) + weightEG(rookTo, us, Rook)
		p.hash ^= pieceHash(to, us, King) ^ pieceHash(rookFrom, us, Rook) ^ pieceHash(rookTo, us, Rook)

	default:
		// Promotion: replace the pawn with the promoted piece on the
		// destination square, processing a capture first if present.

		promo, _ := m.Promotion()
		if m.IsCapture() {
			captured := p.squares[to]
			ctx.captured = captured
			p.pieces[them][captured] ^= toBit
			p.sides[them] ^= toBit
			p.matMG[them] -= PieceValueMG(captured)
			p.matEG[them] -= PieceValueEG(captured)
			p.pstMG[them] -= weightMG(to, them, captured)
			p.pstEG[them] -= weightEG(to, them, captured)
			p.hash ^= pieceHash(to, them, captured)
			p.phase -= PhaseValue(captured)
		}
		p.pieces[us][Pawn] ^= toBit
		p.pieces[us][promo] ^= toBit
		p.squares[to] = promo
		p.pstMG[us] += weightMG(to, us, promo)
		p.pstEG[us] += weightEG(to, us, promo)
		p.matMG[us] += PieceValueMG(promo) - PieceValueMG(Pawn)
		p.matEG[us] += PieceValueEG(promo) - PieceValueEG(Pawn)
		p.phase += PhaseValue(promo)
		p.hash ^= pieceHash(to, us, promo)
		p.pawnHash ^= pieceHash(from, us, Pawn)
	}

	// (3) Shared state: castling rights, clocks, occupancy, side to move.

	if moved == King {
		p.pawnHash ^= pieceHash(from, us, King) ^ pieceHash(to, us, King)
	}

	p.castling &= castlingMask[from] & castlingMask[to]
	p.hash ^= castlingHash(ctx.castling ^ p.castling)

	if moved == Pawn || m.IsCapture() {
		p.halfmove = 0
	} else {
		p.halfmove++
	}
	if us == Black {
		p.fullmove++
	}

	p.occupied = p.sides[White] | p.sides[Black]
	p.stm = them
	p.stack = append(p.stack, ctx)

	// (4) Legality: the mover's king may not be left attacked.

	if p.IsSquareAttacked(p.KingSquare(us), us, p.occupied) {
		p.PopMove()
		return false
	}
	return true
}

// PopMove unmakes the latest move, restoring all state bit-for-bit.
func (p *Position) PopMove() (Move, bool) {
	if len(p.stack) == 0 {
		return 0, false
	}
	ctx := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	p.stm = p.stm.Opponent()
	us := p.stm
	them := us.Opponent()
	m := ctx.move
	from, to, flag := m.From(), m.To(), m.Flag()
	fromBit, toBit := BitMask(from), BitMask(to)

	// (1) Restore snapshotted state.

	p.castling = ctx.castling
	p.enpassant = ctx.enpassant
	p.halfmove = ctx.halfmove
	p.hash = ctx.hash
	p.pawnHash = ctx.pawnHash
	p.phase = ctx.phase
	p.matMG = ctx.matMG
	p.matEG = ctx.matEG
	p.pstMG = ctx.pstMG
	p.pstEG = ctx.pstEG
	if us == Black {
		p.fullmove--
	}

	// (2) Reverse the piece movement.

	p.squares[from] = ctx.moved
	p.pieces[us][ctx.moved] ^= fromBit | toBit
	p.sides[us] ^= fromBit | toBit

	switch {
	case flag == Quiet || flag == DoublePush:
		p.squares[to] = NoPiece

	case flag == Capture:
		p.pieces[them][ctx.captured] ^= toBit
		p.sides[them] ^= toBit
		p.squares[to] = ctx.captured

	case flag == EnPassant:
		capSq := enpassantVictim(us, to)
		p.pieces[them][Pawn] ^= BitMask(capSq)
		p.sides[them] ^= BitMask(capSq)
		p.squares[capSq] = Pawn
		p.squares[to] = NoPiece

	case flag == KingCastle || flag == QueenCastle:
		rookFrom, rookTo := castlingRookMove(us, flag)
		rookBits := BitMask(rookFrom) | BitMask(rookTo)
		p.pieces[us][Rook] ^= rookBits
		p.sides[us] ^= rookBits
		p.squares[rookTo] = NoPiece
		p.squares[rookFrom] = Rook
		p.squares[to] = NoPiece

	default:
		promo, _ := m.Promotion()
		p.pieces[us][Pawn] ^= toBit
		p.pieces[us][promo] ^= toBit
		if m.IsCapture() {
			p.pieces[them][ctx.captured] ^= toBit
			p.sides[them] ^= toBit
			p.squares[to] = ctx.captured
		} else {
			p.squares[to] = NoPiece
		}
	}

	p.occupied = p.sides[White] | p.sides[Black]
	return m, true
}

// enpassantVictim returns the square of the pawn captured en passant, given
// the capturing side and target square.
func enpassantVictim(us Color, to Square) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

// castlingRookMove returns the home and destination square of the rook for
// the given castle.
func castlingRookMove(us Color, flag MoveFlag) (Square, Square) {
	switch {
	case us == White && flag == KingCastle:
		return H1, F1
	case us == White && flag == QueenCastle:
		return A1, D1
	case flag == KingCastle:
		return H8, F8
	default:
		return A8, D8
	}
}

package board

// penultimateRank is the rank a pawn promotes from, per color.
var penultimateRank = [NumColors]Bitboard{BitRank(Rank7), BitRank(Rank2)}

// GenerateMoves appends all pseudo-legal moves to the list: captures always,
// quiet moves when requested. Every move except castles and en passant is
// verified legal at PushMove time by the king-attack check; castles and en
// passant are verified here because their illegality is not detectable by the
// post-move king check.
func (p *Position) GenerateMoves(list *MoveList, quiet bool) {
	us := p.stm
	opps := p.sides[us.Opponent()]
	occ := p.occupied
	pawns := p.pieces[us][Pawn]

	if quiet {
		if p.castling.IsAllowed(CastlingRightsOf(us)) && !p.InCheck() {
			p.generateCastles(list, occ)
		}
		p.generatePawnPushes(list, occ, pawns)
	}
	if p.enpassant != ZeroSquare {
		p.generateEnPassants(list, pawns)
	}
	p.generatePawnCaptures(list, pawns, opps)
	for pc := Knight; pc <= King; pc++ {
		p.generatePieceMoves(list, pc, occ, opps, quiet)
	}
}

// generateCastles emits castles whose inter-squares are empty and whose
// king-transit square is not attacked. The destination square is covered by
// the PushMove legality check, the origin by the in-check gate above.
func (p *Position) generateCastles(list *MoveList, occ Bitboard) {
	if p.stm == White {
		if p.castling.IsAllowed(WhiteQueenSideCastle) &&
			occ&(BitMask(B1)|BitMask(C1)|BitMask(D1)) == 0 &&
			!p.IsSquareAttacked(D1, White, occ) {
			list.Add(NewMove(E1, C1, QueenCastle))
		}
		if p.castling.IsAllowed(WhiteKingSideCastle) &&
			occ&(BitMask(F1)|BitMask(G1)) == 0 &&
			!p.IsSquareAttacked(F1, White, occ) {
			list.Add(NewMove(E1, G1, KingCastle))
		}
	} else {
		if p.castling.IsAllowed(BlackQueenSideCastle) &&
			occ&(BitMask(B8)|BitMask(C8)|BitMask(D8)) == 0 &&
			!p.IsSquareAttacked(D8, Black, occ) {
			list.Add(NewMove(E8, C8, QueenCastle))
		}
		if p.castling.IsAllowed(BlackKingSideCastle) &&
			occ&(BitMask(F8)|BitMask(G8)) == 0 &&
			!p.IsSquareAttacked(F8, Black, occ) {
			list.Add(NewMove(E8, G8, KingCastle))
		}
	}
}

func (p *Position) generatePawnPushes(list *MoveList, occ, pawns Bitboard) {
	empty := ^occ

	var push, dbl Bitboard
	var fwd int
	if p.stm == White {
		push = (empty >> 8) & pawns
		dbl = ((empty&BitRank(Rank4))>>8&empty)>>8 & pawns
		fwd = 8
	} else {
		push = (empty << 8) & pawns
		dbl = ((empty&BitRank(Rank5))<<8&empty)<<8 & pawns
		fwd = -8
	}

	promo := push & penultimateRank[p.stm]
	push &^= penultimateRank[p.stm]

	for ; push != 0; push = push.Drop() {
		from := push.FirstSquare()
		list.Add(NewMove(from, Square(int(from)+fwd), Quiet))
	}
	for ; promo != 0; promo = promo.Drop() {
		from := promo.FirstSquare()
		addPromotions(list, from, Square(int(from)+fwd), false)
	}
	for ; dbl != 0; dbl = dbl.Drop() {
		from := dbl.FirstSquare()
		list.Add(NewMove(from, Square(int(from)+2*fwd), DoublePush))
	}
}

func (p *Position) generatePawnCaptures(list *MoveList, pawns, opps Bitboard) {
	us := p.stm
	promo := pawns & penultimateRank[us]
	pawns &^= penultimateRank[us]

	for ; pawns != 0; pawns = pawns.Drop() {
		from := pawns.FirstSquare()
		for att := PawnAttackboard(us, from) & opps; att != 0; att = att.Drop() {
			list.Add(NewMove(from, att.FirstSquare(), Capture))
		}
	}
	for ; promo != 0; promo = promo.Drop() {
		from := promo.FirstSquare()
		for att := PawnAttackboard(us, from) & opps; att != 0; att = att.Drop() {
			addPromotions(list, from, att.FirstSquare(), true)
		}
	}
}

func (p *Position) generateEnPassants(list *MoveList, pawns Bitboard) {
	us := p.stm
	to := p.enpassant
	for att := PawnAttackboard(us.Opponent(), to) & pawns; att != 0; att = att.Drop() {
		from := att.FirstSquare()
		if p.enpassantIsLegal(from, to) {
			list.Add(NewMove(from, to, EnPassant))
		}
	}
}

// enpassantIsLegal plays the minimal bitboard transition of the en passant
// capture and checks whether it exposes the own king. Removing two pawns from
// one rank can uncover a rank attack that the normal pin logic misses.
func (p *Position) enpassantIsLegal(from, to Square) bool {
	us := p.stm
	them := us.Opponent()
	moveBits := BitMask(from) | BitMask(to)
	capBit := BitMask(enpassantVictim(us, to))

	p.pieces[us][Pawn] ^= moveBits
	p.sides[us] ^= moveBits
	p.pieces[them][Pawn] ^= capBit
	p.sides[them] ^= capBit

	occ := p.sides[White] | p.sides[Black]
	legal := !p.IsSquareAttacked(p.KingSquare(us), us, occ)

	p.pieces[us][Pawn] ^= moveBits
	p.sides[us] ^= moveBits
	p.pieces[them][Pawn] ^= capBit
	p.sides[them] ^= capBit

	return legal
}

func (p *Position) generatePieceMoves(list *MoveList, pc Piece, occ, opps Bitboard, quiet bool) {
	for bb := p.pieces[p.stm][pc]; bb != 0; bb = bb.Drop() {
		from := bb.FirstSquare()

		var att Bitboard
		switch pc {
		case Knight:
			att = KnightAttackboard(from)
		case Bishop:
			att = BishopAttackboard(from, occ)
		case Rook:
			att = RookAttackboard(from, occ)
		case Queen:
			att = QueenAttackboard(from, occ)
		case King:
			att = KingAttackboard(from)
		}

		for caps := att & opps; caps != 0; caps = caps.Drop() {
			list.Add(NewMove(from, caps.FirstSquare(), Capture))
		}
		if quiet {
			for quiets := att &^ occ; quiets != 0; quiets = quiets.Drop() {
				list.Add(NewMove(from, quiets.FirstSquare(), Quiet))
			}
		}
	}
}

func addPromotions(list *MoveList, from, to Square, capture bool) {
	base := KnightPromo
	if capture {
		base = KnightPromoCapture
	}
	for i := MoveFlag(0); i < 4; i++ {
		list.Add(NewMove(from, to, base+i<<12))
	}
}

// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/herohde/kestrel/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode returns a new position from a FEN description.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (*board.Position, error) {
	// A FEN record contains six fields separated by spaces:
	// placement, active color, castling, en passant, halfmove, fullmove.

	// The clock fields are optional: test and analysis positions commonly
	// omit them.

	parts := strings.Fields(strings.TrimSpace(fen))
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("invalid number of sections in FEN: '%v'", fen)
	}

	// (1) Piece placement, rank 8 first, file a through h within each rank.

	var pieces []board.Placement

	file, rank := board.FileA, board.Rank8
	for _, r := range parts[0] {
		switch {
		case r == '/':
			if file != board.NumFiles || rank == board.Rank1 {
				return nil, fmt.Errorf("invalid placement in FEN: '%v'", fen)
			}
			file, rank = board.FileA, rank-1

		case unicode.IsDigit(r):
			file += board.File(r - '0')

		default:
			piece, ok := board.ParsePiece(r)
			if !ok {
				return nil, fmt.Errorf("invalid piece '%v' in FEN: '%v'", string(r), fen)
			}
			color := board.Black
			if unicode.IsUpper(r) {
				color = board.White
			}
			if file >= board.NumFiles {
				return nil, fmt.Errorf("invalid placement in FEN: '%v'", fen)
			}
			pieces = append(pieces, board.Placement{Square: board.NewSquare(file, rank), Color: color, Piece: piece})
			file++
		}
	}
	if file != board.NumFiles || rank != board.Rank1 {
		return nil, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
	}

	// (2) Active color.

	var active board.Color
	switch parts[1] {
	case "w", "W":
		active = board.White
	case "b", "B":
		active = board.Black
	default:
		return nil, fmt.Errorf("invalid active color in FEN: '%v'", fen)
	}

	// (3) Castling availability: "-" or any subset of "KQkq".

	castling, ok := parseCastling(parts[2])
	if !ok {
		return nil, fmt.Errorf("invalid castling in FEN: '%v'", fen)
	}

	// (4) En passant target square, or "-".

	var ep board.Square
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		if r := sq.Rank(); r != board.Rank3 && r != board.Rank6 {
			return nil, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		ep = sq
	}

	// (5) Halfmove clock and (6) fullmove number.

	halfmove, fullmove := 0, 1
	if len(parts) >= 5 {
		n, err := strconv.Atoi(parts[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid halfmove in FEN: '%v'", fen)
		}
		halfmove = n
	}
	if len(parts) == 6 {
		n, err := strconv.Atoi(parts[5])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid full moves in FEN: '%v'", fen)
		}
		fullmove = n
	}

	return board.NewPosition(pieces, active, castling, ep, halfmove, fullmove)
}

// Encode encodes the position in FEN notation.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for r := board.NumRanks; r > 0; r-- {
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			color, piece, ok := pos.Square(board.NewSquare(f, board.Rank(r-1)))
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(printPiece(color, piece))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > 1 {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.Turn(), pos.Castling(), ep, pos.HalfmoveClock(), pos.FullMoves())
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling

	if str == "-" {
		return ret, true
	}
	for _, r := range str {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func printPiece(c board.Color, p board.Piece) string {
	if c == board.White {
		return strings.ToUpper(p.String())
	}
	return p.String()
}

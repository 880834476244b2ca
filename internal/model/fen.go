package model

import (
	"fmt"
	"strings"
)

func fenLetter(p Piece) byte {
	letter := byte(p.Type)
	if p.Type == Pawn {
		letter = 'P'
	}
	if p.Color == Black {
		letter += 'a' - 'A'
	}
	return letter
}

func pieceFromFEN(letter byte) (Piece, bool) {
	color := White
	if letter >= 'a' && letter <= 'z' {
		color = Black
		letter -= 'a' - 'A'
	}
	switch letter {
	case 'P':
		return Piece{Color: color, Type: Pawn}, true
	case 'N', 'B', 'R', 'Q', 'K':
		return Piece{Color: color, Type: PieceType(letter)}, true
	}
	return Empty, false
}

// FEN renders the placement and side to move. Castling and en passant are
// not played, so those fields are always "-".
func (b *BoardState) FEN() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		gap := 0
		for x := 0; x < 8; x++ {
			p := b.grid[y][x]
			if p.IsEmpty() {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteByte(byte('0' + gap))
				gap = 0
			}
			sb.WriteByte(fenLetter(p))
		}
		if gap > 0 {
			sb.WriteByte(byte('0' + gap))
		}
	}
	side := "w"
	if !b.whiteToMove {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s - - 0 %d", side, len(b.moveLog)/2+1)
	return sb.String()
}

// ParseFEN builds a board from the placement field and, if present, the side
// to move. Remaining fields are ignored. Exactly one king per color is
// required, and the side that just moved may not be left in check.
func ParseFEN(text string) (*BoardState, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(rows))
	}

	b := &BoardState{whiteToMove: true}
	kings := map[Color]int{}
	for y, row := range rows {
		x := 0
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '1' && c <= '8' {
				x += int(c - '0')
				continue
			}
			p, ok := pieceFromFEN(c)
			if !ok {
				return nil, fmt.Errorf("%w: bad piece %q", ErrInvalidFEN, c)
			}
			if x >= 8 {
				return nil, fmt.Errorf("%w: rank %d too long", ErrInvalidFEN, 8-y)
			}
			b.grid[y][x] = p
			if p.Type == King {
				kings[p.Color]++
				b.setKingPosition(p.Color, Position{X: x, Y: y})
			}
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, 8-y, x)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return nil, fmt.Errorf("%w: need exactly one king per side", ErrInvalidFEN)
	}

	if len(fields) > 1 {
		switch fields[1] {
		case "w":
		case "b":
			b.whiteToMove = false
		default:
			return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
		}
	}

	// otherwise the side to move could capture the enemy king
	b.whiteToMove = !b.whiteToMove
	exposed := b.InCheck()
	b.whiteToMove = !b.whiteToMove
	if exposed {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	return b, nil
}

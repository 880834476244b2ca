package model

import (
	"encoding/json"
	"fmt"
)

type Color byte

const (
	White Color = 'w'
	Black Color = 'b'
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return ""
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

type PieceType byte

const (
	Pawn   PieceType = 'p'
	Knight PieceType = 'N'
	Bishop PieceType = 'B'
	Rook   PieceType = 'R'
	Queen  PieceType = 'Q'
	King   PieceType = 'K'
)

func (p PieceType) valid() bool {
	switch p {
	case Pawn, Knight, Bishop, Rook, Queen, King:
		return true
	}
	return false
}

// Piece is a colored piece or the Empty sentinel. It is comparable, so squares
// can be tested with == directly.
type Piece struct {
	Color Color
	Type  PieceType
}

// Empty marks an unoccupied square.
var Empty = Piece{}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

// String returns the two-character code, e.g. "wp" or "bK", and "--" for Empty.
func (p Piece) String() string {
	if p.IsEmpty() {
		return "--"
	}
	return string([]byte{byte(p.Color), byte(p.Type)})
}

func (p Piece) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// ParsePiece is the inverse of Piece.String.
func ParsePiece(code string) (Piece, error) {
	if code == "--" {
		return Empty, nil
	}
	if len(code) != 2 {
		return Empty, fmt.Errorf("piece %q: %w", code, ErrInvalidPiece)
	}
	p := Piece{Color: Color(code[0]), Type: PieceType(code[1])}
	if (p.Color != White && p.Color != Black) || !p.Type.valid() {
		return Empty, fmt.Errorf("piece %q: %w", code, ErrInvalidPiece)
	}
	return p, nil
}

// Position is a square. X is the column (0 = file a), Y is the row with 0 on
// black's side and 7 on white's side.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) OnBoard() bool {
	return p.X >= 0 && p.X < 8 && p.Y >= 0 && p.Y < 8
}

func (p Position) add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Position) String() string {
	if !p.OnBoard() {
		return fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return fmt.Sprintf("%c%d", p.X+'a', 8-p.Y)
}

// ParsePosition reads a square name such as "e2".
func ParsePosition(name string) (Position, error) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return Position{}, fmt.Errorf("square %q: %w", name, ErrOffBoard)
	}
	return Position{X: int(name[0] - 'a'), Y: int('8' - name[1])}, nil
}

const (
	whitePawnRow = 6
	blackPawnRow = 1
)

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// BoardState owns the grid, the side to move, the move log and the cached king
// squares. The zero value is not usable; construct with NewBoard or ParseFEN.
type BoardState struct {
	grid        [8][8]Piece
	whiteToMove bool
	moveLog     []Move
	whiteKing   Position
	blackKing   Position
}

// NewBoard returns the standard starting position with white to move.
func NewBoard() *BoardState {
	b := &BoardState{whiteToMove: true}
	for x, t := range backRank {
		b.grid[0][x] = Piece{Color: Black, Type: t}
		b.grid[7][x] = Piece{Color: White, Type: t}
		b.grid[blackPawnRow][x] = Piece{Color: Black, Type: Pawn}
		b.grid[whitePawnRow][x] = Piece{Color: White, Type: Pawn}
	}
	b.blackKing = Position{X: 4, Y: 0}
	b.whiteKing = Position{X: 4, Y: 7}
	return b
}

// At returns the piece on p. Coordinates outside the board are a programming
// error and panic.
func (b *BoardState) At(p Position) Piece {
	if !p.OnBoard() {
		panic(fmt.Sprintf("model: square %v is off the board", p))
	}
	return b.grid[p.Y][p.X]
}

func (b *BoardState) set(p Position, piece Piece) {
	b.grid[p.Y][p.X] = piece
}

// Grid returns a copy of the board for rendering.
func (b *BoardState) Grid() [8][8]Piece {
	return b.grid
}

func (b *BoardState) WhiteToMove() bool {
	return b.whiteToMove
}

func (b *BoardState) SideToMove() Color {
	if b.whiteToMove {
		return White
	}
	return Black
}

func (b *BoardState) KingPosition(c Color) Position {
	if c == White {
		return b.whiteKing
	}
	return b.blackKing
}

func (b *BoardState) setKingPosition(c Color, p Position) {
	if c == White {
		b.whiteKing = p
	} else {
		b.blackKing = p
	}
}

// MoveLog returns the applied moves, oldest first.
func (b *BoardState) MoveLog() []Move {
	return append([]Move(nil), b.moveLog...)
}

func (b *BoardState) LastMove() (Move, bool) {
	if len(b.moveLog) == 0 {
		return Move{}, false
	}
	return b.moveLog[len(b.moveLog)-1], true
}

// Apply plays m if it is one of the current legal moves. The generated move
// is the one recorded, so the moved and captured pieces of m are ignored.
func (b *BoardState) Apply(m Move) error {
	legal, ok := b.FindLegal(m)
	if !ok {
		return &MoveError{Move: m.String(), Err: ErrIllegalMove}
	}
	b.makeMove(legal)
	return nil
}

// Undo takes back the last applied move. It reports false when the log is
// empty and leaves the board untouched.
func (b *BoardState) Undo() (Move, bool) {
	if len(b.moveLog) == 0 {
		return Move{}, false
	}
	m := b.moveLog[len(b.moveLog)-1]
	b.moveLog = b.moveLog[:len(b.moveLog)-1]
	b.set(m.From, m.Piece)
	b.set(m.To, m.Captured)
	b.whiteToMove = !b.whiteToMove
	if m.Piece.Type == King {
		b.setKingPosition(m.Piece.Color, m.From)
	}
	return m, true
}

// makeMove applies m without any legality check.
func (b *BoardState) makeMove(m Move) {
	b.set(m.From, Empty)
	b.set(m.To, m.Piece)
	b.moveLog = append(b.moveLog, m)
	b.whiteToMove = !b.whiteToMove
	if m.Piece.Type == King {
		b.setKingPosition(m.Piece.Color, m.To)
	}
}

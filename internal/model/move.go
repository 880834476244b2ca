package model

import "fmt"

// Move is an immutable from/to pair with the pieces involved when it was
// created. Equality is by coordinates only.
type Move struct {
	From     Position
	To       Position
	Piece    Piece
	Captured Piece
}

// NewMove records the piece on from and whatever stands on to.
func NewMove(from, to Position, b *BoardState) Move {
	return Move{From: from, To: to, Piece: b.At(from), Captured: b.At(to)}
}

// ID packs the four coordinates into one integer; two moves are Equal iff
// their IDs match.
func (m Move) ID() int {
	return m.From.Y*1000 + m.From.X*100 + m.To.Y*10 + m.To.X
}

func (m Move) Equal(o Move) bool {
	return m.From == o.From && m.To == o.To
}

// String returns the square-pair form, e.g. "e2e4".
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// ParseMove reads a square-pair such as "e2e4". The result carries no piece
// information; look it up with FindLegal before use.
func ParseMove(text string) (Move, error) {
	if len(text) != 4 {
		return Move{}, fmt.Errorf("move %q: %w", text, ErrOffBoard)
	}
	from, err := ParsePosition(text[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParsePosition(text[2:])
	if err != nil {
		return Move{}, err
	}
	return Move{From: from, To: to}, nil
}

// WSMove is what clients send: either board coordinates of the two clicked
// squares or the square-pair text.
type WSMove struct {
	From     Position `json:"from"`
	To       Position `json:"to"`
	Notation string   `json:"move,omitempty"`
}

func (w WSMove) ToMove() (Move, error) {
	if w.Notation != "" {
		return ParseMove(w.Notation)
	}
	if !w.From.OnBoard() || !w.To.OnBoard() {
		return Move{}, fmt.Errorf("move %v-%v: %w", w.From, w.To, ErrOffBoard)
	}
	return Move{From: w.From, To: w.To}, nil
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func (m Move) Simple() SimpleMove {
	return SimpleMove{From: m.From, To: m.To}
}

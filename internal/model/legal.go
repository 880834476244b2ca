package model

import "golang.org/x/exp/slices"

// LegalMoves returns every legal move for the side to move. The result is
// computed fresh on each call and goes stale after Apply or Undo.
func (b *BoardState) LegalMoves() []Move {
	inCheck, pins, checks := b.PinsAndChecks()
	g := newMoveGen(b, pins)
	if !inCheck {
		return g.all()
	}
	king := b.KingPosition(g.color)
	if len(checks) > 1 {
		// a double check can only be met by moving the king
		return g.kingMoves(king, nil)
	}

	block := b.blockingSquares(checks[0])
	moves := g.all()
	legal := moves[:0]
	for _, m := range moves {
		if m.Piece.Type == King || slices.Contains(block, m.To) {
			legal = append(legal, m)
		}
	}
	return legal
}

// FindLegal returns the generated legal move with the same coordinates as m.
func (b *BoardState) FindLegal(m Move) (Move, bool) {
	if !m.From.OnBoard() || !m.To.OnBoard() {
		return Move{}, false
	}
	legal := b.LegalMoves()
	i := slices.IndexFunc(legal, m.Equal)
	if i < 0 {
		return Move{}, false
	}
	return legal[i], true
}

func (b *BoardState) IsLegal(m Move) bool {
	_, ok := b.FindLegal(m)
	return ok
}

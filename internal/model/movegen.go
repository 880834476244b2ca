package model

// moveGen produces pseudo-legal moves for the side to move, with pins from
// the current position already honored.
type moveGen struct {
	b     *BoardState
	color Color
	pins  []Ray
}

func newMoveGen(b *BoardState, pins []Ray) *moveGen {
	return &moveGen{b: b, color: b.SideToMove(), pins: pins}
}

// pinFor returns the pin axis of the piece on sq, if it is pinned.
func (g *moveGen) pinFor(sq Position) (Position, bool) {
	for _, p := range g.pins {
		if p.Square == sq {
			return p.Dir, true
		}
	}
	return Position{}, false
}

// alongPin reports whether moving in dir keeps a pinned piece on its axis.
func alongPin(pinned bool, axis, dir Position) bool {
	return !pinned || dir == axis || dir == Position{X: -axis.X, Y: -axis.Y}
}

func (g *moveGen) all() []Move {
	moves := make([]Move, 0, 48)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			from := Position{X: x, Y: y}
			piece := g.b.At(from)
			if piece.IsEmpty() || piece.Color != g.color {
				continue
			}
			switch piece.Type {
			case Pawn:
				moves = g.pawnMoves(from, moves)
			case Knight:
				moves = g.knightMoves(from, moves)
			case Bishop:
				moves = g.slidingMoves(from, diagonalDirs, moves)
			case Rook:
				moves = g.slidingMoves(from, orthogonalDirs, moves)
			case Queen:
				moves = g.slidingMoves(from, allDirs, moves)
			case King:
				moves = g.kingMoves(from, moves)
			}
		}
	}
	return moves
}

func (g *moveGen) pawnMoves(from Position, moves []Move) []Move {
	axis, pinned := g.pinFor(from)
	forward := pawnForward(g.color)
	startRow := whitePawnRow
	if g.color == Black {
		startRow = blackPawnRow
	}

	push := Position{X: 0, Y: forward}
	one := from.add(push)
	if one.OnBoard() && g.b.At(one).IsEmpty() && alongPin(pinned, axis, push) {
		moves = append(moves, NewMove(from, one, g.b))
		two := one.add(push)
		if from.Y == startRow && g.b.At(two).IsEmpty() {
			moves = append(moves, NewMove(from, two, g.b))
		}
	}

	for _, dx := range [2]int{-1, 1} {
		dir := Position{X: dx, Y: forward}
		to := from.add(dir)
		if !to.OnBoard() {
			continue
		}
		target := g.b.At(to)
		if !target.IsEmpty() && target.Color != g.color && alongPin(pinned, axis, dir) {
			moves = append(moves, NewMove(from, to, g.b))
		}
	}
	return moves
}

func (g *moveGen) knightMoves(from Position, moves []Move) []Move {
	axis, pinned := g.pinFor(from)
	for _, off := range knightOffsets {
		to := from.add(off)
		if !to.OnBoard() || !alongPin(pinned, axis, off) {
			continue
		}
		if target := g.b.At(to); target.IsEmpty() || target.Color != g.color {
			moves = append(moves, NewMove(from, to, g.b))
		}
	}
	return moves
}

// slidingMoves ray-casts along dirs. A queen passes all eight directions in
// one call so its pin is looked up once.
func (g *moveGen) slidingMoves(from Position, dirs []Position, moves []Move) []Move {
	axis, pinned := g.pinFor(from)
	for _, dir := range dirs {
		if !alongPin(pinned, axis, dir) {
			continue
		}
		for to := from.add(dir); to.OnBoard(); to = to.add(dir) {
			target := g.b.At(to)
			if target.IsEmpty() {
				moves = append(moves, NewMove(from, to, g.b))
				continue
			}
			if target.Color != g.color {
				moves = append(moves, NewMove(from, to, g.b))
			}
			break
		}
	}
	return moves
}

// kingMoves only emits destinations where the king would not be in check.
// The king is moved there temporarily and put back afterwards.
func (g *moveGen) kingMoves(from Position, moves []Move) []Move {
	king := g.b.At(from)
	for _, dir := range allDirs {
		to := from.add(dir)
		if !to.OnBoard() {
			continue
		}
		target := g.b.At(to)
		if !target.IsEmpty() && target.Color == g.color {
			continue
		}

		g.b.set(from, Empty)
		g.b.set(to, king)
		g.b.setKingPosition(g.color, to)
		inCheck, _, _ := g.b.PinsAndChecks()
		g.b.set(to, target)
		g.b.set(from, king)
		g.b.setKingPosition(g.color, from)

		if !inCheck {
			moves = append(moves, Move{From: from, To: to, Piece: king, Captured: target})
		}
	}
	return moves
}

package model

// Ray is a pin or check record. For a pin, Square holds the pinned piece and
// Dir the direction from the king towards it. For a check, Square holds the
// checking piece and Dir the step from the king towards it, which is the
// knight offset itself for knight checks.
type Ray struct {
	Square Position
	Dir    Position
}

var (
	orthogonalDirs = []Position{{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}}
	diagonalDirs   = []Position{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 1}}
	allDirs        = append(append([]Position{}, orthogonalDirs...), diagonalDirs...)
	knightOffsets  = []Position{
		{X: -1, Y: -2}, {X: 1, Y: -2}, {X: -2, Y: -1}, {X: 2, Y: -1},
		{X: -2, Y: 1}, {X: 2, Y: 1}, {X: -1, Y: 2}, {X: 1, Y: 2},
	}
)

func pawnForward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// attacksAlong reports whether a piece of type t and color c, standing dist
// steps from a king in direction dir, attacks that king along the line.
func attacksAlong(t PieceType, c Color, dir Position, dist int) bool {
	orthogonal := dir.X == 0 || dir.Y == 0
	switch t {
	case Rook:
		return orthogonal
	case Bishop:
		return !orthogonal
	case Queen:
		return true
	case King:
		return dist == 1
	case Pawn:
		// the pawn must sit behind the king relative to its own advance
		return dist == 1 && !orthogonal && dir.Y == -pawnForward(c)
	}
	return false
}

// PinsAndChecks looks outward from the side to move's king and reports
// whether it is in check, which of its pieces are pinned and which enemy
// pieces give check. Nothing is cached between calls.
func (b *BoardState) PinsAndChecks() (inCheck bool, pins, checks []Ray) {
	ally := b.SideToMove()
	enemy := ally.Opponent()
	king := b.KingPosition(ally)

	for _, dir := range allDirs {
		var candidate Ray
		shielded := false
		sq := king
		for dist := 1; ; dist++ {
			sq = sq.add(dir)
			if !sq.OnBoard() {
				break
			}
			piece := b.At(sq)
			if piece.IsEmpty() {
				continue
			}
			if piece.Color == ally && piece.Type != King {
				if shielded {
					break
				}
				shielded = true
				candidate = Ray{Square: sq, Dir: dir}
				continue
			}
			if piece.Color == enemy && attacksAlong(piece.Type, enemy, dir, dist) {
				if shielded {
					pins = append(pins, candidate)
				} else {
					inCheck = true
					checks = append(checks, Ray{Square: sq, Dir: dir})
				}
			}
			break
		}
	}

	enemyKnight := Piece{Color: enemy, Type: Knight}
	for _, off := range knightOffsets {
		sq := king.add(off)
		if sq.OnBoard() && b.At(sq) == enemyKnight {
			inCheck = true
			checks = append(checks, Ray{Square: sq, Dir: off})
		}
	}
	return inCheck, pins, checks
}

// InCheck reports whether the side to move is in check.
func (b *BoardState) InCheck() bool {
	inCheck, _, _ := b.PinsAndChecks()
	return inCheck
}

// blockingSquares lists the destinations that resolve a single check by a
// non-king move.
func (b *BoardState) blockingSquares(check Ray) []Position {
	if b.At(check.Square).Type == Knight {
		return []Position{check.Square}
	}
	var squares []Position
	sq := b.KingPosition(b.SideToMove())
	for sq != check.Square {
		sq = sq.add(check.Dir)
		squares = append(squares, sq)
	}
	return squares
}

package model

import (
	"errors"
	"fmt"
)

// Sentinel errors; test with errors.Is.
var (
	// ErrIllegalMove indicates a move absent from the current legal moves.
	ErrIllegalMove = errors.New("illegal move")

	// ErrOffBoard indicates a square name or coordinate outside a1..h8.
	ErrOffBoard = errors.New("square off the board")

	ErrInvalidPiece = errors.New("invalid piece code")
	ErrInvalidFEN   = errors.New("invalid FEN")

	ErrGameFull      = errors.New("game is full")
	ErrNotInGame     = errors.New("player not in game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNothingToUndo = errors.New("nothing to undo")

	ErrAlreadyQueued = errors.New("player already in queue")
)

// MoveError attaches the offending move text to an underlying error.
type MoveError struct {
	Move string
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %q: %v", e.Move, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

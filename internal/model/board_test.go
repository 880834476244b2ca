package model

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/benbeisheim/chess-backend/internal/testutil"
)

func mustFEN(t *testing.T, fen string) *BoardState {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) error: %v", fen, err)
	}
	return b
}

func mustMove(t *testing.T, text string) Move {
	t.Helper()
	m, err := ParseMove(text)
	if err != nil {
		t.Fatalf("ParseMove(%q) error: %v", text, err)
	}
	return m
}

func sortedNotations(moves []Move) []string {
	out := notations(moves)
	sort.Strings(out)
	return out
}

func TestNewBoard(t *testing.T) {
	b := NewBoard()
	grid := b.Grid()

	rows := map[int]string{
		0: "bR bN bB bQ bK bB bN bR",
		1: "bp bp bp bp bp bp bp bp",
		4: "-- -- -- -- -- -- -- --",
		6: "wp wp wp wp wp wp wp wp",
		7: "wR wN wB wQ wK wB wN wR",
	}
	for y, want := range rows {
		got := ""
		for x := 0; x < 8; x++ {
			if x > 0 {
				got += " "
			}
			got += grid[y][x].String()
		}
		testutil.AssertEqual(t, got, want, "row %d", y)
	}

	testutil.AssertTrue(t, b.WhiteToMove())
	testutil.AssertEqual(t, b.KingPosition(White), Position{X: 4, Y: 7})
	testutil.AssertEqual(t, b.KingPosition(Black), Position{X: 4, Y: 0})
	testutil.AssertEqual(t, len(b.MoveLog()), 0)
	testutil.AssertEqual(t, b.FEN(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1")
}

func TestParsePiece(t *testing.T) {
	tests := []struct {
		code    string
		want    Piece
		wantErr bool
	}{
		{"wp", Piece{Color: White, Type: Pawn}, false},
		{"bK", Piece{Color: Black, Type: King}, false},
		{"wN", Piece{Color: White, Type: Knight}, false},
		{"--", Empty, false},
		{"xK", Empty, true},
		{"wZ", Empty, true},
		{"w", Empty, true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParsePiece(tt.code)
			if tt.wantErr {
				testutil.AssertErrorIs(t, err, ErrInvalidPiece)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.want)
			testutil.AssertEqual(t, got.String(), tt.code)
		})
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		want    Position
		wantErr bool
	}{
		{"a8", Position{X: 0, Y: 0}, false},
		{"h1", Position{X: 7, Y: 7}, false},
		{"e2", Position{X: 4, Y: 6}, false},
		{"i1", Position{}, true},
		{"a9", Position{}, true},
		{"a0", Position{}, true},
		{"e", Position{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePosition(tt.name)
			if tt.wantErr {
				testutil.AssertErrorIs(t, err, ErrOffBoard)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.want)
			testutil.AssertEqual(t, got.String(), tt.name)
		})
	}
}

func TestMoveIdentity(t *testing.T) {
	b := NewBoard()
	m := NewMove(Position{X: 4, Y: 6}, Position{X: 4, Y: 4}, b)

	testutil.AssertEqual(t, m.String(), "e2e4")
	testutil.AssertEqual(t, m.ID(), 6*1000+4*100+4*10+4)
	testutil.AssertEqual(t, m.Piece, Piece{Color: White, Type: Pawn})
	testutil.AssertTrue(t, m.Captured.IsEmpty())

	bare := mustMove(t, "e2e4")
	testutil.AssertTrue(t, m.Equal(bare), "equality ignores pieces")
	testutil.AssertEqual(t, bare.ID(), m.ID())
	testutil.AssertFalse(t, m.Equal(mustMove(t, "e2e3")))
}

func TestApplyAndUndo(t *testing.T) {
	b := NewBoard()
	before := b.Grid()

	testutil.AssertNoError(t, b.Apply(mustMove(t, "e2e4")))
	testutil.AssertFalse(t, b.WhiteToMove())
	testutil.AssertEqual(t, b.At(Position{X: 4, Y: 4}), Piece{Color: White, Type: Pawn})
	testutil.AssertTrue(t, b.At(Position{X: 4, Y: 6}).IsEmpty())
	testutil.AssertEqual(t, len(b.MoveLog()), 1)

	m, ok := b.Undo()
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, m.String(), "e2e4")
	testutil.AssertEqual(t, b.Grid(), before)
	testutil.AssertTrue(t, b.WhiteToMove())
	testutil.AssertEqual(t, len(b.MoveLog()), 0)
}

func TestUndoEmptyIsNoop(t *testing.T) {
	b := NewBoard()
	_, ok := b.Undo()
	testutil.AssertFalse(t, ok)
	testutil.AssertTrue(t, b.WhiteToMove())
	testutil.AssertEqual(t, b.Grid(), NewBoard().Grid())
}

func TestApplyRejectsIllegalMove(t *testing.T) {
	b := NewBoard()
	before := b.Grid()

	for _, text := range []string{"e2e5", "e7e5", "d1d3", "e1e2", "a1a3"} {
		err := b.Apply(mustMove(t, text))
		testutil.AssertErrorIs(t, err, ErrIllegalMove, text)

		var moveErr *MoveError
		if !errors.As(err, &moveErr) {
			t.Fatalf("Apply(%s) error %T is not a *MoveError", text, err)
		}
		testutil.AssertEqual(t, moveErr.Move, text)
	}
	testutil.AssertEqual(t, b.Grid(), before)
	testutil.AssertTrue(t, b.WhiteToMove())
}

func TestApplyRecordsGeneratedPieces(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	// the caller's piece bookkeeping is wrong on purpose
	m := Move{From: Position{X: 4, Y: 4}, To: Position{X: 3, Y: 3}, Piece: Piece{Color: White, Type: Queen}}

	testutil.AssertNoError(t, b.Apply(m))
	last, _ := b.LastMove()
	testutil.AssertEqual(t, last.Piece, Piece{Color: White, Type: Pawn})
	testutil.AssertEqual(t, last.Captured, Piece{Color: Black, Type: Pawn})
	testutil.AssertEqual(t, b.At(Position{X: 3, Y: 3}), Piece{Color: White, Type: Pawn})

	b.Undo()
	testutil.AssertEqual(t, b.At(Position{X: 3, Y: 3}), Piece{Color: Black, Type: Pawn})
}

func TestKingCacheFollowsKing(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")

	testutil.AssertNoError(t, b.Apply(mustMove(t, "e1d2")))
	testutil.AssertEqual(t, b.KingPosition(White), Position{X: 3, Y: 6})
	testutil.AssertNoError(t, b.Apply(mustMove(t, "e8f7")))
	testutil.AssertEqual(t, b.KingPosition(Black), Position{X: 5, Y: 1})

	b.Undo()
	testutil.AssertEqual(t, b.KingPosition(Black), Position{X: 4, Y: 0})
	b.Undo()
	testutil.AssertEqual(t, b.KingPosition(White), Position{X: 4, Y: 7})
}

func TestAtPanicsOffBoard(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At(8,0) did not panic")
		}
	}()
	NewBoard().At(Position{X: 8, Y: 0})
}

// boardSnapshot captures everything apply/undo must restore.
type boardSnapshot struct {
	Grid        [8][8]Piece
	WhiteToMove bool
	WhiteKing   Position
	BlackKing   Position
	LogLen      int
}

func snapshotOf(b *BoardState) boardSnapshot {
	return boardSnapshot{
		Grid:        b.Grid(),
		WhiteToMove: b.WhiteToMove(),
		WhiteKing:   b.KingPosition(White),
		BlackKing:   b.KingPosition(Black),
		LogLen:      len(b.MoveLog()),
	}
}

func TestApplyUndoRoundTripRandomGames(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for game := 0; game < 20; game++ {
		b := NewBoard()
		for ply := 0; ply < 80; ply++ {
			moves := b.LegalMoves()
			if len(moves) == 0 {
				break
			}
			before := snapshotOf(b)
			for _, m := range moves {
				testutil.AssertNoError(t, b.Apply(m), "game %d ply %d %s", game, ply, m)
				b.Undo()
				testutil.AssertEqual(t, snapshotOf(b), before, "game %d ply %d undo %s", game, ply, m)
			}
			testutil.AssertNoError(t, b.Apply(moves[r.Intn(len(moves))]))
			assertKingCache(t, b)
		}
	}
}

func assertKingCache(t *testing.T, b *BoardState) {
	t.Helper()
	for _, c := range []Color{White, Black} {
		if got := b.At(b.KingPosition(c)); got != (Piece{Color: c, Type: King}) {
			t.Fatalf("%v king cache points at %v holding %v\n%s", c, b.KingPosition(c), got, b.FEN())
		}
	}
}

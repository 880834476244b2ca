package model

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/testutil"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

func seatedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1", 10*time.Minute)
	white, err := g.AddPlayer("alice")
	testutil.AssertNoError(t, err)
	black, err := g.AddPlayer("bob")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, white, White)
	testutil.AssertEqual(t, black, Black)
	return g
}

func TestAddPlayer(t *testing.T) {
	g := seatedGame(t)

	color, err := g.AddPlayer("alice")
	testutil.AssertNoError(t, err, "rejoining")
	testutil.AssertEqual(t, color, White)

	_, err = g.AddPlayer("carol")
	testutil.AssertErrorIs(t, err, ErrGameFull)
	testutil.AssertTrue(t, g.IsPlayerInGame("bob"))
	testutil.AssertFalse(t, g.IsPlayerInGame("carol"))
	testutil.AssertFalse(t, g.CanSpectate())
}

func TestMakeMove(t *testing.T) {
	g := seatedGame(t)

	testutil.AssertErrorIs(t, g.MakeMove("carol", WSMove{Notation: "e2e4"}), ErrNotInGame)
	testutil.AssertErrorIs(t, g.MakeMove("bob", WSMove{Notation: "e7e5"}), ErrNotYourTurn)
	testutil.AssertErrorIs(t, g.MakeMove("alice", WSMove{Notation: "e2e5"}), ErrIllegalMove)
	testutil.AssertErrorIs(t, g.MakeMove("alice", WSMove{Notation: "z9e4"}), ErrOffBoard)
	testutil.AssertErrorIs(t, g.MakeMove("alice", WSMove{From: Position{X: 4, Y: 6}, To: Position{X: 4, Y: 8}}), ErrOffBoard)

	// coordinates from a click
	testutil.AssertNoError(t, g.MakeMove("alice", WSMove{From: Position{X: 4, Y: 6}, To: Position{X: 4, Y: 4}}))
	testutil.AssertNoError(t, g.MakeMove("bob", WSMove{Notation: "e7e5"}))

	state := g.GetState()
	testutil.AssertEqual(t, state.ToMove, White)
	testutil.AssertEqual(t, state.MoveHistory, []string{"e2e4", "e7e5"})
	testutil.AssertEqual(t, state.LastMove, &SimpleMove{From: Position{X: 4, Y: 1}, To: Position{X: 4, Y: 3}})
	testutil.AssertEqual(t, state.Board[3][4], Piece{Color: Black, Type: Pawn})
	testutil.AssertEqual(t, state.Sound, "move")
	testutil.AssertFalse(t, state.IsCheck)
	testutil.AssertEqual(t, len(state.LegalMoves), len(g.LegalMoves()))
	testutil.AssertEqual(t, state.FEN, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w - - 0 2")
}

func TestMakeMoveReportsCheck(t *testing.T) {
	g := seatedGame(t)
	for i, text := range []string{"e2e4", "f7f6", "d1h5"} {
		player := "alice"
		if i%2 == 1 {
			player = "bob"
		}
		testutil.AssertNoError(t, g.MakeMove(player, WSMove{Notation: text}), text)
	}
	state := g.GetState()
	testutil.AssertTrue(t, state.IsCheck)
	testutil.AssertEqual(t, state.Sound, "check")
	testutil.AssertEqual(t, state.LegalMoves, []string{"g7g6"})
}

func TestUndo(t *testing.T) {
	g := seatedGame(t)
	testutil.AssertErrorIs(t, g.Undo("alice"), ErrNothingToUndo)
	testutil.AssertErrorIs(t, g.Undo("carol"), ErrNotInGame)

	testutil.AssertNoError(t, g.MakeMove("alice", WSMove{Notation: "g1f3"}))
	testutil.AssertNoError(t, g.Undo("bob"))

	state := g.GetState()
	testutil.AssertEqual(t, state.ToMove, White)
	testutil.AssertEqual(t, state.MoveHistory, []string{})
	testutil.AssertEqual(t, state.FEN, NewBoard().FEN())
	if state.LastMove != nil {
		t.Errorf("LastMove = %v, want nil", state.LastMove)
	}
}

func TestNewGameFromFEN(t *testing.T) {
	_, err := NewGameFromFEN("g2", "8/8/8/8/8/8/8/8 w - - 0 1", time.Minute)
	testutil.AssertErrorIs(t, err, ErrInvalidFEN)

	g, err := NewGameFromFEN("g2", "4k3/8/8/8/8/8/8/4K3 b - - 0 1", time.Minute)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, g.GetState().ToMove, Black)
}

// recordingConn keeps the move history of every state written to it.
type recordingConn struct {
	mu        sync.Mutex
	histories [][]string
	closed    bool
	broken    bool
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errors.New("broken pipe")
	}
	var state struct {
		MoveHistory []string `json:"moveHistory"`
	}
	if err := json.Unmarshal(v.(ws.Message).Payload, &state); err != nil {
		return err
	}
	c.histories = append(c.histories, state.MoveHistory)
	return nil
}

func (c *recordingConn) WriteMessage(int, []byte) error { return nil }

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) received() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.histories...)
}

func TestBroadcastSkipsStaleState(t *testing.T) {
	g := seatedGame(t)
	conn := &recordingConn{}
	g.connections.connections["alice"] = conn

	newer := GameState{MoveHistory: []string{"e2e4", "e7e5"}}
	g.broadcastState(2, newer)
	g.broadcastState(1, GameState{MoveHistory: []string{"e2e4"}})
	g.broadcastState(2, newer)

	testutil.AssertEqual(t, conn.received(), [][]string{{"e2e4", "e7e5"}, {"e2e4", "e7e5"}})
}

func TestBroadcastEndsWithLatestState(t *testing.T) {
	g := seatedGame(t)
	conn := &recordingConn{}
	testutil.AssertNoError(t, g.RegisterConnection("alice", conn))

	played := []string{"e2e4", "e7e5", "g1f3", "b8c6"}
	for i, text := range played {
		player := "alice"
		if i%2 == 1 {
			player = "bob"
		}
		testutil.AssertNoError(t, g.MakeMove(player, WSMove{Notation: text}), text)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := conn.received()
		if n := len(got); n > 0 && len(got[n-1]) == len(played) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("latest state never arrived, got %v", got)
		}
		time.Sleep(5 * time.Millisecond)
	}
	// let any straggling broadcast finish
	time.Sleep(20 * time.Millisecond)

	got := conn.received()
	for i := 1; i < len(got); i++ {
		if len(got[i]) < len(got[i-1]) {
			t.Fatalf("state %d has %d moves after one with %d: %v", i, len(got[i]), len(got[i-1]), got)
		}
	}
	testutil.AssertEqual(t, got[len(got)-1], played)
}

func TestRegisterConnection(t *testing.T) {
	g := seatedGame(t)
	first := &recordingConn{}
	testutil.AssertNoError(t, g.RegisterConnection("alice", first))

	second := &recordingConn{}
	testutil.AssertNoError(t, g.RegisterConnection("alice", second))
	second.mu.Lock()
	closed := second.closed
	second.mu.Unlock()
	testutil.AssertTrue(t, closed, "duplicate connection is closed")

	testutil.AssertErrorIs(t, g.RegisterConnection("carol", &recordingConn{}), ErrNotInGame)

	g.UnregisterConnection("alice", second)
	g.connections.mu.RLock()
	current := g.connections.connections["alice"]
	g.connections.mu.RUnlock()
	testutil.AssertTrue(t, current == Conn(first), "unregistering a stale connection keeps the live one")
}

func TestBroadcastDropsBrokenConnection(t *testing.T) {
	g := seatedGame(t)
	g.connections.connections["bob"] = &recordingConn{broken: true}

	g.broadcastState(1, GameState{})

	g.connections.mu.RLock()
	_, exists := g.connections.connections["bob"]
	g.connections.mu.RUnlock()
	testutil.AssertFalse(t, exists)
}

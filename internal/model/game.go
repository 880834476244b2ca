package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex // one broadcast writes at a time
	sent        uint64     // version of the newest state written, guarded by writeMu
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one session: it owns its board exclusively and serializes access
// to it.
type Game struct {
	ID          string
	mu          sync.Mutex
	board       *BoardState
	whiteID     string
	blackID     string
	sound       string
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	version     uint64 // bumped on every change that is broadcast
}

// GameState is the snapshot sent to clients after every change.
type GameState struct {
	ID          string      `json:"id"`
	Sound       string      `json:"sound"`
	Board       [8][8]Piece `json:"board"`
	FEN         string      `json:"fen"`
	ToMove      Color       `json:"toMove"`
	IsCheck     bool        `json:"isCheck"`
	LegalMoves  []string    `json:"legalMoves"`
	MoveHistory []string    `json:"moveHistory"`
	LastMove    *SimpleMove `json:"lastMove"`
	Players     struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

func NewGame(id string, clock time.Duration) *Game {
	return newGameWithBoard(id, NewBoard(), clock)
}

// NewGameFromFEN starts a session from a custom position.
func NewGameFromFEN(id, fen string, clock time.Duration) (*Game, error) {
	board, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGameWithBoard(id, board, clock), nil
}

func newGameWithBoard(id string, board *BoardState, clock time.Duration) *Game {
	return &Game{
		ID:          id,
		board:       board,
		connections: NewGameConnections(),
		whiteClock:  NewClock(clock),
		blackClock:  NewClock(clock),
	}
}

// AddPlayer seats the player as white, then black. A player already seated
// gets their color back.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	if g.whiteID == "" {
		g.whiteID = playerID
		return White, nil
	}
	if g.blackID == "" {
		g.blackID = playerID
		return Black, nil
	}
	return 0, ErrGameFull
}

func (g *Game) colorOf(playerID string) (Color, bool) {
	switch {
	case playerID == "":
		return 0, false
	case playerID == g.whiteID:
		return White, true
	case playerID == g.blackID:
		return Black, true
	}
	return 0, false
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.whiteID == "" || g.blackID == ""
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

// LegalMoves lists the current legal moves in square-pair form.
func (g *Game) LegalMoves() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return notations(g.board.LegalMoves())
}

// MakeMove plays a move for playerID. Only the player whose color is to move
// may move, and only moves present in the legal move list are accepted.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if color != g.board.SideToMove() {
		return ErrNotYourTurn
	}
	m, err := move.ToMove()
	if err != nil {
		return err
	}
	if err := g.board.Apply(m); err != nil {
		return err
	}

	played, _ := g.board.LastMove()
	g.clockFor(color).Stop()
	g.clockFor(color.Opponent()).Start()

	switch {
	case g.board.InCheck():
		g.sound = "check"
	case !played.Captured.IsEmpty():
		g.sound = "capture"
	default:
		g.sound = "move"
	}
	log.Infow("move played", "game", g.ID, "player", playerID, "move", played.String())

	g.version++
	go g.broadcastState(g.version, g.snapshot())
	return nil
}

// Undo takes back the last ply. Either seated player may request it.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.colorOf(playerID); !ok {
		return ErrNotInGame
	}
	m, ok := g.board.Undo()
	if !ok {
		return ErrNothingToUndo
	}

	mover := g.board.SideToMove()
	g.clockFor(mover.Opponent()).Stop()
	if len(g.board.moveLog) > 0 {
		g.clockFor(mover).Start()
	}
	g.sound = "move"
	log.Infow("move taken back", "game", g.ID, "player", playerID, "move", m.String())

	g.version++
	go g.broadcastState(g.version, g.snapshot())
	return nil
}

func (g *Game) clockFor(c Color) *Clock {
	if c == White {
		return g.whiteClock
	}
	return g.blackClock
}

func (g *Game) snapshot() GameState {
	state := GameState{
		ID:          g.ID,
		Sound:       g.sound,
		Board:       g.board.Grid(),
		FEN:         g.board.FEN(),
		ToMove:      g.board.SideToMove(),
		IsCheck:     g.board.InCheck(),
		LegalMoves:  notations(g.board.LegalMoves()),
		MoveHistory: notations(g.board.moveLog),
	}
	if last, ok := g.board.LastMove(); ok {
		simple := last.Simple()
		state.LastMove = &simple
	}
	state.Players.White = ClientPlayer{ID: g.whiteID, Color: White, TimeLeft: tenths(g.whiteClock.TimeLeft())}
	state.Players.Black = ClientPlayer{ID: g.blackID, Color: Black, TimeLeft: tenths(g.blackClock.TimeLeft())}
	return state
}

func notations(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	return out
}

// RegisterConnection adds conn for playerID and pushes the current state to
// everyone. A second connection for the same player is closed.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	_, seated := g.colorOf(playerID)
	if !seated && !g.canSpectate() {
		g.mu.Unlock()
		return ErrNotInGame
	}

	g.connections.mu.Lock()
	_, exists := g.connections.connections[playerID]
	if !exists {
		g.connections.connections[playerID] = conn
	}
	g.connections.mu.Unlock()

	// the snapshot is taken after the connection is visible, so any later
	// change reaches it with a newer version
	version, state := g.version, g.snapshot()
	g.mu.Unlock()

	if exists {
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}
	log.Infow("connection registered", "game", g.ID, "player", playerID, "conn", fmt.Sprintf("%p", conn))

	go g.broadcastState(version, state)
	return nil
}

// UnregisterConnection forgets conn if it is still the one registered for
// playerID.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Infow("connection unregistered", "game", g.ID, "player", playerID)
	}
}

// Send writes msg to conn, serialized with broadcasts.
func (g *Game) Send(conn Conn, msg ws.Message) error {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// broadcastState writes state to every connection unless a newer version has
// already gone out.
func (g *Game) broadcastState(version uint64, state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("game %s: failed to marshal state: %v", g.ID, err)
		return
	}

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	if version < g.connections.sent {
		log.Debugf("game %s: skipping stale state %d, already sent %d", g.ID, version, g.connections.sent)
		return
	}
	g.connections.sent = version

	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: dropping connection of %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}

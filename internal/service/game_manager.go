// service/game_manager.go
package service

import (
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameManager owns every live session. Each game guards its own board; the
// manager lock only protects the registry and matchmaking channels.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan model.MatchFoundEvent
	clock            time.Duration
	mu               sync.RWMutex
	done             chan struct{}
	closeOnce        sync.Once
}

// NewGameManager starts the matchmaking loop; stop it with Close.
func NewGameManager(cfg config.Config) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan model.MatchFoundEvent),
		clock:            cfg.Clock,
		done:             make(chan struct{}),
	}
	go gm.processMatchmaking(cfg.MatchInterval)
	return gm
}

func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

// RegisterMatchmakingChannel replaces any earlier channel for playerID. The
// manager closes the channel after delivering the match.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel drops the channel without closing it; the
// caller that created it still owns it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.matchingChannels, playerID)
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			for gm.matchPlayers() {
			}
		}
	}
}

// matchPlayers pairs the two longest-waiting players into a new game. It
// reports whether a pair was made.
func (gm *GameManager) matchPlayers() bool {
	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.clock)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.Errorf("matchmaking: seating %s: %v", player1.ID, err)
		return true
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.Errorf("matchmaking: seating %s: %v", player2.ID, err)
		return true
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.games[gameID] = game
	log.Infow("match created", "game", gameID, "white", player1.ID, "black", player2.ID)

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	return true
}

// notifyMatch must be called with gm.mu held.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warnf("matchmaking: no channel for %s, game %s", playerID, event.GameID)
		return
	}
	select {
	case ch <- event:
	default:
		log.Warnf("matchmaking: channel of %s is full", playerID)
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
}

// CreateGame registers a new session, in the starting position when fen is
// empty.
func (gm *GameManager) CreateGame(gameID, fen string) error {
	var game *model.Game
	if fen == "" {
		game = model.NewGame(gameID, gm.clock)
	} else {
		var err error
		if game, err = model.NewGameFromFEN(gameID, fen, gm.clock); err != nil {
			return err
		}
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return 0, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string) ([]string, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(), nil
}

func (gm *GameManager) MakeMove(gameID, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) Undo(gameID, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Undo(playerID)
}

func (gm *GameManager) RegisterConnection(gameID, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID, playerID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

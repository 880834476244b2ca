package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves one client of a game until it disconnects.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("game %s: failed to register connection of %s: %v", gameID, playerID, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read from %s: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugf("game %s: parse message from %s: %v", gameID, playerID, err)
			wsc.sendError(gameID, c, err)
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			wsc.sendError(gameID, c, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)
	case ws.MessageTypeUndo:
		return wsc.gameService.HandleUndo(gameID, playerID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(gameID string, c *websocket.Conn, cause error) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: cause.Error()})
	if err != nil {
		return
	}
	if err := wsc.gameService.Send(gameID, c, msg); err != nil {
		log.Debugf("game %s: send error: %v", gameID, err)
	}
}

// HandleMatchmaking queues the player and holds the connection open until a
// match is found or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)

	ch := make(chan model.MatchFoundEvent, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		wsc.gameService.UnregisterMatchmakingChannel(playerID)
		if msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()}); merr == nil {
			c.WriteJSON(msg)
		}
		return
	}

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			// replaced by a newer matchmaking connection
			return
		}
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
		if err != nil {
			return
		}
		if err := c.WriteJSON(msg); err != nil {
			log.Warnf("matchmaking: notify %s: %v", playerID, err)
		}
	case <-gone:
		wsc.gameService.UnregisterMatchmakingChannel(playerID)
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

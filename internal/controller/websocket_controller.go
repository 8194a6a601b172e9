package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
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

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, playerID := middleware.ConnIDs(c)
	log.Printf("WebSocket connection established for game %s, player %s", gameID, playerID)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Printf("Failed to register connection: %v", err)
		// A duplicate was already closed by the game
		if !errors.Is(err, model.ErrDuplicateConnection) {
			wsc.sendError(c, err.Error())
			c.Close()
		}
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Printf("read error: %v", err)
			break
		}

		if messageType == websocket.TextMessage {
			var msg ws.Message
			if err := json.Unmarshal(message, &msg); err != nil {
				log.Printf("parse error: %v", err)
				continue
			}

			if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
				log.Printf("handle error: %v", err)
				wsc.sendGameError(gameID, c, err.Error())
			}
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID, c)
}

// handleMessage dispatches one inbound message. State changes reach the
// client through the game's broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeSelect:
		var sq model.Square
		if err := json.Unmarshal(msg.Payload, &sq); err != nil {
			return err
		}
		_, err := wsc.gameService.SelectSquare(gameID, playerID, sq)
		return err

	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, move)
		return err

	case ws.MessageTypePlayerNames:
		var names ws.PlayerNamesPayload
		if err := json.Unmarshal(msg.Payload, &names); err != nil {
			return err
		}
		_, err := wsc.gameService.SetPlayerNames(gameID, names.White, names.Black)
		return err

	case ws.MessageTypeReset:
		_, err := wsc.gameService.ResetGame(gameID)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking waits for the player's match and forwards it.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	_, playerID := middleware.ConnIDs(c)

	ch := make(chan string, 1)
	if err := wsc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		wsc.sendError(c, err.Error())
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID)

	// A read error means the client went away; stop waiting
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
			return
		}
		if err := c.WriteJSON(ws.Message{
			Type:    ws.MessageTypeMatchFound,
			Payload: json.RawMessage(event),
		}); err != nil {
			log.Printf("Failed to send match to player %s: %v", playerID, err)
		}
	case <-gone:
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

// sendGameError is sendError for a registered connection, whose writes must
// not interleave with state broadcasts.
func (wsc *WebSocketController) sendGameError(gameID string, c *websocket.Conn, errorMsg string) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: errorMsg})
	if err != nil {
		return
	}
	if err := wsc.gameService.SendMessage(gameID, c, msg); err != nil {
		log.Printf("Failed to send error: %v", err)
	}
}

func (wsc *WebSocketController) sendError(c *websocket.Conn, errorMsg string) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: errorMsg})
	if err != nil {
		return
	}
	if err := c.WriteJSON(msg); err != nil {
		log.Printf("Failed to send error: %v", err)
	}
}

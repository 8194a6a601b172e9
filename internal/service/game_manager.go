// service/game_manager.go
package service

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	rules            model.Rules
	mu               sync.RWMutex
	done             chan struct{}
	closeOnce        sync.Once
}

// NewGameManager starts a matchmaking loop that pairs queued players every
// interval. A non-positive interval disables the loop; Match can still be
// called directly.
func NewGameManager(rules model.Rules, interval time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		rules:            rules,
		done:             make(chan struct{}),
	}

	if interval > 0 {
		go gm.processMatchmaking(interval)
	}

	return gm
}

// Close stops the matchmaking loop.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

func (gm *GameManager) Rules() model.Rules {
	return gm.rules
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Printf("Registering matchmaking channel for player %s", playerID)

	// Replace any earlier channel; remove it first so nothing else writes to it
	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	gm.matchingChannels[playerID] = ch
	return nil
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Printf("Unregistering matchmaking channel for player %s", playerID)

	// Only replacement or a match closes a channel; the handler has stopped reading
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
			for gm.Match() {
			}
		}
	}
}

// Match pairs the two longest-waiting players that are listening on a
// matchmaking channel into a new game and notifies them. Players without a
// channel stay queued until they open one. It reports whether a game was
// created.
func (gm *GameManager) Match() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, ok := gm.queue.GetNextPair(func(p model.Player) bool {
		_, listening := gm.matchingChannels[p.ID]
		return listening
	})
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.rules)

	p1Color, err := game.AddPlayer(player1.ID, player1.Name)
	if err != nil {
		log.Printf("Error adding player to game: %v", err)
		return false
	}
	p2Color, err := game.AddPlayer(player2.ID, player2.Name)
	if err != nil {
		log.Printf("Error adding player to game: %v", err)
		return false
	}
	gm.games[gameID] = game

	notified := gm.sendMatchFound(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	if !gm.sendMatchFound(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color}) {
		notified = false
	}
	if !notified {
		log.Printf("Failed to notify all players of match %s", gameID)
	}
	return true
}

// sendMatchFound delivers event without blocking and drops the channel.
// The caller holds gm.mu.
func (gm *GameManager) sendMatchFound(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	delete(gm.matchingChannels, playerID)
	defer close(ch)

	select {
	case ch <- mustJSON(event):
		log.Printf("Sent match found event to player %s", playerID)
		return true
	default:
		log.Printf("Failed to send event to player %s", playerID)
		return false
	}
}

// Helper function for JSON marshaling
func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = model.NewGame(gameID, gm.rules)
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

func (gm *GameManager) AddPlayerToGame(gameID, playerID, name string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID, name)
}

func (gm *GameManager) JoinMatchmaking(playerID, name string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID, Name: name}); err != nil {
		log.Printf("Error adding player to matchmaking queue: %v", err)
		return err
	}
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) SendMessage(gameID string, conn *websocket.Conn, msg ws.Message) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(conn, msg)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

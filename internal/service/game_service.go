package service

import (
	"fmt"
	"log"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Archive persists finished games.
type Archive interface {
	SaveGame(rec storage.GameRecord) error
	LoadGame(id string) (storage.GameRecord, error)
	ListGames() ([]storage.GameRecord, error)
}

type GameService struct {
	gameManager *GameManager
	archive     Archive
}

// NewGameService wires the manager to an archive. A nil archive disables
// archiving.
func NewGameService(gameManager *GameManager, archive Archive) *GameService {
	return &GameService{
		gameManager: gameManager,
		archive:     archive,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinGame(gameID, playerID, name string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID, name)
}

func (gs *GameService) JoinMatchmaking(playerID, name string) error {
	return gs.gameManager.JoinMatchmaking(playerID, name)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) SelectSquare(gameID, playerID string, sq model.Square) (model.GameState, error) {
	return gs.update(gameID, func(game *model.Game) error {
		return game.SelectSquare(playerID, sq)
	})
}

func (gs *GameService) HandleMove(gameID, playerID string, move model.WSMove) (model.GameState, error) {
	return gs.update(gameID, func(game *model.Game) error {
		return game.MovePiece(playerID, move)
	})
}

func (gs *GameService) SetPlayerNames(gameID, white, black string) (model.GameState, error) {
	return gs.update(gameID, func(game *model.Game) error {
		game.SetPlayerNames(white, black)
		return nil
	})
}

func (gs *GameService) ResetGame(gameID string) (model.GameState, error) {
	return gs.update(gameID, func(game *model.Game) error {
		game.Reset()
		return nil
	})
}

// update runs fn against the game and archives the result once it has ended.
func (gs *GameService) update(gameID string, fn func(*model.Game) error) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	wasOver := game.GetState().Status.Terminal()
	if err := fn(game); err != nil {
		return model.GameState{}, err
	}
	state := game.GetState()
	if state.Status.Terminal() && !wasOver {
		gs.archiveGame(gameID, state)
	}
	return state, nil
}

func (gs *GameService) archiveGame(gameID string, state model.GameState) {
	if gs.archive == nil {
		return
	}
	if err := gs.archive.SaveGame(storage.NewGameRecord(gameID, state)); err != nil {
		log.Printf("Failed to archive game %s: %v", gameID, err)
		return
	}
	log.Printf("Archived game %s (%s)", gameID, state.Status)
}

// GetArchivedGame returns the stored record of a finished game.
func (gs *GameService) GetArchivedGame(gameID string) (storage.GameRecord, error) {
	if gs.archive == nil {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	return gs.archive.LoadGame(gameID)
}

// ListArchivedGames returns every finished game, newest first.
func (gs *GameService) ListArchivedGames() ([]storage.GameRecord, error) {
	if gs.archive == nil {
		return []storage.GameRecord{}, nil
	}
	return gs.archive.ListGames()
}

// ValidMoves runs the configured move generator on a caller-supplied board.
func (gs *GameService) ValidMoves(board *model.Board, sq model.Square, piece *model.Piece, last *model.LastMove) ([]model.Move, error) {
	return gs.gameManager.Rules().Moves(board, sq, piece, last)
}

// Status classifies side on a caller-supplied board and reports whether its
// king is attacked.
func (gs *GameService) Status(board *model.Board, side model.Color) (model.GameStatus, bool, error) {
	status, err := gs.gameManager.Rules().Classify(board, side)
	if err != nil {
		return "", false, err
	}
	inCheck, err := model.InCheck(board, side)
	if err != nil {
		return "", false, err
	}
	return status, inCheck, nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) SendMessage(gameID string, conn *websocket.Conn, msg ws.Message) error {
	return gs.gameManager.SendMessage(gameID, conn, msg)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

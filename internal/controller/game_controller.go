package controller

import (
	"errors"
	"log"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type joinRequest struct {
	Name string `json:"name"`
}

type namesRequest struct {
	White string `json:"player1"`
	Black string `json:"player2"`
}

// statusFor maps service and rules errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull), errors.Is(err, model.ErrGameOver), errors.Is(err, model.ErrDuplicateConnection),
		errors.Is(err, model.ErrGameNotStarted), errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrIllegalMove), errors.Is(err, model.ErrNoPiece),
		errors.Is(err, model.ErrOffBoard), errors.Is(err, model.ErrPieceMismatch),
		errors.Is(err, model.ErrNoKing), errors.Is(err, model.ErrInvalidColor),
		errors.Is(err, model.ErrInvalidPiece):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("request %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	var req joinRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid join request")
		}
	}

	color, err := gc.gameService.JoinGame(gameID, playerID, req.Name)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) SelectSquare(c *fiber.Ctx) error {
	var sq model.Square
	if err := c.BodyParser(&sq); err != nil {
		return badRequest(c, "invalid square")
	}
	state, err := gc.gameService.SelectSquare(c.Params("gameId"), middleware.PlayerID(c), sq)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return badRequest(c, "invalid move")
	}
	state, err := gc.gameService.HandleMove(c.Params("gameId"), middleware.PlayerID(c), move)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) SetPlayerNames(c *fiber.Ctx) error {
	var req namesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid player names")
	}
	if req.White == "" || req.Black == "" {
		return badRequest(c, "both player names are required")
	}
	state, err := gc.gameService.SetPlayerNames(c.Params("gameId"), req.White, req.Black)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) ResetGame(c *fiber.Ctx) error {
	state, err := gc.gameService.ResetGame(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) GetArchive(c *fiber.Ctx) error {
	rec, err := gc.gameService.GetArchivedGame(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rec)
}

func (gc *GameController) ListArchive(c *fiber.Ctx) error {
	records, err := gc.gameService.ListArchivedGames()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"games": records,
	})
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := middleware.PlayerID(c)

	var req joinRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid join request")
		}
	}

	if err := gc.gameService.JoinMatchmaking(playerID, req.Name); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Failed to join matchmaking",
		})
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	if !gc.gameService.LeaveMatchmaking(middleware.PlayerID(c)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "player not in queue",
		})
	}
	return c.JSON(fiber.Map{
		"status": "left",
	})
}

package controller

import (
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

// EngineController exposes the rules on caller-supplied positions. Nothing
// here touches a stored game.
type EngineController struct {
	gameService *service.GameService
}

func NewEngineController(gameService *service.GameService) *EngineController {
	return &EngineController{gameService: gameService}
}

type movesRequest struct {
	Board    *model.Board    `json:"board"`
	Square   model.Square    `json:"square"`
	Piece    *model.Piece    `json:"piece"`
	LastMove *model.LastMove `json:"lastMove"`
}

type statusRequest struct {
	Board *model.Board `json:"board"`
	Side  model.Color  `json:"side"`
}

type checkRequest struct {
	Board  *model.Board `json:"board"`
	Square model.Square `json:"square"`
	Color  model.Color  `json:"color"`
}

func (ec *EngineController) InitialBoard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"board": model.NewBoard(),
	})
}

func (ec *EngineController) ValidMoves(c *fiber.Ctx) error {
	var req movesRequest
	if err := c.BodyParser(&req); err != nil || req.Board == nil {
		return badRequest(c, "a board is required")
	}
	moves, err := ec.gameService.ValidMoves(req.Board, req.Square, req.Piece, req.LastMove)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": moves,
	})
}

func (ec *EngineController) Status(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || req.Board == nil {
		return badRequest(c, "a board is required")
	}
	status, inCheck, err := ec.gameService.Status(req.Board, req.Side)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  status,
		"isCheck": inCheck,
		"pieces": fiber.Map{
			"white": req.Board.Count(model.White),
			"black": req.Board.Count(model.Black),
		},
	})
}

func (ec *EngineController) KingInCheck(c *fiber.Ctx) error {
	var req checkRequest
	if err := c.BodyParser(&req); err != nil || req.Board == nil {
		return badRequest(c, "a board is required")
	}
	inCheck, err := model.IsKingInCheck(req.Board, req.Square, req.Color)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"inCheck": inCheck,
	})
}

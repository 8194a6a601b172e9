package controller

import (
	"log"
	"strings"
	"time"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

type RouteConfig struct {
	AllowOrigins []string
	BufferSize   int
}

// NewApp builds the fiber app with every route registered.
func NewApp(gameService *service.GameService, cfg RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "chess-backend",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	// fiber rejects credentials with a wildcard origin
	corsConfig := cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: false,
	}
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = strings.Join(cfg.AllowOrigins, ", ")
		corsConfig.AllowCredentials = true
	}
	app.Use(cors.New(corsConfig))
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Printf("%s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	gameController := NewGameController(gameService)
	engineController := NewEngineController(gameService)
	wsController := NewWebSocketController(gameService)

	wsConfig := websocket.Config{
		ReadBufferSize:  cfg.BufferSize,
		WriteBufferSize: cfg.BufferSize,
		Origins:         cfg.AllowOrigins,
	}

	// WebSocket routes
	app.Use("/ws", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(true), websocket.New(wsController.HandleConnection, wsConfig))
	app.Get("/ws/matchmaking", middleware.WebSocketUpgrade(false), websocket.New(wsController.HandleMatchmaking, wsConfig))

	// Stateless rules routes
	engine := app.Group("/api/engine")
	engine.Get("/board", engineController.InitialBoard)
	engine.Post("/moves", engineController.ValidMoves)
	engine.Post("/status", engineController.Status)
	engine.Post("/check", engineController.KingInCheck)

	// Game routes
	gameRoutes := app.Group("/api/game", middleware.EnsurePlayerID())
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Post("/matchmaking/leave", gameController.LeaveMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/archive", gameController.ListArchive)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/archive", gameController.GetArchive)
	gameRoutes.Post("/:gameId/select", gameController.SelectSquare)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Post("/:gameId/names", gameController.SetPlayerNames)
	gameRoutes.Post("/:gameId/reset", gameController.ResetGame)

	return app
}

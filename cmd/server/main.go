package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	archive, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer archive.Close()

	// Initialize services
	gameManager := service.NewGameManager(model.Rules{Strict: cfg.Strict}, cfg.MatchInterval)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager, archive)

	app := controller.NewApp(gameService, controller.RouteConfig{
		AllowOrigins: cfg.AllowOrigins,
		BufferSize:   cfg.WSReadBufferSize,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (strict=%t, archive=%q)", cfg.Addr, cfg.Strict, cfg.DataDir)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Printf("listen: %v", err)
	}
}

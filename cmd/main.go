package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Hollow-Pines/server/internal/config"
	"Hollow-Pines/server/internal/engine"
	"Hollow-Pines/server/internal/gateway"
	"Hollow-Pines/server/internal/prompts"
	"Hollow-Pines/server/internal/session"
	"Hollow-Pines/server/internal/storage"
	"Hollow-Pines/server/internal/story"
	"Hollow-Pines/server/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load story content. Malformed content is a fatal startup error.
	library, err := story.Load(cfg.Story.Path)
	if err != nil {
		log.Fatalf("Failed to load story: %v", err)
	}
	log.Printf("Story loaded from %s (start scene: %s)", cfg.Story.Path, library.Start())

	if cfg.AI.OpenAI.APIKey == "" {
		log.Println("Warning: No OpenAI API key provided. Dialogue generation will fall back to synthetic lines.")
	}

	// Message history store is optional
	var history *storage.RedisStore
	if cfg.Database.Redis.Host != "" {
		history, err = storage.NewRedisStore(cfg.Database.Redis)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v", err)
			history = nil
		} else {
			defer history.Close()
			log.Println("Redis connected successfully")
		}
	}

	// Wire up the narrative engine
	hub := web.NewHub(history)
	go hub.Run()

	templates := prompts.NewEngine()
	generator := gateway.New(cfg.AI.OpenAI, cfg.Story.PlayerName, templates)
	sessions := session.NewManager(library.Start())
	eng := engine.New(library, sessions, hub, generator, cfg.Story.DefaultDelay())

	r := web.NewRouter(cfg, eng, hub, history)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}

	// Start server in background
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

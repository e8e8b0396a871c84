package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webchat-api/internal/auth"
	"webchat-api/internal/config"
	"webchat-api/internal/handlers"
	httpx "webchat-api/internal/http"
	"webchat-api/internal/hub"
	"webchat-api/internal/relay"
	"webchat-api/internal/service"
	"webchat-api/internal/store"
	"webchat-api/internal/upload"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer st.Close()
	log.Println("connected to postgres")

	rl, err := relay.NewRedisRelay(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer rl.Close()
	log.Println("connected to redis")

	verifier := auth.NewVerifier(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	svc := service.NewChatService(st, verifier)

	proc, err := upload.NewProcessor(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload dir: %v", err)
	}

	h := hub.New(st, rl, cfg.MaxMessageLen)
	go func() {
		if err := h.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("hub stopped: %v", err)
		}
	}()

	router := httpx.NewRouter(httpx.Handlers{
		Auth:      handlers.NewAuthHandler(svc),
		Room:      handlers.NewRoomHandler(svc),
		DM:        handlers.NewDMHandler(svc),
		Upload:    handlers.NewUploadHandler(proc, cfg.MaxUploadBytes),
		WebSocket: handlers.NewWebSocketHandler(verifier, st, h, cfg.AllowedOrigins),
	}, verifier, cfg.AllowedOrigins, cfg.UploadDir)

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("listening on %s", cfg.APIAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-sigChan
	log.Println("shutdown signal received, shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("server stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"minecraft-codegen/internal/app"
	"minecraft-codegen/internal/config"
	"minecraft-codegen/internal/logger"
	"minecraft-codegen/internal/mcptools"
	"minecraft-codegen/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	entry := logger.WithComponent("main")

	sched, err := a.Scheduler()
	if err != nil {
		entry.WithError(err).Fatal("❌ Failed to configure scheduler")
	}
	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	tools := mcptools.NewTools(a.Generator, cfg.HistoryDisplayLimit, cfg.CredentialVar())
	server := web.NewServer(a.Generator, web.Options{
		Port:          cfg.WebPort,
		DisplayLimit:  cfg.HistoryDisplayLimit,
		CredentialVar: cfg.CredentialVar(),
		MCP:           mcptools.Handler(tools),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		entry.Info("🛑 Shutting down")
	case err := <-errCh:
		if err != nil {
			entry.WithError(err).Error("❌ Web server failed")
		}
	}
	if err := server.Stop(); err != nil {
		entry.WithError(err).Warn("⚠️ Web server shutdown was not clean")
	}
}

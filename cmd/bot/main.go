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
	"minecraft-codegen/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	sched, err := a.Scheduler()
	if err != nil {
		log.Fatalf("failed to configure scheduler: %v", err)
	}
	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	bot, err := telegram.New(cfg.TelegramBotToken, a.Generator, telegram.Options{
		CredentialVar: cfg.CredentialVar(),
		DisplayLimit:  cfg.HistoryDisplayLimit,
	})
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Start(ctx)
}

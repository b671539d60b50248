// Package app wires the shared components every binary needs.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"minecraft-codegen/internal/config"
	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/llm"
	"minecraft-codegen/internal/logger"
	"minecraft-codegen/internal/scheduler"
	"minecraft-codegen/internal/storage"
)

type App struct {
	Config    *config.Config
	Store     *storage.FileStore
	History   *history.Log
	Generator *generator.Generator
}

// Bootstrap configures logging, opens the history and builds the generator.
// A missing credential is not an error: the generator is simply not ready.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	log := logger.WithComponent("app")

	store, err := storage.NewFileStore(cfg.HistoryFilePath)
	if err != nil {
		return nil, fmt.Errorf("init history store: %w", err)
	}

	hist, err := history.Open(store)
	var recovered *history.RecoveredError
	switch {
	case errors.As(err, &recovered):
		log.WithError(recovered).Warn("⚠️ History file is malformed, starting with empty history")
	case err != nil:
		return nil, err
	}
	log.WithFields(logger.Fields{"path": store.Path(), "exchanges": hist.Len()}).Info("📚 History loaded")

	client, err := llm.NewFactory(cfg).CreateClient(ctx, string(cfg.LLMProvider))
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		log.Warnf("⚠️ %s is not set, generation is disabled", cfg.CredentialVar())
		client = nil
	case err != nil:
		return nil, fmt.Errorf("create llm client: %w", err)
	default:
		log.WithFields(logger.Fields{"provider": cfg.LLMProvider, "model": client.Model()}).Info("🧠 LLM client ready")
		if t := llm.EffectiveTemperature(cfg.LLMProvider, cfg.Temperature); t != cfg.Temperature {
			log.Warnf("⚠️ %s samples at temperature %.1f, TEMPERATURE=%.1f is ignored", cfg.LLMProvider, t, cfg.Temperature)
		}
	}

	gen := generator.New(client, hist, generator.Options{
		SystemPrompt: readSystemPrompt(cfg.SystemPromptPath),
		Temperature:  &cfg.Temperature,
		TypingDelay:  cfg.TypingDelay,
	})

	return &App{Config: cfg, Store: store, History: hist, Generator: gen}, nil
}

// Scheduler returns a scheduler with the history backup registered, or nil
// when no backup schedule is configured.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	if strings.TrimSpace(a.Config.BackupSchedule) == "" {
		return nil, nil
	}
	s := scheduler.New()
	job := scheduler.BackupJob(a.Store, a.History, a.Config.BackupDir, time.Now)
	if err := s.Add(scheduler.BackupJobName, a.Config.BackupSchedule, job); err != nil {
		s.Stop()
		return nil, err
	}
	return s, nil
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithComponent("app").WithError(err).Warnf("system prompt file not found or unreadable at %s, using the default", path)
		return ""
	}
	return strings.TrimSpace(string(data))
}

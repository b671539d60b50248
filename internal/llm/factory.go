package llm

import (
	"context"
	"fmt"
	"strings"

	"minecraft-codegen/internal/config"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiModel      string
	GoogleBaseURL    string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiBaseURL:    cfg.GeminiBaseURL,
		GeminiModel:      cfg.GeminiModel,
		GoogleBaseURL:    cfg.GoogleBaseURL,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

// CreateClient builds the client for provider. A missing secret yields
// ErrMissingCredential so callers can keep running without generation.
func (f *Factory) CreateClient(_ context.Context, provider string) (Client, error) {
	var (
		client Client
		err    error
	)
	switch config.LLMProvider(strings.ToLower(strings.TrimSpace(provider))) {
	case config.ProviderOpenAI, "":
		client, err = NewOpenAI(f.GeminiAPIKey, f.GeminiBaseURL, f.GeminiModel)
	case config.ProviderGoogle:
		client, err = NewGoogle(f.GeminiAPIKey, f.GoogleBaseURL, f.GeminiModel)
	case config.ProviderYandex:
		client, err = NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
	if err != nil {
		// never hand out a typed nil inside the interface
		return nil, err
	}
	return client, nil
}

// EffectiveTemperature is the temperature provider actually samples with when
// requested is asked for.
func EffectiveTemperature(provider config.LLMProvider, requested float32) float32 {
	if provider == config.ProviderYandex {
		return YandexTemperature
	}
	return requested
}

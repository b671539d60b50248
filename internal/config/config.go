package config

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	// ProviderOpenAI talks to Gemini through its OpenAI-compatible endpoint.
	ProviderOpenAI LLMProvider = "openai"
	ProviderGoogle LLMProvider = "google"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	GeminiAPIKey     string      `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string      `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GoogleBaseURL    string      `env:"GOOGLE_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Generation. TEMPERATURE=0 is honored as greedy decoding.
	SystemPromptPath string        `env:"SYSTEM_PROMPT_PATH"`
	Temperature      float32       `env:"TEMPERATURE" envDefault:"0.7"`
	TypingDelay      time.Duration `env:"TYPING_DELAY" envDefault:"20ms"`

	// Storage
	HistoryFilePath     string `env:"HISTORY_FILE_PATH" envDefault:"chat_history.json"`
	HistoryDisplayLimit int    `env:"HISTORY_DISPLAY_LIMIT" envDefault:"20"`
	BackupDir           string `env:"BACKUP_DIR" envDefault:"data/backups"`
	BackupSchedule      string `env:"BACKUP_SCHEDULE" envDefault:"0 3 * * *"`

	// Front-ends
	WebPort          int    `env:"WEB_PORT" envDefault:"8501"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Parse reads the configuration from the process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	// env applies envDefault only to unset variables; LLM_PROVIDER="" means the default too
	cfg.LLMProvider = LLMProvider(strings.ToLower(strings.TrimSpace(string(cfg.LLMProvider))))
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderOpenAI
	}
	return cfg, nil
}

// HasCredential reports whether the selected provider has its secret configured.
func (c *Config) HasCredential() bool {
	switch c.LLMProvider {
	case ProviderYandex:
		return c.YandexOAuthToken != "" && c.YandexFolderID != ""
	default:
		return c.GeminiAPIKey != ""
	}
}

// CredentialVar names the environment variable the selected provider needs.
func (c *Config) CredentialVar() string {
	if c.LLMProvider == ProviderYandex {
		return "YANDEX_OAUTH_TOKEN"
	}
	return "GEMINI_API_KEY"
}

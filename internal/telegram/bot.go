package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"minecraft-codegen/internal/analytics"
	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/logger"
)

const (
	cmdStart   = "start"
	cmdHelp    = "help"
	cmdHistory = "history"
	cmdStats   = "stats"

	defaultEditInterval = time.Second
)

const helpText = `🛡️ Minecraft Code Generator

Опишите, какой код Minecraft вам нужен (например, 'мод на новый меч' или 'скрипт для автоматической фермы'), и бот сгенерирует его.

/history [N] — последние генерации
/stats — статистика`

// Options настраивает бота
type Options struct {
	CredentialVar string
	DisplayLimit  int
	// EditInterval is the minimum time between two edits of a streaming reply.
	EditInterval time.Duration
}

type Bot struct {
	api  *tgbotapi.BotAPI
	s    sender
	gen  *generator.Generator
	opts Options
	log  *logger.Entry
	wg   sync.WaitGroup
}

func New(botToken string, gen *generator.Generator, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, gen, opts)
	b.api = api
	b.log.Infof("🤖 Authorized on account @%s", api.Self.UserName)
	return b, nil
}

func newBot(s sender, gen *generator.Generator, opts Options) *Bot {
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = history.DefaultDisplayLimit
	}
	if opts.EditInterval <= 0 {
		opts.EditInterval = defaultEditInterval
	}
	if opts.CredentialVar == "" {
		opts.CredentialVar = "GEMINI_API_KEY"
	}
	return &Bot{s: s, gen: gen, opts: opts, log: logger.WithComponent("telegram")}
}

// Start обрабатывает обновления до отмены ctx, затем дожидается
// незавершённых генераций
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleIncomingMessage(ctx, msg)
			}(update.Message)
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	entry := b.log.WithField("chat_id", msg.Chat.ID)
	if msg.From != nil {
		entry = entry.WithField("username", msg.From.UserName)
	}

	if msg.IsCommand() {
		entry.WithField("command", msg.Command()).Info("📥 Incoming command")
		b.handleCommand(msg)
		return
	}

	entry.WithField("chars", len(msg.Text)).Info("📥 Incoming prompt")
	b.handleGenerate(ctx, msg.Chat.ID, msg.Text)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case cmdStart, cmdHelp:
		b.sendMessage(msg.Chat.ID, helpText)
	case cmdHistory:
		limit := b.opts.DisplayLimit
		if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				b.sendMessage(msg.Chat.ID, "❌ Использование: /history [количество]")
				return
			}
			limit = n
		}
		b.sendLong(msg.Chat.ID, formatHistory(b.gen.History().Recent(limit), b.gen.History().Len()))
	case cmdStats:
		b.sendMessage(msg.Chat.ID, analytics.Analyze(b.gen.History().All()).Summary())
	default:
		b.sendMessage(msg.Chat.ID, "❓ Неизвестная команда. /help — список команд")
	}
}

// handleGenerate streams a generation into a placeholder message.
func (b *Bot) handleGenerate(ctx context.Context, chatID int64, prompt string) {
	if _, err := b.gen.Validate(prompt); err != nil {
		b.sendMessage(chatID, "⚠️ "+generator.Describe(err, b.opts.CredentialVar))
		return
	}

	placeholder, err := b.s.Send(tgbotapi.NewMessage(chatID, generator.MsgInProgress))
	if err != nil {
		b.log.WithError(err).Error("⚠️ Failed to send placeholder message")
		return
	}
	sink := newMessageSink(b.s, chatID, placeholder.MessageID, b.opts.EditInterval)

	res, err := b.gen.Generate(context.WithoutCancel(ctx), prompt, sink)
	switch {
	case err == nil:
		b.finish(sink, res.Exchange.AI)
	case errors.Is(err, generator.ErrPersist):
		b.finish(sink, res.Exchange.AI)
		b.sendMessage(chatID, "⚠️ "+generator.MsgPersistFailed)
	default:
		text := "❌ " + generator.Describe(err, b.opts.CredentialVar)
		var se *generator.StreamError
		if errors.As(err, &se) && se.Partial != "" {
			text = se.Partial + "\n\n" + text
		}
		b.finish(sink, text)
	}
}

// finish replaces the placeholder with the first chunk of text and sends the
// rest as new messages.
func (b *Bot) finish(sink *messageSink, text string) {
	if strings.TrimSpace(text) == "" {
		text = "∅"
	}
	chunks := splitMessage(text, messageLimit)
	if err := sink.show(chunks[0]); err != nil {
		b.log.WithError(err).Warn("⚠️ Failed to update reply message")
	}
	for _, c := range chunks[1:] {
		b.sendMessage(sink.chatID, c)
	}
}

func formatHistory(recent []history.Exchange, total int) string {
	if len(recent) == 0 {
		return "💬 История пуста"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "💬 История генераций (%d из %d)\n", len(recent), total)
	for _, ex := range recent {
		fmt.Fprintf(&sb, "\nЗапрос: %s\nКод от AI: %s\n", ex.User, ex.AI)
	}
	return sb.String()
}

func (b *Bot) sendLong(chatID int64, text string) {
	for _, c := range splitMessage(text, messageLimit) {
		b.sendMessage(chatID, c)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		b.log.WithError(err).Error("failed to send message")
	}
}

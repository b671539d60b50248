package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/llm"
	"minecraft-codegen/internal/storage"
)

type fakeSender struct {
	sent   []string
	edits  []string
	nextID int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, m.Text)
	}
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

type fakeLLM struct {
	fragments []string
	err       error
}

func (f fakeLLM) Stream(context.Context, llm.Request) (llm.Stream, error) {
	if f.err != nil {
		return llm.NewFailingStream(f.err, f.fragments...), nil
	}
	return llm.NewSliceStream(f.fragments...), nil
}

func (f fakeLLM) Model() string { return "test-model" }

func newTestBot(t *testing.T, client llm.Client) (*Bot, *fakeSender, *history.Log) {
	t.Helper()
	fs, err := storage.NewFileStore(filepath.Join(t.TempDir(), "chat_history.json"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	log, err := history.Open(fs)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	gen := generator.New(client, log, generator.Options{Sleep: func(time.Duration) {}})
	s := &fakeSender{}
	// edit on every fragment
	b := newBot(s, gen, Options{CredentialVar: "GEMINI_API_KEY", DisplayLimit: 2, EditInterval: time.Nanosecond})
	return b, s, log
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{From: &tgbotapi.User{ID: 42, UserName: "steve"}, Chat: &tgbotapi.Chat{ID: 100}, Text: text}
}

func commandMessage(text string) *tgbotapi.Message {
	msg := textMessage(text)
	cmdLen := len(text)
	if i := strings.Index(text, " "); i > 0 {
		cmdLen = i
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return msg
}

func TestPromptStreamsIntoPlaceholder(t *testing.T) {
	b, s, log := newTestBot(t, fakeLLM{fragments: []string{"// farm ", "script"}})

	b.handleIncomingMessage(context.Background(), textMessage("a farm script"))

	if len(s.sent) != 1 || s.sent[0] != generator.MsgInProgress {
		t.Fatalf("expected placeholder only, got %+v", s.sent)
	}
	if len(s.edits) != 2 || s.edits[0] != "// farm " || s.edits[1] != "// farm script" {
		t.Fatalf("unexpected edits: %+v", s.edits)
	}
	if log.Len() != 1 || log.All()[0].AI != "// farm script" {
		t.Fatalf("exchange not recorded: %+v", log.All())
	}
}

func TestBlankPromptWarns(t *testing.T) {
	b, s, log := newTestBot(t, fakeLLM{fragments: []string{"x"}})

	b.handleIncomingMessage(context.Background(), textMessage("   "))

	if len(s.sent) != 1 || !strings.Contains(s.sent[0], "Введите описание!") {
		t.Fatalf("expected blank warning, got %+v", s.sent)
	}
	if log.Len() != 0 {
		t.Fatal("blank prompt must not be recorded")
	}
}

func TestMissingCredentialBlocks(t *testing.T) {
	b, s, _ := newTestBot(t, nil)

	b.handleIncomingMessage(context.Background(), textMessage("a sword mod"))

	if len(s.sent) != 1 || !strings.Contains(s.sent[0], "GEMINI_API_KEY") {
		t.Fatalf("expected credential message, got %+v", s.sent)
	}
	if len(s.edits) != 0 {
		t.Fatalf("no placeholder expected, got edits %+v", s.edits)
	}
}

func TestStreamFailureKeepsPartial(t *testing.T) {
	b, s, log := newTestBot(t, fakeLLM{fragments: []string{"public class "}, err: errors.New("connection reset by peer")})

	b.handleIncomingMessage(context.Background(), textMessage("a sword mod"))

	last := s.edits[len(s.edits)-1]
	if !strings.HasPrefix(last, "public class ") || !strings.Contains(last, "Генерация не удалась") {
		t.Fatalf("final edit should keep partial text and the error: %q", last)
	}
	if log.Len() != 0 {
		t.Fatal("failed generation must not be recorded")
	}
}

func TestHistoryCommand(t *testing.T) {
	b, s, log := newTestBot(t, nil)
	for _, u := range []string{"one", "two", "three"} {
		if err := log.Append(history.Exchange{User: u, AI: "code-" + u}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	b.handleIncomingMessage(context.Background(), commandMessage("/history"))
	out := s.sent[len(s.sent)-1]
	if !strings.Contains(out, "2 из 3") || strings.Contains(out, "Запрос: one") {
		t.Fatalf("unexpected history: %q", out)
	}
	if strings.Index(out, "Запрос: three") > strings.Index(out, "Запрос: two") {
		t.Fatalf("newest must come first: %q", out)
	}

	b.handleIncomingMessage(context.Background(), commandMessage("/history 5"))
	if out := s.sent[len(s.sent)-1]; !strings.Contains(out, "3 из 3") {
		t.Fatalf("limit argument ignored: %q", out)
	}

	b.handleIncomingMessage(context.Background(), commandMessage("/history abc"))
	if out := s.sent[len(s.sent)-1]; !strings.Contains(out, "Использование") {
		t.Fatalf("expected usage, got %q", out)
	}
}

func TestStatsAndHelpCommands(t *testing.T) {
	b, s, _ := newTestBot(t, nil)

	b.handleIncomingMessage(context.Background(), commandMessage("/stats"))
	if !strings.Contains(s.sent[0], "Всего запросов: 0") {
		t.Fatalf("unexpected stats: %q", s.sent[0])
	}
	b.handleIncomingMessage(context.Background(), commandMessage("/help"))
	if !strings.Contains(s.sent[1], "/history") {
		t.Fatalf("unexpected help: %q", s.sent[1])
	}
}

func TestMessageSinkCoalescesEdits(t *testing.T) {
	s := &fakeSender{}
	sink := newMessageSink(s, 1, 7, time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return clock }

	_ = sink.Render("a")
	_ = sink.Render("ab")
	_ = sink.Render("abc")
	if len(s.edits) != 1 || s.edits[0] != "a" {
		t.Fatalf("expected one edit within the interval, got %+v", s.edits)
	}

	clock = clock.Add(2 * time.Minute)
	_ = sink.Render("abcd")
	_ = sink.flush()
	if len(s.edits) != 2 || s.edits[1] != "abcd" {
		t.Fatalf("identical text must not be re-sent: %+v", s.edits)
	}
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("a", 5) + "\n" + strings.Repeat("b", 5)
	chunks := splitMessage(text, 8)
	if len(chunks) != 2 || chunks[0] != "aaaaa\n" || chunks[1] != "bbbbb" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
	if got := splitMessage("короткий", 100); len(got) != 1 {
		t.Fatalf("short text split: %q", got)
	}
	if got := tail("абвгд", 3); got != "…гд" {
		t.Fatalf("unexpected tail: %q", got)
	}
}

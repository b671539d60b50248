package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageSink redraws a placeholder message with the accumulated response.
// Edits are coalesced to at most one per interval and identical text is never
// re-sent; flush pushes whatever is still pending.
type messageSink struct {
	s         sender
	chatID    int64
	messageID int
	interval  time.Duration
	now       func() time.Time

	pending  string
	shown    string
	lastEdit time.Time
}

func newMessageSink(s sender, chatID int64, messageID int, interval time.Duration) *messageSink {
	return &messageSink{
		s:         s,
		chatID:    chatID,
		messageID: messageID,
		interval:  interval,
		now:       time.Now,
	}
}

func (m *messageSink) Render(text string) error {
	m.pending = text
	if !m.lastEdit.IsZero() && m.now().Sub(m.lastEdit) < m.interval {
		return nil
	}
	return m.flush()
}

func (m *messageSink) flush() error {
	return m.show(tail(m.pending, messageLimit))
}

func (m *messageSink) show(text string) error {
	if text == "" || text == m.shown {
		return nil
	}
	edit := tgbotapi.NewEditMessageText(m.chatID, m.messageID, text)
	if _, err := m.s.Send(edit); err != nil {
		return err
	}
	m.shown = text
	m.lastEdit = m.now()
	return nil
}

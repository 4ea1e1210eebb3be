// Package notifier sends operator alerts via Telegram, replacing
// original_source/codeworm/notifier.py's fictional "telehook" dependency
// with github.com/go-telegram-bot-api/telegram-bot-api/v5, the real
// library Aureuma-si/agents/telegram-bot/main.go uses for the same
// bot-sends-a-message shape.
package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends alert messages to a configured chat. A blank token
// makes every Send call a silent no-op, matching spec.md §4.7's rule
// that notification failures never affect cycle outcome.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New constructs a Notifier. If token is empty, the returned Notifier's
// Send calls are no-ops and no network connection is attempted.
func New(token string, chatID int64) (*Notifier, error) {
	if token == "" {
		return &Notifier{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// Send delivers text as a chat message. Returns nil when the notifier is
// disabled; otherwise returns the send error, which callers never
// propagate as a cycle failure — alerting is best-effort.
func (n *Notifier) Send(text string) error {
	if n.bot == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	_, err := n.bot.Send(msg)
	return err
}

// Enabled reports whether this notifier has a live bot connection.
func (n *Notifier) Enabled() bool { return n.bot != nil }

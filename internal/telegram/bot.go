package telegram

import (
	"fmt"
	"strings"

	"go-keyword-radar/internal/entry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot pushes newly found matches to a Telegram chat.
type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// matchMessage builds the chat message for a stored match record.
func (b *Bot) matchMessage(record string) (tgbotapi.MessageConfig, error) {
	e, ok := entry.Parse(record)
	if !ok {
		return tgbotapi.MessageConfig{}, fmt.Errorf("match record has no job URL")
	}

	title := e.Title
	if title == "" {
		title = "Unknown"
	}
	msgText := fmt.Sprintf("🎯 *%s*\n", escapeMarkdown(title))
	if len(e.Keywords) > 0 {
		msgText += fmt.Sprintf("🏷️ %s\n", escapeMarkdown(strings.Join(e.Keywords, ", ")))
	}
	if !e.Date.IsZero() {
		msgText += fmt.Sprintf("📅 %s\n", escapeMarkdown(e.Date.Format("02/01/2006 15:04")))
	}

	msg := tgbotapi.NewMessage(b.chatID, msgText)
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", e.URL),
		),
	)
	return msg, nil
}

// SendMatch implements background.MatchNotifier.
func (b *Bot) SendMatch(record string) error {
	msg, err := b.matchMessage(record)
	if err != nil {
		return err
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send match: %w", err)
	}
	return nil
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}

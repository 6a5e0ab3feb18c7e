package services

import (
	"fmt"
	"html"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/models"
)

// MessageSender delivers a short HTML message to a chat.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

type TelegramService struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewTelegramService authenticates the bot. It fails when the token is rejected.
func NewTelegramService(botToken string, logger *slog.Logger) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	logger.Info("telegram bot authorized", "username", bot.Self.UserName)
	return &TelegramService{bot: bot, logger: logger}, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.bot == nil || chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("telegram send failed", "chat_id", chatID, "err", err)
		return err
	}
	return nil
}

// formatTaskMessage renders the assignee notification.
func formatTaskMessage(prefix string, t *models.Task) string {
	return prefix + "\n" +
		"• <b>" + html.EscapeString(t.Title) + "</b>\n" +
		"• Status: <code>" + string(t.Status) + "</code>\n" +
		"• Priority: <code>" + string(t.Priority) + "</code>\n" +
		fmt.Sprintf("• Task: <code>#%d</code>", t.ID)
}

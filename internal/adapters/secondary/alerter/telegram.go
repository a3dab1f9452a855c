package alerter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const sendTimeout = 15 * time.Second

// Client клиент для отправки алертов через отдельного Telegram-бота
type Client struct {
	bot             *tgbotapi.BotAPI
	chatID          int64
	messageThreadID int64
	log             *slog.Logger
}

// NewClient создаёт новый клиент для отправки алертов
func NewClient(cfg *Config, log *slog.Logger) (*Client, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: sendTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to init alerter bot: %w", err)
	}

	return &Client{
		bot:             bot,
		chatID:          cfg.ChatID,
		messageThreadID: cfg.MessageThreadID,
		log:             log,
	}, nil
}

// SendAlert отправляет алерт в Telegram группу (или топик форума)
func (c *Client) SendAlert(ctx context.Context, message string) error {
	if c == nil || c.bot == nil {
		return fmt.Errorf("alerter client is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// message_thread_id нет в MessageConfig tgbotapi v5.5.1, собираем параметры сами
	params := tgbotapi.Params{"text": message}
	params.AddNonZero64("chat_id", c.chatID)
	params.AddNonZero64("message_thread_id", c.messageThreadID)

	if _, err := c.bot.MakeRequest("sendMessage", params); err != nil {
		c.log.Warn("failed to send alert",
			"error", err,
			"chat_id", c.chatID,
			"message_thread_id", c.messageThreadID,
		)
		return fmt.Errorf("failed to send alert: %w", err)
	}

	c.log.Debug("alert sent successfully",
		"chat_id", c.chatID,
		"message_thread_id", c.messageThreadID,
	)

	return nil
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/telegram"
)

const (
	apiTimeout      = 30 * time.Second
	maxDownloadSize = 20 << 20 // лимит Bot API на getFile
)

var _ telegram.IClient = (*Client)(nil)

// Client клиент Telegram Bot API поверх tgbotapi
type Client struct {
	bot        *tgbotapi.BotAPI
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient создаёт клиента, проверяя токен через getMe
func NewClient(cfg *Config, log *slog.Logger) (*Client, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	// long polling держит соединение PollingTimeout секунд
	timeout := apiTimeout
	if polling := time.Duration(cfg.PollingTimeout+10) * time.Second; polling > timeout {
		timeout = polling
	}
	httpClient := &http.Client{Timeout: timeout}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	log.Info("telegram bot authorized", "username", bot.Self.UserName, "bot_id", bot.Self.ID)

	return &Client{
		bot:        bot,
		httpClient: httpClient,
		log:        log,
	}, nil
}

// Username имя бота
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

func toMarkup(keyboard [][]domain.InlineButton) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// toChattable собирает запрос: фото с подписью, правка подписи или текста, новое сообщение
func toChattable(msg domain.OutgoingMessage) tgbotapi.Chattable {
	parseMode := ""
	if msg.Markdown {
		parseMode = tgbotapi.ModeMarkdown
	}

	switch {
	case msg.PhotoFileID != "":
		photo := tgbotapi.NewPhoto(msg.ChatID, tgbotapi.FileID(msg.PhotoFileID))
		photo.Caption = msg.Text
		photo.ParseMode = parseMode
		if len(msg.Keyboard) > 0 {
			photo.ReplyMarkup = toMarkup(msg.Keyboard)
		}
		return photo
	case msg.EditMessageID != 0 && msg.EditCaption:
		edit := tgbotapi.NewEditMessageCaption(msg.ChatID, int(msg.EditMessageID), msg.Text)
		edit.ParseMode = parseMode
		if len(msg.Keyboard) > 0 {
			markup := toMarkup(msg.Keyboard)
			edit.ReplyMarkup = &markup
		}
		return edit
	case msg.EditMessageID != 0:
		edit := tgbotapi.NewEditMessageText(msg.ChatID, int(msg.EditMessageID), msg.Text)
		edit.ParseMode = parseMode
		if len(msg.Keyboard) > 0 {
			markup := toMarkup(msg.Keyboard)
			edit.ReplyMarkup = &markup
		}
		return edit
	default:
		m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
		m.ParseMode = parseMode
		if len(msg.Keyboard) > 0 {
			m.ReplyMarkup = toMarkup(msg.Keyboard)
		}
		return m
	}
}

// Send отправляет или редактирует сообщение
func (c *Client) Send(ctx context.Context, msg domain.OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.bot.Send(toChattable(msg)); err != nil {
		// повторное нажатие на ту же кнопку: текст не изменился
		if msg.EditMessageID != 0 && strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		c.log.ErrorContext(ctx, "failed to send telegram message",
			"error", err,
			"chat_id", msg.ChatID,
			"edit_message_id", msg.EditMessageID,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.log.DebugContext(ctx, "telegram message sent", "chat_id", msg.ChatID)
	return nil
}

// AnswerCallbackQuery снимает "часики" с inline-кнопки
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cb := tgbotapi.NewCallback(callbackID, text)
	if showAlert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}

	if _, err := c.bot.Request(cb); err != nil {
		c.log.WarnContext(ctx, "failed to answer callback query", "error", err, "callback_id", callbackID)
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// FileURL прямая ссылка на файл. Содержит токен бота, наружу не отдавать
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file url: %w", err)
	}
	return url, nil
}

// DownloadFile скачивает файл по file_id
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.FileURL(ctx, fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, errors.New("file is too large")
	}
	return data, nil
}

// SetCommands меню команд бота
func (c *Client) SetCommands(ctx context.Context, commands map[string]string, order []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	list := make([]tgbotapi.BotCommand, 0, len(order))
	for _, name := range order {
		list = append(list, tgbotapi.BotCommand{Command: name, Description: commands[name]})
	}

	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(list...)); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}

// SetWebhook регистрирует webhook с секретом (secret_token приходит в X-Telegram-Bot-Api-Secret-Token)
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", []string{"message", "callback_query"}); err != nil {
		return fmt.Errorf("failed to build webhook params: %w", err)
	}

	if _, err := c.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	c.log.Info("webhook set", "url", url)
	return nil
}

// DeleteWebhook удаляет webhook (нужно вызывать перед запуском polling)
func (c *Client) DeleteWebhook(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	c.log.Info("webhook deleted successfully")
	return nil
}

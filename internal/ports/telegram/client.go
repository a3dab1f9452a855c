package telegram

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// IClient интерфейс для клиента Telegram API
type IClient interface {
	Send(ctx context.Context, msg domain.OutgoingMessage) error
	AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error
	// FileURL прямая ссылка на файл по file_id
	FileURL(ctx context.Context, fileID string) (string, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

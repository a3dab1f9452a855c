package proofs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/storage"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/telegram"
)

// Archive переносит фото чеков из Telegram в S3: proofs/<payment>/<file>.jpg
type Archive struct {
	telegram telegram.IClient
	s3       storage.IS3Client
	log      *slog.Logger
}

func New(tg telegram.IClient, s3 storage.IS3Client, log *slog.Logger) *Archive {
	return &Archive{
		telegram: tg,
		s3:       s3,
		log:      log,
	}
}

var _ service.IProofArchive = (*Archive)(nil)

// Key ключ объекта чека
func Key(paymentID int64, fileID string) string {
	return fmt.Sprintf("proofs/%d/%s.jpg", paymentID, fileID)
}

func (a *Archive) Archive(ctx context.Context, paymentID int64, fileID string) (string, error) {
	data, err := a.telegram.DownloadFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("failed to download proof: %w", err)
	}

	key := Key(paymentID, fileID)
	if err := a.s3.PutFile(ctx, key, data, http.DetectContentType(data)); err != nil {
		return "", fmt.Errorf("failed to archive proof: %w", err)
	}

	a.log.InfoContext(ctx, "proof archived", "payment_id", paymentID, "key", key, "size", len(data))
	return key, nil
}

func (a *Archive) URL(ctx context.Context, paymentID int64, fileID string, expires time.Duration) (string, error) {
	return a.s3.GetPresignedURL(ctx, Key(paymentID, fileID), expires)
}

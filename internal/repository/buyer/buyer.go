package buyerRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/raffle-bot/internal/ports/repository"
)

type buyerColumns struct {
	TableName string
	ID        string
	Username  string
	Name      string
	Phone     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns buyerColumns
}

// New создаёт новый репозиторий для работы с покупателями
func New(db persistence.Persistence, log *slog.Logger) ports.IBuyerRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: buyerColumns{
			TableName: "buyers",
			ID:        "id",
			Username:  "username",
			Name:      "name",
			Phone:     "phone",
		},
	}
}

// Upsert создаёт покупателя или обновляет его данные при повторной регистрации
func (r *Repository) Upsert(ctx context.Context, buyer *domain.Buyer) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES (:id, :username, :name, :phone)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		r.columns.TableName,
		r.columns.ID,
		r.columns.Username,
		r.columns.Name,
		r.columns.Phone,
		r.columns.ID,
		r.columns.Username, r.columns.Username,
		r.columns.Name, r.columns.Name,
		r.columns.Phone, r.columns.Phone,
	)

	if err := r.db.NamedExec(ctx, query, buyer); err != nil {
		r.Log.Error("failed to upsert buyer", "error", err, "buyer_id", buyer.ID)
		return fmt.Errorf("failed to upsert buyer: %w", err)
	}

	r.Log.Debug("buyer upserted successfully", "buyer_id", buyer.ID)
	return nil
}

// GetByID получает покупателя по chat id
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Buyer, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		r.columns.ID,
		r.columns.Username,
		r.columns.Name,
		r.columns.Phone,
		r.columns.TableName,
		r.columns.ID,
	)

	var buyer domain.Buyer
	if err := r.db.Get(ctx, &buyer, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Debug("buyer not found", "buyer_id", id)
			return nil, domain.ErrBuyerNotFound
		}
		r.Log.Error("failed to get buyer", "error", err, "buyer_id", id)
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}

	return &buyer, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/cache"
)

const keyPrefix = "raffle_bot:session:"

// Store хранит сессии диалогов в кэше (Redis или in-memory) в JSON с TTL
type Store struct {
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
	log   *slog.Logger
}

func NewStore(c cache.Cache, ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		cache: c,
		ttl:   ttl,
		now:   time.Now,
		log:   log,
	}
}

var _ cache.ISessionStore = (*Store)(nil)

func key(chatID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, chatID)
}

// Load неизвестный или повреждённый ключ даёт пустую сессию
func (s *Store) Load(ctx context.Context, chatID int64) (*domain.Session, error) {
	raw, err := s.cache.Get(ctx, key(chatID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return domain.NewSession(chatID), nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.WarnContext(ctx, "corrupted session dropped", "error", err, "chat_id", chatID)
		return domain.NewSession(chatID), nil
	}
	sess.ChatID = chatID
	return &sess, nil
}

// Save пустая сессия удаляется, а не сохраняется
func (s *Store) Save(ctx context.Context, sess *domain.Session) error {
	if sess.IsEmpty() {
		return s.Delete(ctx, sess.ChatID)
	}

	sess.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.cache.Set(ctx, key(sess.ChatID), string(raw), s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, chatID int64) error {
	if err := s.cache.Delete(ctx, key(chatID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

package inmemory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/cache"
)

const cleanupInterval = time.Minute

// Cache in-memory реализация cache.Cache с TTL, когда Redis не настроен.
// Истёкшие ключи не отдаются и вычищаются раз в cleanupInterval
type Cache struct {
	items *gocache.Cache
}

// NewCache создаёт кэш без TTL по умолчанию
func NewCache() *Cache {
	return &Cache{items: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

var _ cache.Cache = (*Cache)(nil)

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v.(string), nil
}

// Set ttl <= 0 - ключ без срока
func (c *Cache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

func (c *Cache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.items.Get(key)
	return ok, nil
}

func (c *Cache) Ping(context.Context) error {
	return nil
}

func (c *Cache) Close() error {
	c.items.Flush()
	return nil
}

// Len число ключей, включая ещё не вычищенные истёкшие
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

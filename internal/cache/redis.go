package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/showbooking/config"
	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds the most recent upcoming-showings listing. Callers are
// expected to re-filter the cached list against the current instant; the TTL
// only bounds how stale the seat counts may get.
type RedisCache struct {
	client      *redis.Client
	showingsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, showingsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		showingsTTL: showingsTTL,
	}
}

func (c *RedisCache) GetShowings(ctx context.Context) ([]domain.Showing, error) {
	data, err := c.client.Get(ctx, showingsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var showings []domain.Showing
	if err := json.Unmarshal(data, &showings); err != nil {
		return nil, err
	}
	return showings, nil
}

func (c *RedisCache) SetShowings(ctx context.Context, showings []domain.Showing) error {
	payload, err := json.Marshal(showings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, showingsKey(), payload, c.showingsTTL).Err()
}

// InvalidateShowings drops the cached listing, called after a booking so the
// next listing does not show a stale seat count for longer than necessary.
func (c *RedisCache) InvalidateShowings(ctx context.Context) error {
	return c.client.Del(ctx, showingsKey()).Err()
}

func showingsKey() string {
	return "cache:showings"
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkuznecov/ticketgate/config"
	"github.com/mkuznecov/ticketgate/internal/domain"
)

// RedisCache keeps flight pages for a short TTL so repeated catalog reads do
// not hit the Flight service.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlightPage(ctx context.Context, page, size int) (*domain.FlightPage, error) {
	data, err := c.client.Get(ctx, flightPageKey(page, size)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var result domain.FlightPage
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) SetFlightPage(ctx context.Context, result *domain.FlightPage) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightPageKey(result.Page, result.PageSize), payload, c.flightsTTL).Err()
}

func flightPageKey(page, size int) string {
	return fmt.Sprintf("cache:flights:page:%d:size:%d", page, size)
}

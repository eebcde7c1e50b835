package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smartshop/domain"

	"github.com/redis/go-redis/v9"
)

// PopularCache keeps the unfiltered popular-products list warm so cold-start
// requests skip the aggregation query. Best-effort only: callers treat every
// error as a cache miss.
type PopularCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPopularCache(client *redis.Client, ttl time.Duration) *PopularCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PopularCache{
		client: client,
		ttl:    ttl,
	}
}

func popularKey(limit int) string {
	return fmt.Sprintf("reco:popular:%d", limit)
}

func (c *PopularCache) GetPopular(ctx context.Context, limit int) ([]domain.RecommendationItem, error) {
	val, err := c.client.Get(ctx, popularKey(limit)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get popular cache: %w", err)
	}

	var items []domain.RecommendationItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal popular cache: %w", err)
	}

	return items, nil
}

func (c *PopularCache) SetPopular(ctx context.Context, limit int, items []domain.RecommendationItem) error {
	jsonData, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal popular cache: %w", err)
	}

	if err := c.client.Set(ctx, popularKey(limit), jsonData, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set popular cache: %w", err)
	}

	return nil
}

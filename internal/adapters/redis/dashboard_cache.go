package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// DashboardCache caches rendered dashboard payloads with a short TTL.
// A corrupt cached value is treated as a miss, not an error.
type DashboardCache struct {
	client redis.UniversalClient
	prefix string
}

// NewDashboardCache creates a new DashboardCache.
func NewDashboardCache(client redis.UniversalClient) *DashboardCache {
	return &DashboardCache{
		client: client,
		prefix: "dashboard:",
	}
}

func (c *DashboardCache) Get(ctx context.Context, key string) (*model.Dashboard, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var d model.Dashboard
	if unmarshalErr := json.Unmarshal(data, &d); unmarshalErr != nil {
		return nil, false, nil
	}
	return &d, true, nil
}

func (c *DashboardCache) Set(ctx context.Context, key string, d *model.Dashboard, ttl time.Duration) error {
	if d == nil {
		return errors.New("dashboard cannot be nil")
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *DashboardCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Package cache is a thin Redis layer for chart-ready score data. All methods
// are safe on a nil *Cache, so the server runs fine without Redis configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/steinarvk/brator/internal/models"
)

const summaryTTL = time.Hour

type Cache struct {
	client *redis.Client
}

// New connects to Redis at addr. An empty addr disables caching entirely.
func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func summaryKey(userID int64, batchSize int) string {
	return fmt.Sprintf("summaries:%d:%d", userID, batchSize)
}

func (c *Cache) GetSummarySeries(ctx context.Context, userID int64, batchSize int) (*models.SummarySeries, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, summaryKey(userID, batchSize)).Bytes()
	if err != nil {
		return nil, false
	}
	var series models.SummarySeries
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, false
	}
	return &series, true
}

func (c *Cache) SetSummarySeries(ctx context.Context, userID int64, series *models.SummarySeries) {
	if c == nil {
		return
	}
	data, err := json.Marshal(series)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, summaryKey(userID, series.BatchSize), data, summaryTTL).Err(); err != nil {
		log.Printf("[cache] set summary series: %v", err)
	}
}

// InvalidateSummaries drops the cached series for the given batch sizes,
// called whenever a new summary is stored.
func (c *Cache) InvalidateSummaries(ctx context.Context, userID int64, batchSizes []int) {
	if c == nil {
		return
	}
	keys := make([]string, len(batchSizes))
	for i, size := range batchSizes {
		keys[i] = summaryKey(userID, size)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[cache] invalidate summaries: %v", err)
	}
}

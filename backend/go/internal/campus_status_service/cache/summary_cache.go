package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CampusEat/backend/go/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisSummaryCache 用 Redis 缓存每所大学的最新摘要。
// 键的 TTL 与摘要有效期一致：缓存命中即说明摘要仍在有效期内，
// 未命中时查询方回落到数据库读取最近一条（可能已过期，由展示层判断）。
type RedisSummaryCache struct {
	client *redis.Client
}

// NewRedisSummaryCache 创建一个新的 RedisSummaryCache 实例。
func NewRedisSummaryCache(client *redis.Client) *RedisSummaryCache {
	return &RedisSummaryCache{client: client}
}

// key 生成指定大学的缓存键。
func key(universityID uint) string {
	return fmt.Sprintf("campus:summary:latest:%d", universityID)
}

// SetLatest 写入一所大学的最新摘要，TTL 为摘要的剩余有效期。
func (c *RedisSummaryCache) SetLatest(ctx context.Context, summary *models.CampusSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("序列化摘要失败: %w", err)
	}
	return c.client.Set(ctx, key(summary.UniversityID), data, ttl).Err()
}

// GetLatest 读取一所大学缓存的最新摘要。未命中时返回 (nil, nil)。
func (c *RedisSummaryCache) GetLatest(ctx context.Context, universityID uint) (*models.CampusSummary, error) {
	data, err := c.client.Get(ctx, key(universityID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var summary models.CampusSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("反序列化缓存摘要失败: %w", err)
	}
	return &summary, nil
}

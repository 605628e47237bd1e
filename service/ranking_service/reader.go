package ranking_service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/redis/go-redis/v9"

	"heartlink-service/models"
	"heartlink-service/tool"
)

// UserLoader 主存储的批量用户读取接口
type UserLoader interface {
	UsersByIDs(userIds []string) ([]*models.UserRecord, error)
}

// RankingResult 一次排行榜读取的结果
type RankingResult struct {
	Users           []*models.RankingUser `json:"users"`
	Cached          bool                  `json:"cached"`
	CacheAgeSeconds int64                 `json:"cacheAge"`
}

// Reader 排行榜读取服务
// 冷路径：快速存储取topN → 主存储按ID补全 → 写入小时缓存
// 热路径：同一小时内直接从缓存切片返回
type Reader struct {
	rdb    *redis.Client
	loader UserLoader
	cache  *BucketCache
	key    string
}

// NewReader 创建读取服务
func NewReader(rdb *redis.Client, loader UserLoader, key string) *Reader {
	return &Reader{
		rdb:    rdb,
		loader: loader,
		cache:  NewBucketCache(),
		key:    key,
	}
}

// GetRanking 读取排行榜前 limit 名（offset 大于 0 时绕过缓存直接冷查）
func (r *Reader) GetRanking(ctx context.Context, limit, offset int) (*RankingResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if offset < 0 {
		offset = 0
	}

	now := tool.MakeTimestamp()

	// 缓存只服务 offset=0 的主流请求
	if offset == 0 {
		if bucket, ok := r.cache.Get(limit, now); ok {
			users := bucket.Users
			if len(users) > limit {
				users = users[:limit]
			}
			return &RankingResult{
				Users:           users,
				Cached:          true,
				CacheAgeSeconds: (now - bucket.CapturedAt) / 1000,
			}, nil
		}
	}

	users, err := r.fetchCold(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if offset == 0 {
		r.cache.Set(users, limit, now)
	}

	return &RankingResult{
		Users:           users,
		Cached:          false,
		CacheAgeSeconds: 0,
	}, nil
}

// WarmUp 预热缓存，同步任务成功后调用，避免整点后的首批请求同时冷查
func (r *Reader) WarmUp(ctx context.Context, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}

	users, err := r.fetchCold(ctx, limit, 0)
	if err != nil {
		return fmt.Errorf("warmup cold fetch: %w", err)
	}

	r.cache.Set(users, limit, tool.MakeTimestamp())
	log.Printf("🔥 排行榜缓存预热完成 entries=%d", len(users))
	return nil
}

// Cache 暴露缓存（测试用）
func (r *Reader) Cache() *BucketCache {
	return r.cache
}

// fetchCold 冷路径查询
func (r *Reader) fetchCold(ctx context.Context, limit, offset int) ([]*models.RankingUser, error) {
	if r.rdb == nil {
		return nil, fmt.Errorf("redis client is not configured")
	}

	entries, err := r.rdb.ZRevRangeWithScores(ctx, r.key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", r.key, err)
	}

	if len(entries) == 0 {
		return []*models.RankingUser{}, nil
	}

	ids := make([]string, 0, len(entries))
	scoreByID := make(map[string]int64, len(entries))
	for _, entry := range entries {
		id, ok := entry.Member.(string)
		if !ok {
			continue
		}
		ids = append(ids, id)
		scoreByID[id] = int64(entry.Score)
	}

	records, err := r.loader.UsersByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load ranking users: %w", err)
	}

	users := make([]*models.RankingUser, 0, len(records))
	for _, record := range records {
		users = append(users, &models.RankingUser{
			ID:                      record.ID,
			Name:                    record.DisplayName,
			MaxConnections:          scoreByID[record.ID],
			MaxConnectionsUpdatedAt: record.MaxConnectionsUpdatedAt,
		})
	}

	// 同分时先到先排：分值更早达到的用户在前，再按ID稳定排序
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].MaxConnections != users[j].MaxConnections {
			return users[i].MaxConnections > users[j].MaxConnections
		}
		if users[i].MaxConnectionsUpdatedAt != users[j].MaxConnectionsUpdatedAt {
			return users[i].MaxConnectionsUpdatedAt < users[j].MaxConnectionsUpdatedAt
		}
		return users[i].ID < users[j].ID
	})

	return users, nil
}

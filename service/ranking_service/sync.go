package ranking_service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"heartlink-service/models"
)

// UserPager 主存储的全量分页遍历接口
type UserPager interface {
	ForEachUserPage(batchSize int, fn func(users []models.UserRecord) error) error
}

// Syncer 排行榜同步任务
// 分页遍历全部用户（不带过滤条件，避免主存储需要组合索引），
// 把 maxConnections > 0 的用户攒进一次管道化写入刷到有序索引。
type Syncer struct {
	rdb       *redis.Client
	pager     UserPager
	reader    *Reader
	key       string
	pageSize  int
	warmLimit int
}

// NewSyncer 创建同步任务，reader 可为 nil（跳过预热）
func NewSyncer(rdb *redis.Client, pager UserPager, reader *Reader, key string, warmLimit int) *Syncer {
	return &Syncer{
		rdb:       rdb,
		pager:     pager,
		reader:    reader,
		key:       key,
		pageSize:  500,
		warmLimit: warmLimit,
	}
}

// SyncRanking 执行一次全量同步，返回写入的用户数
// 快速存储未配置属于配置错误，直接报错而不是静默跳过
func (s *Syncer) SyncRanking(ctx context.Context) (int, error) {
	if s.rdb == nil {
		return 0, fmt.Errorf("redis client is not configured")
	}
	if s.key == "" {
		return 0, fmt.Errorf("ranking key is not configured")
	}

	startTime := time.Now()
	pipe := s.rdb.Pipeline()
	count := 0

	err := s.pager.ForEachUserPage(s.pageSize, func(users []models.UserRecord) error {
		for _, user := range users {
			if user.MaxConnections <= 0 {
				continue
			}
			pipe.ZAdd(ctx, s.key, redis.Z{
				Score:  float64(user.MaxConnections),
				Member: user.ID,
			})
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("page users for ranking sync: %w", err)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("execute ranking pipeline: %w", err)
	}

	log.Printf("✅ 排行榜同步完成 synced=%d duration=%v", count, time.Since(startTime))
	return count, nil
}

// SyncAndWarm 同步后立即预热读取端缓存
// 预热只是优化，失败记日志继续，不影响同步结果
func (s *Syncer) SyncAndWarm(ctx context.Context) (int, error) {
	count, err := s.SyncRanking(ctx)
	if err != nil {
		return 0, err
	}

	if s.reader != nil && s.warmLimit > 0 {
		if err := s.reader.WarmUp(ctx, s.warmLimit); err != nil {
			log.Printf("⚠️ 排行榜缓存预热失败: %v", err)
		}
	}

	return count, nil
}

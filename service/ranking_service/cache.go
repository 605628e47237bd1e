package ranking_service

import (
	"sync"

	"heartlink-service/models"
	"heartlink-service/tool"
)

// Bucket 一次冷查询捕获的排行榜快照，按捕获时刻的小时打标
type Bucket struct {
	Users      []*models.RankingUser
	HourBucket int64 // 捕获时刻所在的小时（epoch小时数）
	CapturedAt int64 // 捕获时间（毫秒）
	Limit      int   // 捕获时请求的条数
}

// BucketCache 进程内的排行榜小时缓存
// 同步任务在每小时整点前刷新快速存储，所以"同一小时内"近似等价于
// "上次同步之后"，不需要显式TTL时钟，也不需要跨进程缓存。
type BucketCache struct {
	mu     sync.RWMutex
	bucket *Bucket
}

// NewBucketCache 创建缓存
func NewBucketCache() *BucketCache {
	return &BucketCache{}
}

// BucketValid 快照有效性判定：同一小时内捕获且条数足够
// 独立成函数，失效规则可以脱离存储单独测试
func BucketValid(bucket *Bucket, limit int, nowMs int64) bool {
	if bucket == nil {
		return false
	}
	if bucket.HourBucket != tool.HourBucket(nowMs) {
		return false
	}
	return bucket.Limit >= limit
}

// Get 返回当前有效的快照；跨小时的快照视为失效
func (c *BucketCache) Get(limit int, nowMs int64) (*Bucket, bool) {
	c.mu.RLock()
	bucket := c.bucket
	c.mu.RUnlock()

	if !BucketValid(bucket, limit, nowMs) {
		return nil, false
	}
	return bucket, true
}

// Set 写入新快照，后写者覆盖（并发冷查询竞争是良性的）
func (c *BucketCache) Set(users []*models.RankingUser, limit int, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bucket = &Bucket{
		Users:      users,
		HourBucket: tool.HourBucket(nowMs),
		CapturedAt: nowMs,
		Limit:      limit,
	}
}

// Invalidate 丢弃当前快照
func (c *BucketCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bucket = nil
}

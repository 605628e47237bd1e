package rate_limit_service

import (
	"log"

	"heartlink-service/models"
	"heartlink-service/tool"
)

// SampleStore 限流器依赖的心跳样本读写接口
type SampleStore interface {
	GetHeartbeat(userId string) (*models.HeartbeatSample, error)
	MarkNotificationSent(userId string, sentAt int64) error
}

// Limiter 基于 lastNotificationSent 时间戳的推送冷却限流器
// Allow 只读不写，成功派发后由调用方显式调用 MarkSent 落盘时间戳，
// 这样因无关注者、无有效令牌而跳过的派发不会白白重置冷却窗口。
type Limiter struct {
	store      SampleStore
	cooldownMs int64
}

// NewLimiter 创建限流器，cooldownMs 为同一用户两次推送的最小间隔（毫秒）
func NewLimiter(store SampleStore, cooldownMs int64) *Limiter {
	return &Limiter{
		store:      store,
		cooldownMs: cooldownMs,
	}
}

// Allow 判断该用户当前是否允许推送
// 无样本或无已发送时间戳时放行；并发下两次读到同一旧时间戳可能都放行，
// 偶发的双发是可接受的，换取不加跨请求锁。
func (l *Limiter) Allow(userId string) bool {
	sample, err := l.store.GetHeartbeat(userId)
	if err != nil {
		log.Printf("⚠️ 读取心跳样本失败，跳过本次推送 userId=%s: %v", userId, err)
		return false
	}

	if sample == nil || sample.LastNotificationSent == 0 {
		return true
	}

	elapsed := tool.MakeTimestamp() - sample.LastNotificationSent
	return elapsed >= l.cooldownMs
}

// MarkSent 记录本次推送时间，开启新的冷却窗口
func (l *Limiter) MarkSent(userId string) error {
	return l.store.MarkNotificationSent(userId, tool.MakeTimestamp())
}

// CooldownMs 返回冷却窗口长度（毫秒）
func (l *Limiter) CooldownMs() int64 {
	return l.cooldownMs
}

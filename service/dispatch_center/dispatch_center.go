package dispatch_center

import (
	"context"
	"log"
	"time"

	"heartlink-service/models"
	"heartlink-service/service/push_service"
	"heartlink-service/service/stream_service"
)

// FollowerResolver 主存储读取接口
type FollowerResolver interface {
	FollowersOf(userId string) ([]models.FollowerRecord, error)
	UserByID(userId string) (*models.UserRecord, error)
}

// SampleStore 心跳样本与触发记录的本地存储接口
type SampleStore interface {
	SaveHeartbeat(sample *models.HeartbeatSample) error
	GetHeartbeat(userId string) (*models.HeartbeatSample, error)
	SaveTrigger(trigger *models.NotificationTrigger) error
	DeleteTrigger(userId string) error
}

// RateGate 推送冷却判定接口
type RateGate interface {
	Allow(userId string) bool
	MarkSent(userId string) error
}

// PushSender 推送发送接口
type PushSender interface {
	SendHeartbeatUpdate(ctx context.Context, tokens []string, displayName string, bpm int64) (*push_service.DispatchReport, error)
}

// DispatchCenter 通知派发中心
// 消费实时流上的写事件，限流后把心跳更新群发给被关注者的全部关注者。
// 所有错误在这一层记日志后吞掉：一次推送失败绝不能让底层事件投递陷入无限重试。
type DispatchCenter struct {
	resolver FollowerResolver
	store    SampleStore
	gate     RateGate
	sender   PushSender

	dispatchTimeout time.Duration
}

// NewDispatchCenter 创建派发中心
func NewDispatchCenter(resolver FollowerResolver, store SampleStore, gate RateGate, sender PushSender) *DispatchCenter {
	return &DispatchCenter{
		resolver:        resolver,
		store:           store,
		gate:            gate,
		sender:          sender,
		dispatchTimeout: 30 * time.Second,
	}
}

// OnHeartbeatWrite 处理心跳集合写事件
func (dc *DispatchCenter) OnHeartbeatWrite(event *stream_service.HeartbeatWriteEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in OnHeartbeatWrite: %v", r)
		}
	}()

	if event == nil || event.SubjectUserID == "" {
		return
	}

	// BPM未变化说明只是次要字段写入（比如冷却时间戳回写），直接退出
	if event.BeforeBpm == event.AfterBpm {
		return
	}

	if err := dc.mirrorSample(event); err != nil {
		log.Printf("⚠️ 镜像心跳样本失败 userId=%s: %v", event.SubjectUserID, err)
		// 样本镜像失败不阻断派发，限流器按已有数据判定
	}

	// 创建事件（无写前BPM）只建立镜像不推送：紧随其后的首次BPM变化
	// 才是值得通知的样本，否则新用户的第一条样本会抢占冷却窗口
	if event.BeforeBpm == 0 {
		return
	}

	if !dc.gate.Allow(event.SubjectUserID) {
		log.Printf("🚫 冷却窗口内，跳过推送 userId=%s", event.SubjectUserID)
		return
	}

	dc.dispatch(event.SubjectUserID, event.AfterBpm)
}

// OnTriggerWrite 处理触发集合写事件
// 触发记录不携带BPM，需要回读心跳样本；无论派发成败都删除触发记录，
// 保证事件系统的重试永远不会因残留触发导致重复推送。
func (dc *DispatchCenter) OnTriggerWrite(event *stream_service.TriggerWriteEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in OnTriggerWrite: %v", r)
		}
	}()

	if event == nil || event.SubjectUserID == "" {
		return
	}

	// 删除事件是后端清理触发记录的回声，不处理
	if event.Deleted {
		return
	}

	if err := dc.store.SaveTrigger(&models.NotificationTrigger{
		SubjectUserID: event.SubjectUserID,
		TriggeredAt:   event.TriggeredAt,
	}); err != nil {
		log.Printf("⚠️ 镜像触发记录失败 userId=%s: %v", event.SubjectUserID, err)
	}

	// 处理尝试结束后必须删除触发记录（成功、部分失败、出错都一样）
	defer func() {
		if err := dc.store.DeleteTrigger(event.SubjectUserID); err != nil {
			log.Printf("⚠️ 删除触发记录失败 userId=%s: %v", event.SubjectUserID, err)
		}
	}()

	sample, err := dc.store.GetHeartbeat(event.SubjectUserID)
	if err != nil {
		log.Printf("⚠️ 回读心跳样本失败 userId=%s: %v", event.SubjectUserID, err)
		return
	}
	if sample == nil {
		log.Printf("📭 无心跳样本，忽略触发 userId=%s", event.SubjectUserID)
		return
	}

	if !dc.gate.Allow(event.SubjectUserID) {
		log.Printf("🚫 冷却窗口内，跳过推送 userId=%s", event.SubjectUserID)
		return
	}

	dc.dispatch(event.SubjectUserID, sample.Bpm)
}

// mirrorSample 把写事件落到本地样本存储，保留已有的冷却时间戳
func (dc *DispatchCenter) mirrorSample(event *stream_service.HeartbeatWriteEvent) error {
	sample := &models.HeartbeatSample{
		SubjectUserID: event.SubjectUserID,
		Bpm:           event.AfterBpm,
		Timestamp:     event.Timestamp,
	}

	existing, err := dc.store.GetHeartbeat(event.SubjectUserID)
	if err != nil {
		return err
	}
	if existing != nil {
		sample.LastNotificationSent = existing.LastNotificationSent
	}

	return dc.store.SaveHeartbeat(sample)
}

// dispatch 解析关注者并执行一次群发
func (dc *DispatchCenter) dispatch(userId string, bpm int64) {
	user, err := dc.resolver.UserByID(userId)
	if err != nil {
		log.Printf("🔥 查询用户失败 userId=%s: %v", userId, err)
		return
	}
	if user == nil {
		log.Printf("📭 用户不存在，跳过推送 userId=%s", userId)
		return
	}

	followers, err := dc.resolver.FollowersOf(userId)
	if err != nil {
		log.Printf("🔥 查询关注者失败 userId=%s: %v", userId, err)
		return
	}

	// 过滤出开启通知且有设备令牌的关注者
	tokens := make([]string, 0, len(followers))
	for _, follower := range followers {
		if follower.NotificationEnabled && follower.DeviceToken != "" {
			tokens = append(tokens, follower.DeviceToken)
		}
	}

	if len(tokens) == 0 {
		// 没有可推送对象时不回写冷却时间戳，下一次有效事件仍可立即推送
		log.Printf("📭 无可推送的关注者 userId=%s followers=%d", userId, len(followers))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dc.dispatchTimeout)
	defer cancel()

	report, err := dc.sender.SendHeartbeatUpdate(ctx, tokens, user.DisplayName, bpm)
	if err != nil {
		log.Printf("🔥 推送派发失败 userId=%s: %v", userId, err)
		return
	}

	for _, result := range report.Results {
		if !result.Success {
			log.Printf("⚠️ 单令牌推送失败 userId=%s token=%s: %v", userId, result.Token, result.Error)
		}
	}

	log.Printf("✅ 推送完成 userId=%s bpm=%d success=%d/%d duration=%v",
		userId, bpm, report.SuccessCount, report.TotalTokens, report.Duration)

	// 有过一次真实的派发尝试才开启冷却窗口
	if err := dc.gate.MarkSent(userId); err != nil {
		log.Printf("⚠️ 回写冷却时间戳失败 userId=%s: %v", userId, err)
	}
}

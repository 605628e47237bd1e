package models

// HeartbeatSample 实时流中的心跳样本，按用户ID为键
// 客户端每次采样都会覆写；后端只读取并回写 LastNotificationSent
type HeartbeatSample struct {
	SubjectUserID        string `json:"subjectUserId"`
	Bpm                  int64  `json:"bpm"`
	Timestamp            int64  `json:"timestamp"`                      // 采样时间（毫秒）
	LastNotificationSent int64  `json:"lastNotificationSent,omitempty"` // 最近一次通知时间（毫秒），0 表示从未通知
}

// NotificationTrigger 客户端写入的通知触发记录
// 处理完成后（无论成败）由后端幂等删除，保证事件重试不会重复推送
type NotificationTrigger struct {
	SubjectUserID string `json:"subjectUserId"`
	TriggeredAt   int64  `json:"t"` // 触发时间（毫秒）
}

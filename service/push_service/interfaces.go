package push_service

import (
	"context"
	"time"
)

// PushProvider 定义推送提供者接口
type PushProvider interface {
	// GetName 返回提供者名称
	GetName() string

	// SendMulticast 把同一条通知群发给一组设备令牌
	SendMulticast(ctx context.Context, tokens []string, notification *PushNotification) ([]*TokenResult, error)

	// ValidateToken 验证推送令牌格式
	ValidateToken(token string) bool

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) error
}

// PushNotification 推送通知内容
type PushNotification struct {
	Title    string                 `json:"title" binding:"required"` // 通知标题
	Body     string                 `json:"body" binding:"required"`  // 通知内容
	Data     map[string]interface{} `json:"data,omitempty"`           // 自定义数据
	Sound    string                 `json:"sound,omitempty"`          // 声音
	Priority string                 `json:"priority,omitempty"`       // 优先级 (normal/high)
}

// TokenResult 单个令牌的推送结果
type TokenResult struct {
	Token     string        `json:"token"`               // 推送令牌
	Success   bool          `json:"success"`             // 是否成功
	ReceiptID string        `json:"receiptId,omitempty"` // 回执ID
	Error     error         `json:"error,omitempty"`     // 错误信息
	Duration  time.Duration `json:"duration"`            // 处理耗时
}

// DispatchReport 一次群发的汇总结果
type DispatchReport struct {
	Provider     string         `json:"provider"`     // 使用的提供者
	TotalTokens  int            `json:"totalTokens"`  // 总令牌数
	SuccessCount int            `json:"successCount"` // 成功数
	FailureCount int            `json:"failureCount"` // 失败数
	Results      []*TokenResult `json:"results"`      // 详细结果
	Duration     time.Duration  `json:"duration"`     // 总耗时
	Timestamp    time.Time      `json:"timestamp"`    // 时间戳
}

// PushService 推送服务接口
type PushService interface {
	// SendToTokens 通过默认提供者把通知群发给一组令牌
	SendToTokens(ctx context.Context, tokens []string, notification *PushNotification) (*DispatchReport, error)

	// RegisterProvider 注册推送提供者
	RegisterProvider(provider PushProvider) error

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) map[string]error

	// Start 启动服务
	Start() error

	// Stop 停止服务
	Stop() error
}

// 常量定义
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"

	ProviderTypeExpo = "expo"
	ProviderTypeFCM  = "fcm"
	ProviderTypeAPNS = "apns"
)

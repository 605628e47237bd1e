package push_service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"heartlink-service/models"
	"heartlink-service/service/expo_service"
)

// Manager 推送服务管理器
type Manager struct {
	service PushService
	mu      sync.RWMutex
}

// NewManager 创建推送服务管理器
func NewManager() *Manager {
	return &Manager{
		service: NewPushService(),
	}
}

// RegisterExpoProvider 注册Expo推送提供者
func (m *Manager) RegisterExpoProvider(config *expo_service.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	provider := NewExpoProvider(config)
	return m.service.RegisterProvider(provider)
}

// SendHeartbeatUpdate 把心跳更新通知群发给一组设备令牌
// 标题带被关注者昵称，正文带当前BPM，data里附机器可读的负载
func (m *Manager) SendHeartbeatUpdate(ctx context.Context, tokens []string, displayName string, bpm int64) (*DispatchReport, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("token list cannot be empty")
	}

	if displayName == "" {
		displayName = "Someone"
	}

	notification := &PushNotification{
		Title: fmt.Sprintf("%s 💓", displayName),
		Body:  fmt.Sprintf("Heart rate: %d BPM", bpm),
		Data: map[string]interface{}{
			"type": models.PayloadTypeHeartbeatUpdate,
			"bpm":  strconv.FormatInt(bpm, 10),
		},
		Sound:    "default",
		Priority: PriorityHigh,
	}

	return m.service.SendToTokens(ctx, tokens, notification)
}

// SendToTokensWithData 发送自定义通知给一组令牌
func (m *Manager) SendToTokensWithData(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) (*DispatchReport, error) {
	notification := &PushNotification{
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	}

	return m.service.SendToTokens(ctx, tokens, notification)
}

// GetProviders 获取所有注册的提供者
func (m *Manager) GetProviders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if defaultService, ok := m.service.(*DefaultPushService); ok {
		return defaultService.GetProviders()
	}

	return []string{}
}

// HealthCheck 健康检查
func (m *Manager) HealthCheck(ctx context.Context) map[string]error {
	return m.service.HealthCheck(ctx)
}

// Start 启动服务
func (m *Manager) Start() error {
	return m.service.Start()
}

// Stop 停止服务
func (m *Manager) Stop() error {
	return m.service.Stop()
}

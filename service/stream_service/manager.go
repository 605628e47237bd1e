package stream_service

import (
	"errors"
	"log"
	"sync"
)

// Manager 简化的Socket.IO客户端管理器
type Manager struct {
	client *Client
	config *Config
	mu     sync.RWMutex
}

// NewManager 创建管理器
func NewManager(config *Config) *Manager {
	return &Manager{
		config: config,
		client: NewClient(config),
	}
}

// Start 启动Socket.IO客户端
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 设置默认回调函数
	if m.client.OnConnect == nil {
		m.client.OnConnect = func() {
			log.Printf("🚀 Stream client connected: %s", m.config.ServerURL)
		}
	}

	if m.client.OnDisconnect == nil {
		m.client.OnDisconnect = func() {
			log.Printf("📴 Stream client disconnected")
		}
	}

	if m.client.OnError == nil {
		m.client.OnError = func(err error) {
			log.Printf("🔥 Stream client error: %v", err)
		}
	}

	return m.client.Start()
}

// Stop 停止Socket.IO客户端
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.Stop()
	}
}

// IsRunning 检查是否运行中
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.client != nil && m.client.IsConnected()
}

// SetHeartbeatWriteHandler 设置心跳写事件处理器
func (m *Manager) SetHeartbeatWriteHandler(handler func(*HeartbeatWriteEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnHeartbeatWrite = handler
}

// SetTriggerWriteHandler 设置触发写事件处理器
func (m *Manager) SetTriggerWriteHandler(handler func(*TriggerWriteEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnTriggerWrite = handler
}

// SetConnectHandler 设置连接处理器
func (m *Manager) SetConnectHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnConnect = handler
}

// SetDisconnectHandler 设置断开连接处理器
func (m *Manager) SetDisconnectHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnDisconnect = handler
}

// SetErrorHandler 设置错误处理器
func (m *Manager) SetErrorHandler(handler func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.OnError = handler
}

// SendMessage 发送消息
func (m *Manager) SendMessage(event string, data interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.client == nil {
		return errors.New("client not initialized")
	}

	return m.client.SendMessage(event, data)
}

// GetConfig 获取配置
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.config
}

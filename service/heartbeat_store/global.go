package heartbeat_store

import (
	"fmt"
	"log"
	"sync"
)

var (
	globalService *HeartbeatStore
	globalMu      sync.RWMutex
)

// InitializeGlobalService 初始化全局心跳存储服务
func InitializeGlobalService(config *Config) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalService != nil {
		return nil
	}

	service := NewHeartbeatStore(config)
	if err := service.Initialize(); err != nil {
		return fmt.Errorf("初始化心跳存储失败: %w", err)
	}

	globalService = service
	return nil
}

// GetGlobalService 获取全局心跳存储服务，未初始化时返回 nil
func GetGlobalService() *HeartbeatStore {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalService
}

// CloseGlobalService 关闭全局心跳存储服务
func CloseGlobalService() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalService == nil {
		return nil
	}

	if err := globalService.Close(); err != nil {
		log.Printf("⚠️ 关闭心跳存储时出现错误: %v", err)
		return err
	}

	globalService = nil
	return nil
}

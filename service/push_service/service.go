package push_service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultPushService 默认推送服务实现
type DefaultPushService struct {
	providers       map[string]PushProvider
	defaultProvider string
	mu              sync.RWMutex
	running         bool
}

// NewPushService 创建新的推送服务
func NewPushService() *DefaultPushService {
	return &DefaultPushService{
		providers: make(map[string]PushProvider),
	}
}

// SendToTokens 通过默认提供者把通知群发给一组令牌
func (s *DefaultPushService) SendToTokens(ctx context.Context, tokens []string, notification *PushNotification) (*DispatchReport, error) {
	startTime := time.Now()

	s.mu.RLock()
	provider, exists := s.providers[s.defaultProvider]
	providerName := s.defaultProvider
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no push provider registered")
	}

	if len(tokens) == 0 {
		return &DispatchReport{
			Provider:     providerName,
			TotalTokens:  0,
			SuccessCount: 0,
			FailureCount: 0,
			Results:      []*TokenResult{},
			Duration:     time.Since(startTime),
			Timestamp:    time.Now(),
		}, nil
	}

	// 先过滤掉格式非法的令牌，保留对应的失败结果
	validTokens := make([]string, 0, len(tokens))
	invalidResults := make([]*TokenResult, 0)
	for _, token := range tokens {
		if provider.ValidateToken(token) {
			validTokens = append(validTokens, token)
		} else {
			invalidResults = append(invalidResults, &TokenResult{
				Token: token,
				Error: fmt.Errorf("invalid token format"),
			})
		}
	}

	results := make([]*TokenResult, 0, len(tokens))
	results = append(results, invalidResults...)

	if len(validTokens) > 0 {
		sendResults, err := provider.SendMulticast(ctx, validTokens, notification)
		if err != nil {
			return nil, fmt.Errorf("provider %s multicast failed: %w", providerName, err)
		}
		results = append(results, sendResults...)
	}

	// 统计结果
	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Success {
			successCount++
		} else {
			failureCount++
		}
	}

	return &DispatchReport{
		Provider:     providerName,
		TotalTokens:  len(tokens),
		SuccessCount: successCount,
		FailureCount: failureCount,
		Results:      results,
		Duration:     time.Since(startTime),
		Timestamp:    time.Now(),
	}, nil
}

// RegisterProvider 注册推送提供者，第一个注册的成为默认提供者
func (s *DefaultPushService) RegisterProvider(provider PushProvider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := provider.GetName()
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	s.providers[name] = provider
	if s.defaultProvider == "" {
		s.defaultProvider = name
	}
	return nil
}

// SetDefaultProvider 设置默认提供者
func (s *DefaultPushService) SetDefaultProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[name]; !exists {
		return fmt.Errorf("provider %s not registered", name)
	}

	s.defaultProvider = name
	return nil
}

// HealthCheck 健康检查
func (s *DefaultPushService) HealthCheck(ctx context.Context) map[string]error {
	s.mu.RLock()
	providers := make(map[string]PushProvider)
	for name, provider := range s.providers {
		providers[name] = provider
	}
	s.mu.RUnlock()

	results := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup

	// 并发检查所有提供者
	for name, provider := range providers {
		wg.Add(1)
		go func(n string, p PushProvider) {
			defer wg.Done()

			err := p.HealthCheck(ctx)
			mu.Lock()
			results[n] = err
			mu.Unlock()
		}(name, provider)
	}

	wg.Wait()

	return results
}

// Start 启动服务
func (s *DefaultPushService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("service is already running")
	}

	s.running = true
	return nil
}

// Stop 停止服务
func (s *DefaultPushService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("service is not running")
	}

	s.running = false
	return nil
}

// GetProviders 获取所有注册的提供者名称
func (s *DefaultPushService) GetProviders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}

	return names
}

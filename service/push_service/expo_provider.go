package push_service

import (
	"context"
	"time"

	"heartlink-service/service/expo_service"
)

// ExpoProvider Expo推送提供者实现
type ExpoProvider struct {
	service *expo_service.Service
}

// NewExpoProvider 创建新的Expo推送提供者
func NewExpoProvider(config *expo_service.Config) *ExpoProvider {
	var service *expo_service.Service
	if config != nil {
		service = expo_service.NewServiceWithConfig(config)
	} else {
		service = expo_service.NewService()
	}

	return &ExpoProvider{
		service: service,
	}
}

// GetName 返回提供者名称
func (p *ExpoProvider) GetName() string {
	return ProviderTypeExpo
}

// SendMulticast 把同一条通知群发给一组Expo令牌
func (p *ExpoProvider) SendMulticast(ctx context.Context, tokens []string, notification *PushNotification) ([]*TokenResult, error) {
	startTime := time.Now()

	expoResults := p.service.SendMulticast(ctx, tokens, notification.Title, notification.Body, notification.Data)

	results := make([]*TokenResult, 0, len(expoResults))
	for _, expoResult := range expoResults {
		result := &TokenResult{
			Token:     expoResult.Token,
			Success:   expoResult.Success,
			ReceiptID: expoResult.ReceiptID,
			Duration:  time.Since(startTime),
		}
		if !expoResult.Success {
			result.Error = expoResult.Error
		}
		results = append(results, result)
	}

	return results, nil
}

// ValidateToken 验证推送令牌格式
func (p *ExpoProvider) ValidateToken(token string) bool {
	return expo_service.ValidateToken(token)
}

// HealthCheck 健康检查
func (p *ExpoProvider) HealthCheck(ctx context.Context) error {
	return p.service.HealthCheck(ctx)
}

package push_service

import (
	"context"
	"fmt"
	"testing"
)

// fakeProvider 测试用的推送提供者，记录收到的令牌并按前缀判定成败
type fakeProvider struct {
	name       string
	sentTokens [][]string
	healthErr  error
}

func (f *fakeProvider) GetName() string {
	return f.name
}

func (f *fakeProvider) SendMulticast(ctx context.Context, tokens []string, notification *PushNotification) ([]*TokenResult, error) {
	f.sentTokens = append(f.sentTokens, tokens)

	results := make([]*TokenResult, 0, len(tokens))
	for _, token := range tokens {
		result := &TokenResult{Token: token}
		if token == "ExponentPushToken[dead-device]" {
			result.Error = fmt.Errorf("DeviceNotRegistered")
		} else {
			result.Success = true
			result.ReceiptID = "receipt-" + token
		}
		results = append(results, result)
	}
	return results, nil
}

func (f *fakeProvider) ValidateToken(token string) bool {
	return len(token) > 20 && token[:18] == "ExponentPushToken["
}

func (f *fakeProvider) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

func TestSendToTokens(t *testing.T) {
	service := NewPushService()
	provider := &fakeProvider{name: "expo"}

	if err := service.RegisterProvider(provider); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}

	tokens := []string{
		"ExponentPushToken[follower-a-device]",
		"ExponentPushToken[dead-device]",
		"not-a-token",
	}

	report, err := service.SendToTokens(context.Background(), tokens, &PushNotification{
		Title: "Alice 💓",
		Body:  "Heart rate: 78 BPM",
	})
	if err != nil {
		t.Fatalf("SendToTokens failed: %v", err)
	}

	if report.TotalTokens != 3 {
		t.Errorf("expected 3 total tokens, got %d", report.TotalTokens)
	}
	if report.SuccessCount != 1 {
		t.Errorf("expected 1 success, got %d", report.SuccessCount)
	}
	if report.FailureCount != 2 {
		t.Errorf("expected 2 failures, got %d", report.FailureCount)
	}

	// 非法令牌不应到达提供者
	if len(provider.sentTokens) != 1 || len(provider.sentTokens[0]) != 2 {
		t.Errorf("provider should receive exactly the 2 valid tokens, got %v", provider.sentTokens)
	}

	t.Logf("✅ dispatch report: %d/%d success in %v", report.SuccessCount, report.TotalTokens, report.Duration)
}

func TestSendToTokensNoProvider(t *testing.T) {
	service := NewPushService()

	_, err := service.SendToTokens(context.Background(), []string{"ExponentPushToken[x]"}, &PushNotification{Body: "hi"})
	if err == nil {
		t.Fatal("expected error when no provider is registered")
	}
}

func TestSendToTokensEmptyList(t *testing.T) {
	service := NewPushService()
	if err := service.RegisterProvider(&fakeProvider{name: "expo"}); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}

	report, err := service.SendToTokens(context.Background(), nil, &PushNotification{Body: "hi"})
	if err != nil {
		t.Fatalf("SendToTokens failed: %v", err)
	}
	if report.TotalTokens != 0 || len(report.Results) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestRegisterProviderDefault(t *testing.T) {
	service := NewPushService()

	first := &fakeProvider{name: "expo"}
	second := &fakeProvider{name: "fcm"}

	if err := service.RegisterProvider(first); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}
	if err := service.RegisterProvider(second); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}

	// 第一个注册的是默认提供者
	report, err := service.SendToTokens(context.Background(), []string{"ExponentPushToken[follower-a-device]"}, &PushNotification{Body: "hi"})
	if err != nil {
		t.Fatalf("SendToTokens failed: %v", err)
	}
	if report.Provider != "expo" {
		t.Errorf("expected default provider expo, got %s", report.Provider)
	}

	if err := service.SetDefaultProvider("fcm"); err != nil {
		t.Fatalf("SetDefaultProvider failed: %v", err)
	}
	if err := service.SetDefaultProvider("apns"); err == nil {
		t.Error("expected error for unregistered provider")
	}
}

func TestHealthCheck(t *testing.T) {
	service := NewPushService()
	healthy := &fakeProvider{name: "expo"}
	unhealthy := &fakeProvider{name: "fcm", healthErr: fmt.Errorf("connection refused")}

	service.RegisterProvider(healthy)
	service.RegisterProvider(unhealthy)

	results := service.HealthCheck(context.Background())
	if results["expo"] != nil {
		t.Errorf("expected expo healthy, got %v", results["expo"])
	}
	if results["fcm"] == nil {
		t.Error("expected fcm unhealthy")
	}
}

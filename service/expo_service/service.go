package expo_service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"
)

// Service provides high-level push notification functionality with retry logic
type Service struct {
	client *Client
	config *Config
}

// NewService creates a new Expo push notification service with default configuration
func NewService() *Service {
	config := DefaultConfig()
	return &Service{
		client: NewClient(),
		config: config,
	}
}

// NewServiceWithConfig creates a new service with custom configuration
func NewServiceWithConfig(config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	config.Validate()

	return &Service{
		client: NewClientWithConfig(config.AccessToken, config.Timeout),
		config: config,
	}
}

// SendNotificationResult represents the per-token result of a multicast send
type SendNotificationResult struct {
	Success   bool
	ReceiptID string
	Error     error
	Token     string
	Retry     int
}

// SendMulticast sends one notification to many tokens.
// Tokens are split into batches; each batch goes out as a single message
// with multiple recipients, and the API answers with one ticket per token.
func (s *Service) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) []*SendNotificationResult {
	results := make([]*SendNotificationResult, 0, len(tokens))

	for i := 0; i < len(tokens); i += s.config.BatchSize {
		end := i + s.config.BatchSize
		if end > len(tokens) {
			end = len(tokens)
		}

		batchTokens := tokens[i:end]
		batchResults := s.sendBatch(ctx, batchTokens, title, body, data)
		results = append(results, batchResults...)
	}

	return results
}

// sendBatch sends a single multicast message with retry
func (s *Service) sendBatch(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) []*SendNotificationResult {
	message := &PushMessage{
		To:       tokens,
		Title:    title,
		Body:     body,
		Data:     data,
		Sound:    s.config.DefaultSound,
		TTL:      s.config.DefaultTTL,
		Priority: s.config.DefaultPriority,
	}

	results := make([]*SendNotificationResult, len(tokens))
	for i, token := range tokens {
		results[i] = &SendNotificationResult{Token: token}
	}

	for retry := 0; retry <= s.config.MaxRetries; retry++ {
		response, err := s.client.SendPushMessage(ctx, message)
		if err != nil {
			if s.shouldRetry(err, retry) {
				s.waitBeforeRetry(retry + 1)
				continue
			}
			// Set error for all tokens
			for i := range results {
				results[i].Error = err
				results[i].Retry = retry
			}
			return results
		}

		if len(response.Errors) > 0 {
			// Request-level errors apply to every token in the batch
			for i := range results {
				results[i].Error = fmt.Errorf("API errors: %v", response.Errors)
				results[i].Retry = retry
			}
			return results
		}

		// Tickets come back in token order
		for i, ticket := range response.Data {
			if i >= len(results) {
				break
			}

			if ticket.Status == "ok" {
				results[i].Success = true
				results[i].ReceiptID = ticket.ID
				results[i].Retry = retry
			} else {
				results[i].Error = fmt.Errorf("push failed: %s - %v", ticket.Message, ticket.Details)
				results[i].Retry = retry
			}
		}

		return results
	}

	// Max retries exceeded
	for i := range results {
		if !results[i].Success && results[i].Error == nil {
			results[i].Error = fmt.Errorf("max retries exceeded")
			results[i].Retry = s.config.MaxRetries
		}
	}

	return results
}

// shouldRetry determines if an error should trigger a retry
func (s *Service) shouldRetry(err error, retryCount int) bool {
	if retryCount >= s.config.MaxRetries {
		return false
	}

	// For now, we'll retry on all errors except the last attempt
	return true
}

// waitBeforeRetry implements exponential backoff
func (s *Service) waitBeforeRetry(retryCount int) {
	if retryCount == 0 {
		return
	}

	// Exponential backoff: baseDelay * 2^(retryCount-1)
	delay := time.Duration(float64(s.config.BaseDelay) * math.Pow(2, float64(retryCount-1)))

	// Add some jitter to avoid thundering herd
	jitter := time.Duration(float64(delay) * 0.1)
	delay += jitter

	log.Printf("Waiting %v before retry %d", delay, retryCount)
	time.Sleep(delay)
}

// HealthCheck probes the Expo API by sending a test message with an
// intentionally invalid token. A validation error from the API still
// means the API is reachable; only transport failures count as unhealthy.
func (s *Service) HealthCheck(ctx context.Context) error {
	testMessage := &PushMessage{
		To:    []string{"ExponentPushToken[invalid-token-for-health-check]"},
		Title: "Health Check",
		Body:  "This is a health check message",
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendPushMessage(checkCtx, testMessage)
	if err != nil {
		if checkCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("health check timeout: %w", err)
		}
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

// CreateSimpleMessage creates a simple push message for a single recipient
func CreateSimpleMessage(token, title, body string) *PushMessage {
	return &PushMessage{
		To:    []string{token},
		Title: title,
		Body:  body,
		Sound: "default",
	}
}

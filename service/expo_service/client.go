package expo_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// Expo Push API endpoint
	PushURL = "https://exp.host/--/api/v2/push/send"

	// Max tokens per multicast request
	MaxTokensPerRequest = 100

	// Default timeout
	DefaultTimeout = 30 * time.Second
)

// Client represents the Expo push notification client
type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	accessToken string // Expo Access Token
}

// NewClient creates a new Expo push notification client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		timeout: DefaultTimeout,
	}
}

// NewClientWithConfig creates a new Expo push notification client with full config
func NewClientWithConfig(accessToken string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout:     timeout,
		accessToken: accessToken,
	}
}

// PushMessage represents a push notification message
// A single message with multiple recipients is one multicast call.
type PushMessage struct {
	To       []string               `json:"to,omitempty"`       // Push tokens
	Title    string                 `json:"title,omitempty"`    // Notification title
	Body     string                 `json:"body"`               // Notification body
	Data     map[string]interface{} `json:"data,omitempty"`     // Custom data
	Sound    string                 `json:"sound,omitempty"`    // Sound to play
	TTL      int                    `json:"ttl,omitempty"`      // Time to live in seconds
	Priority string                 `json:"priority,omitempty"` // normal or high
}

// PushTicket represents the per-token response from sending a push notification
type PushTicket struct {
	Status  string                 `json:"status"`            // "ok" or "error"
	ID      string                 `json:"id,omitempty"`      // Receipt ID for successful sends
	Message string                 `json:"message,omitempty"` // Error message for failed sends
	Details map[string]interface{} `json:"details,omitempty"` // Additional error details
}

// PushResponse represents the response from the push API
type PushResponse struct {
	Data   []PushTicket `json:"data,omitempty"`
	Errors []APIError   `json:"errors,omitempty"`
}

// APIError represents an API error
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendPushMessage sends one multicast push message.
// The response carries one ticket per token, in token order.
func (c *Client) SendPushMessage(ctx context.Context, message *PushMessage) (*PushResponse, error) {
	if message == nil || len(message.To) == 0 {
		return nil, fmt.Errorf("no tokens to send")
	}

	if len(message.To) > MaxTokensPerRequest {
		return nil, fmt.Errorf("too many tokens: %d (max %d)", len(message.To), MaxTokensPerRequest)
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, "POST", PushURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	// 添加 Access Token 认证（如果提供）
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	// Send request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Read response
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check status code
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	// Parse response
	var pushResponse PushResponse
	if err := json.Unmarshal(body, &pushResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &pushResponse, nil
}

// ValidateToken validates if a token looks like a valid Expo push token
func ValidateToken(token string) bool {
	if len(token) < 10 {
		return false
	}

	// Expo push tokens start with "ExponentPushToken["
	return len(token) > 20 && (token[:18] == "ExponentPushToken[" || token[:14] == "ExpoPushToken[")
}

package stream_service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zishang520/socket.io/clients/engine/v3/transports"
	socketio "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

// Config Socket.IO 客户端配置
type Config struct {
	ServerURL string `yaml:"server_url" json:"server_url"` // 流服务器地址
	AuthKey   string `yaml:"auth_key" json:"auth_key"`     // 后端订阅鉴权键
	Path      string `yaml:"path" json:"path"`             // Socket.IO路径，默认 "/socket.io/"
	Timeout   int    `yaml:"timeout" json:"timeout"`       // 连接超时秒数，默认10秒
}

// Client 实时心跳流的 Socket.IO 客户端
type Client struct {
	config    *Config
	socket    *socketio.Socket
	connected bool
	mu        sync.RWMutex

	// 事件回调
	OnHeartbeatWrite func(*HeartbeatWriteEvent) // 心跳集合写事件回调
	OnTriggerWrite   func(*TriggerWriteEvent)   // 触发集合写事件回调
	OnConnect        func()
	OnDisconnect     func()
	OnError          func(error)
}

// NewClient 创建新的客户端
func NewClient(config *Config) *Client {
	if config.Path == "" {
		config.Path = "/socket.io/"
	}
	if config.Timeout == 0 {
		config.Timeout = 10
	}

	return &Client{
		config: config,
	}
}

// Start 启动客户端连接
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.socket != nil && c.connected {
		return nil
	}

	serverURL := c.config.ServerURL

	options := socketio.DefaultOptions()
	options.SetTransports(types.NewSet(
		transports.Polling,
		transports.WebSocket,
	))
	options.SetPath(c.config.Path)
	options.SetQuery(
		url.Values{
			"streamAuthKey": {c.config.AuthKey},
		},
	)
	options.SetTimeout(time.Duration(c.config.Timeout) * time.Second)

	socket, err := socketio.Connect(serverURL, options)
	if err != nil {
		log.Printf("❌ Failed to connect to Socket.IO server: %v", err)
		if c.OnError != nil {
			go c.OnError(err)
		}
		return err
	}

	c.socket = socket
	c.setupEventHandlers()

	log.Printf("🚀 Socket.IO client connecting to %s", serverURL)
	return nil
}

// Stop 停止客户端
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.socket != nil {
		c.socket.Disconnect()
		c.socket = nil
	}

	c.connected = false

	if c.OnDisconnect != nil {
		go c.OnDisconnect()
	}

	log.Println("📴 Socket.IO client stopped")
}

// IsConnected 检查是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.socket == nil {
		return false
	}

	// 安全地检查连接状态，防止 panic
	connected := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered when checking socket.Connected(): %v", r)
				connected = false
			}
		}()
		connected = c.socket.Connected()
	}()

	return connected
}

// setupEventHandlers 设置事件处理器
func (c *Client) setupEventHandlers() {
	if c.socket == nil {
		return
	}

	c.socket.On("connect", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in connect handler: %v", r)
			}
		}()

		c.mu.Lock()
		c.connected = true
		c.mu.Unlock()

		log.Printf("✅ Socket.IO connected successfully")

		if c.OnConnect != nil {
			go c.OnConnect()
		}

		// 启动保活
		go c.startKeepalive()
	})

	c.socket.On("disconnect", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in disconnect handler: %v", r)
			}
		}()

		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		log.Printf("❌ Socket.IO disconnected")

		if c.OnDisconnect != nil {
			go c.OnDisconnect()
		}
	})

	c.socket.On("connect_error", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in connect_error handler: %v", r)
				if c.OnError != nil {
					go c.OnError(fmt.Errorf("connect error panic recovered: %v", r))
				}
			}
		}()

		var err error
		if len(data) > 0 && data[0] != nil {
			if e, ok := data[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("connection error: %v", data[0])
			}
		} else {
			err = errors.New("connection error: unknown error")
		}

		log.Printf("🔥 Socket.IO connect error: %v", err)

		if c.OnError != nil {
			go c.OnError(err)
		}
	})

	c.socket.On("error", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in error handler: %v", r)
				if c.OnError != nil {
					go c.OnError(fmt.Errorf("error handler panic recovered: %v", r))
				}
			}
		}()

		var err error
		if len(data) > 0 && data[0] != nil {
			if e, ok := data[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("socket error: %v", data[0])
			}
		} else {
			err = errors.New("socket error: unknown error")
		}

		log.Printf("🔥 Socket.IO error: %v", err)

		if c.OnError != nil {
			go c.OnError(err)
		}
	})

	// 处理服务端的WebSocket消息格式
	c.socket.On("message", func(data ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Panic recovered in message handler: %v", r)
			}
		}()

		c.handleSocketData(data)
	})
}

// handleSocketData 处理服务端的SocketData格式消息
func (c *Client) handleSocketData(data []interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in handleSocketData: %v", r)
		}
	}()

	if len(data) == 0 {
		return
	}

	var socketData *SocketData

	// 如果是字符串，直接解析
	if msgStr, ok := data[0].(string); ok {
		socketData = &SocketData{}
		err := json.Unmarshal([]byte(msgStr), socketData)
		if err != nil {
			log.Printf("⚠️ Failed to parse SocketData from string: %v", err)
			return
		}
	} else if msgMap, ok := data[0].(map[string]interface{}); ok {
		// 如果是map，转换为SocketData
		socketData = &SocketData{}
		if m, ok := msgMap["M"].(string); ok {
			socketData.M = m
		}
		if code, ok := msgMap["C"]; ok {
			socketData.C = code
		}
		if d, ok := msgMap["D"]; ok {
			socketData.D = d
		}
	} else {
		log.Printf("⚠️ Unknown SocketData format: %v", data[0])
		return
	}

	// 根据方法类型处理消息
	switch strings.ToUpper(socketData.M) {
	case HEART_BEAT, PONG:
		// 保活响应，不处理
	case WS_SERVER_NOTIFY_HEARTBEAT:
		c.handleHeartbeatWrite(socketData)
	case WS_SERVER_NOTIFY_TRIGGER:
		c.handleTriggerWrite(socketData)
	default:
		log.Printf("📨 未知方法: %s, 数据: %v", socketData.M, socketData.D)
	}
}

// handleHeartbeatWrite 解析心跳写事件并回调
func (c *Client) handleHeartbeatWrite(socketData *SocketData) {
	if c.OnHeartbeatWrite == nil || socketData.D == nil {
		return
	}

	event := &HeartbeatWriteEvent{}
	if err := decodeEventPayload(socketData.D, event); err != nil {
		log.Printf("⚠️ 解析心跳写事件失败: %v", err)
		return
	}

	// 异步调用事件处理器
	go c.OnHeartbeatWrite(event)
}

// handleTriggerWrite 解析触发写事件并回调
func (c *Client) handleTriggerWrite(socketData *SocketData) {
	if c.OnTriggerWrite == nil || socketData.D == nil {
		return
	}

	event := &TriggerWriteEvent{}
	if err := decodeEventPayload(socketData.D, event); err != nil {
		log.Printf("⚠️ 解析触发写事件失败: %v", err)
		return
	}

	go c.OnTriggerWrite(event)
}

// decodeEventPayload 把 D 字段（map 或字符串）还原为具体事件结构
func decodeEventPayload(payload interface{}, out interface{}) error {
	var raw []byte
	switch v := payload.(type) {
	case string:
		raw = []byte(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		raw = data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal event payload: %w", err)
	}
	return nil
}

// startKeepalive 周期性发送保活包，断开后退出
func (c *Client) startKeepalive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if !c.IsConnected() {
			return
		}
		if err := c.SendMessage("message", &SocketData{M: HEART_BEAT, C: WS_CODE_HEART_BEAT}); err != nil {
			log.Printf("⚠️ 发送保活包失败: %v", err)
		}
	}
}

// SendMessage 发送消息
func (c *Client) SendMessage(event string, data interface{}) error {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in SendMessage: %v", r)
		}
	}()

	c.mu.RLock()
	socket := c.socket
	c.mu.RUnlock()

	if socket == nil || !c.IsConnected() {
		return errors.New("client not connected")
	}

	socket.Emit(event, data)
	return nil
}

package stream_service

// SocketData WebSocket generic data structure
type SocketData struct {
	M string      `json:"M"`           // method
	C interface{} `json:"C"`           // code
	D interface{} `json:"D,omitempty"` // data
}

// HeartbeatWriteEvent 心跳集合写事件
// 流服务端在每次 live_heartbeats/{userId} 写入时广播，携带写前/写后的 BPM
type HeartbeatWriteEvent struct {
	SubjectUserID string `json:"subjectUserId"`
	BeforeBpm     int64  `json:"beforeBpm"` // 写入前的 BPM，首次写入为 0
	AfterBpm      int64  `json:"afterBpm"`  // 写入后的 BPM
	Timestamp     int64  `json:"timestamp"` // 采样时间（毫秒）
}

// TriggerWriteEvent 触发集合写事件
// Deleted 为 true 表示该事件来自删除（后端清理触发记录时也会收到）
type TriggerWriteEvent struct {
	SubjectUserID string `json:"subjectUserId"`
	TriggeredAt   int64  `json:"t"`
	Deleted       bool   `json:"deleted"`
}

// WebSocket method constants
const (
	// Keepalive
	HEART_BEAT = "HEART_BEAT"
	PONG       = "PONG"

	WS_SERVER_NOTIFY_HEARTBEAT = "WS_SERVER_NOTIFY_HEARTBEAT"
	WS_SERVER_NOTIFY_TRIGGER   = "WS_SERVER_NOTIFY_TRIGGER"

	// Generic response
	WS_RESPONSE_SUCCESS = "WS_RESPONSE_SUCCESS"
	WS_RESPONSE_ERROR   = "WS_RESPONSE_ERROR"
)

// WebSocket code constants
const (
	WS_CODE_HEART_BEAT   = 10
	WS_CODE_SERVER       = 0
	WS_CODE_SEND_SUCCESS = 200
	WS_CODE_SEND_ERROR   = 400
)

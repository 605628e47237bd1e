package models

// 推送数据载荷中的消息类型
const (
	PayloadTypeHeartbeatUpdate = "heartbeat_update"
)

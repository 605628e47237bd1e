package models

// UserRecord 主存储中的用户记录
// MaxConnections 是排行榜的分值来源，同步任务只读取这一个字段
type UserRecord struct {
	ID                       string `json:"id" gorm:"column:id;primaryKey"`                                            // 用户唯一标识
	DisplayName              string `json:"name" gorm:"column:display_name"`                                           // 展示名
	InviteCode               string `json:"inviteCode" gorm:"column:invite_code"`                                      // 邀请码
	AllowRegistrationViaCode bool   `json:"allowRegistrationViaCode" gorm:"column:allow_registration_via_code"`        // 是否允许通过邀请码注册
	MaxConnections           int64  `json:"maxConnections" gorm:"column:max_connections"`                              // 历史最高连接数（排行榜分值）
	MaxConnectionsUpdatedAt  int64  `json:"maxConnectionsUpdatedAt,omitempty" gorm:"column:max_connections_updated_at"` // 分值最后更新时间（毫秒）
}

func (UserRecord) TableName() string {
	return "users"
}

// FollowerRecord 关注关系记录，按被关注用户归属（一对多）
// 后端只读；令牌与开关由客户端注册流程维护
type FollowerRecord struct {
	SubjectUserID       string `json:"subjectUserId" gorm:"column:subject_user_id;primaryKey"` // 被关注的用户ID
	FollowerID          string `json:"followerId" gorm:"column:follower_id;primaryKey"`        // 关注者ID
	NotificationEnabled bool   `json:"notificationEnabled" gorm:"column:notification_enabled"` // 是否接收心跳通知
	DeviceToken         string `json:"deviceToken,omitempty" gorm:"column:device_token"`       // 推送令牌，可为空
	CreatedAt           int64  `json:"createdAt" gorm:"column:created_at"`                     // 创建时间（毫秒）
}

func (FollowerRecord) TableName() string {
	return "user_followers"
}

// RankingEntry 有序索引中的一项 (score=maxConnections, member=userId)
type RankingEntry struct {
	UserID string `json:"userId"`
	Score  int64  `json:"score"`
}

// RankingUser 排行榜读取端返回的用户视图
type RankingUser struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	MaxConnections          int64  `json:"maxConnections"`
	MaxConnectionsUpdatedAt int64  `json:"maxConnectionsUpdatedAt,omitempty"`
}

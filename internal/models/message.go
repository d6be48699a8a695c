package models

import "time"

// 消息类型
const (
	MessageTypeText   = "text"   // 普通聊天
	MessageTypeHint   = "hint"   // 提示
	MessageTypeGift   = "gift"   // 礼物通知
	MessageTypeSystem = "system" // 系统消息
	MessageTypeEmote  = "emote"  // 表情动作
)

// 发送方角色
const (
	SenderRoleUser   = "user"   // 玩家
	SenderRoleHost   = "host"   // 主持人
	SenderRoleSystem = "system" // 系统
)

// Message 聊天消息表（仅追加，不修改不删除）
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"index;size:64;not null" json:"session_id"`
	UserID    uint      `gorm:"index;default:0" json:"user_id"` // 0 表示主持人/系统
	Sender    string    `gorm:"size:100" json:"sender"`
	Role      string    `gorm:"size:20;default:'user'" json:"role"`
	Type      string    `gorm:"size:20;default:'text'" json:"type"`
	Content   string    `gorm:"type:text" json:"content"`
	Emotion   string    `gorm:"size:20" json:"emotion,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// IsFromHost 检查消息是否来自主持人
func (m *Message) IsFromHost() bool {
	return m.Role == SenderRoleHost
}

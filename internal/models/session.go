package models

import (
	"time"

	"gorm.io/gorm"
)

// 游戏会话状态
const (
	SessionStatusWaiting   = "waiting"   // 等待中（尚未答题）
	SessionStatusActive    = "active"    // 进行中
	SessionStatusCompleted = "completed" // 已完成（全部线索答对）
)

// TriviaSession 答题会话表
// 每个房间对应一条会话记录，SessionID 为房间标识
type TriviaSession struct {
	BaseModel
	SessionID   string     `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	UserID      uint       `gorm:"index;default:0" json:"user_id"` // 0 表示匿名会话
	Status      string     `gorm:"size:20;default:'waiting'" json:"status"`
	CurrentClue int        `gorm:"default:1" json:"current_clue"`
	Score       int        `gorm:"default:0" json:"score"`
	HintsUsed   int        `gorm:"default:0" json:"hints_used"`
	CluesSolved int        `gorm:"default:0" json:"clues_solved"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Metadata    JSONMap    `gorm:"type:json" json:"metadata,omitempty"`
}

// TableName 指定表名
func (TriviaSession) TableName() string {
	return "trivia_sessions"
}

// BeforeCreate 创建前的钩子
func (s *TriviaSession) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = SessionStatusWaiting
	}
	if s.CurrentClue == 0 {
		s.CurrentClue = 1
	}
	return nil
}

// IsCompleted 检查会话是否已完成
func (s *TriviaSession) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}

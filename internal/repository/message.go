package repository

import (
	"context"
	"time"

	"github.com/wfunc/trivia-game/internal/models"
	"gorm.io/gorm"
)

// MessageRepository 消息仓储接口（仅追加，不提供更新和删除）
type MessageRepository interface {
	BaseRepository
	Append(ctx context.Context, message *models.Message) error
	RecentHistory(ctx context.Context, sessionID string, limit int) ([]*models.Message, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// messageRepo 消息仓储实现
type messageRepo struct {
	*BaseRepo
}

// NewMessageRepository 创建消息仓储
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Append 追加消息
func (r *messageRepo) Append(ctx context.Context, message *models.Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(message).Error
}

// RecentHistory 获取会话最近的消息（按时间升序返回）
// 先按时间倒序取最新的limit条，再反转为升序
func (r *messageRepo) RecentHistory(ctx context.Context, sessionID string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// 反转为时间升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// CountBySession 统计会话消息数
func (r *messageRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// CountAll 统计消息总数
func (r *messageRepo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *messageRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &messageRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

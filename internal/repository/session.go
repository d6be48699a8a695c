package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/trivia-game/internal/models"
	"gorm.io/gorm"
)

// SessionRepository 答题会话仓储接口
type SessionRepository interface {
	BaseRepository
	Create(ctx context.Context, session *models.TriviaSession) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.TriviaSession, error)
	MarkActive(ctx context.Context, sessionID string) error
	AdvanceClue(ctx context.Context, sessionID string, fromClue, points int) error
	Complete(ctx context.Context, sessionID string) error
	IncrementHints(ctx context.Context, sessionID string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	SumScore(ctx context.Context) (int64, error)
}

// sessionRepo 答题会话仓储实现
type sessionRepo struct {
	*BaseRepo
}

// NewSessionRepository 创建答题会话仓储
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建会话
func (r *sessionRepo) Create(ctx context.Context, session *models.TriviaSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindBySessionID 根据会话标识查找
func (r *sessionRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.TriviaSession, error) {
	var session models.TriviaSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("会话不存在")
		}
		return nil, err
	}
	return &session, nil
}

// MarkActive 将等待中的会话标记为进行中
func (r *sessionRepo) MarkActive(ctx context.Context, sessionID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.TriviaSession{}).
		Where("session_id = ? AND status = ?", sessionID, models.SessionStatusWaiting).
		Updates(map[string]interface{}{
			"status":     models.SessionStatusActive,
			"started_at": now,
		}).Error
}

// AdvanceClue 答对后从 fromClue 推进到下一条线索（原子更新）
// 以 current_clue = fromClue 为条件，同一线索并发答对时只有一次推进生效
func (r *sessionRepo) AdvanceClue(ctx context.Context, sessionID string, fromClue, points int) error {
	result := r.db.WithContext(ctx).
		Model(&models.TriviaSession{}).
		Where("session_id = ? AND status <> ? AND current_clue = ?",
			sessionID, models.SessionStatusCompleted, fromClue).
		Updates(map[string]interface{}{
			"score":        gorm.Expr("score + ?", points),
			"clues_solved": gorm.Expr("clues_solved + ?", 1),
			"current_clue": fromClue + 1,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("会话不存在、已完成或线索已被推进")
	}
	return nil
}

// Complete 标记会话完成
func (r *sessionRepo) Complete(ctx context.Context, sessionID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.TriviaSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":       models.SessionStatusCompleted,
			"completed_at": now,
		}).Error
}

// IncrementHints 累加提示使用次数（原子更新）
func (r *sessionRepo) IncrementHints(ctx context.Context, sessionID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.TriviaSession{}).
		Where("session_id = ?", sessionID).
		Update("hints_used", gorm.Expr("hints_used + ?", 1))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("会话不存在")
	}
	return nil
}

// CountByStatus 按状态统计会话数
func (r *sessionRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TriviaSession{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountAll 统计会话总数
func (r *sessionRepo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TriviaSession{}).Count(&count).Error
	return count, err
}

// SumScore 统计所有会话总得分
func (r *sessionRepo) SumScore(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.TriviaSession{}).
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error
	return total, err
}

// WithTx 使用事务
func (r *sessionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &sessionRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

package repository

import (
	"context"
	"errors"

	"github.com/wfunc/trivia-game/internal/models"
	"gorm.io/gorm"
)

// LevelRepository 线索关卡仓储接口
type LevelRepository interface {
	BaseRepository
	Create(ctx context.Context, level *models.Level) error
	FindByClueNumber(ctx context.Context, clueNumber int) (*models.Level, error)
	GetAll(ctx context.Context) ([]*models.Level, error)
	ExistsByClueNumber(ctx context.Context, clueNumber int) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// levelRepo 线索关卡仓储实现
type levelRepo struct {
	*BaseRepo
}

// NewLevelRepository 创建线索关卡仓储
func NewLevelRepository(db *gorm.DB) LevelRepository {
	return &levelRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建关卡
func (r *levelRepo) Create(ctx context.Context, level *models.Level) error {
	return r.db.WithContext(ctx).Create(level).Error
}

// FindByClueNumber 根据线索编号查找关卡
func (r *levelRepo) FindByClueNumber(ctx context.Context, clueNumber int) (*models.Level, error) {
	var level models.Level
	err := r.db.WithContext(ctx).
		Where("clue_number = ?", clueNumber).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("线索不存在")
		}
		return nil, err
	}
	return &level, nil
}

// GetAll 获取所有关卡（按线索编号排序）
func (r *levelRepo) GetAll(ctx context.Context) ([]*models.Level, error) {
	var levels []*models.Level
	err := r.db.WithContext(ctx).Order("clue_number ASC").Find(&levels).Error
	return levels, err
}

// ExistsByClueNumber 检查线索编号是否已存在
func (r *levelRepo) ExistsByClueNumber(ctx context.Context, clueNumber int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Level{}).
		Where("clue_number = ?", clueNumber).
		Count(&count).Error
	return count > 0, err
}

// Count 统计关卡数
func (r *levelRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Level{}).Count(&count).Error
	return count, err
}

// WithTx 使用事务
func (r *levelRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &levelRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wfunc/trivia-game/internal/models"
	"gorm.io/gorm"
)

// GiftRepository 礼物定义仓储接口
type GiftRepository interface {
	BaseRepository
	Create(ctx context.Context, gift *models.Gift) error
	FindByID(ctx context.Context, id uint) (*models.Gift, error)
	FindByName(ctx context.Context, name string) (*models.Gift, error)
	GetAll(ctx context.Context) ([]*models.Gift, error)
}

// giftRepo 礼物定义仓储实现
type giftRepo struct {
	*BaseRepo
}

// NewGiftRepository 创建礼物定义仓储
func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建礼物
func (r *giftRepo) Create(ctx context.Context, gift *models.Gift) error {
	return r.db.WithContext(ctx).Create(gift).Error
}

// FindByID 根据ID查找礼物
func (r *giftRepo) FindByID(ctx context.Context, id uint) (*models.Gift, error) {
	var gift models.Gift
	err := r.db.WithContext(ctx).First(&gift, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("礼物不存在")
		}
		return nil, err
	}
	return &gift, nil
}

// FindByName 根据名称查找礼物
func (r *giftRepo) FindByName(ctx context.Context, name string) (*models.Gift, error) {
	var gift models.Gift
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&gift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("礼物不存在")
		}
		return nil, err
	}
	return &gift, nil
}

// GetAll 获取所有礼物
func (r *giftRepo) GetAll(ctx context.Context) ([]*models.Gift, error) {
	var gifts []*models.Gift
	err := r.db.WithContext(ctx).Order("id ASC").Find(&gifts).Error
	return gifts, err
}

// WithTx 使用事务
func (r *giftRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &giftRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// InventoryRepository 用户库存仓储接口
type InventoryRepository interface {
	BaseRepository
	Grant(ctx context.Context, userID, giftID uint) error
	FindByUserAndGift(ctx context.Context, userID, giftID uint) (*models.Inventory, error)
	GetByUser(ctx context.Context, userID uint) ([]*models.Inventory, error)
	TotalGranted(ctx context.Context) (int64, error)
}

// inventoryRepo 用户库存仓储实现
type inventoryRepo struct {
	*BaseRepo
}

// NewInventoryRepository 创建用户库存仓储
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Grant 发放礼物
// 已有记录时原子累加数量，否则插入数量为1的新记录。
// 并发插入撞上唯一索引时回退为累加，保证每个(user_id, gift_id)至多一条记录。
func (r *inventoryRepo) Grant(ctx context.Context, userID, giftID uint) error {
	increment := func() (int64, error) {
		result := r.db.WithContext(ctx).
			Model(&models.Inventory{}).
			Where("user_id = ? AND gift_id = ?", userID, giftID).
			Update("quantity", gorm.Expr("quantity + ?", 1))
		return result.RowsAffected, result.Error
	}

	rows, err := increment()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// 不存在则插入第一条
	inventory := &models.Inventory{
		UserID:     userID,
		GiftID:     giftID,
		Quantity:   1,
		ObtainedAt: time.Now(),
	}
	err = r.db.WithContext(ctx).Create(inventory).Error
	if err == nil {
		return nil
	}

	// 并发插入冲突，回退为累加
	if isUniqueViolation(err) {
		rows, err = increment()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.New("礼物发放失败")
		}
		return nil
	}

	return err
}

// isUniqueViolation 判断是否为唯一索引冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// FindByUserAndGift 查找指定用户的指定礼物记录
func (r *inventoryRepo) FindByUserAndGift(ctx context.Context, userID, giftID uint) (*models.Inventory, error) {
	var inventory models.Inventory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND gift_id = ?", userID, giftID).
		First(&inventory).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("库存记录不存在")
		}
		return nil, err
	}
	return &inventory, nil
}

// GetByUser 获取用户的全部库存（带礼物信息）
func (r *inventoryRepo) GetByUser(ctx context.Context, userID uint) ([]*models.Inventory, error) {
	var inventories []*models.Inventory
	err := r.db.WithContext(ctx).
		Preload("Gift").
		Where("user_id = ?", userID).
		Order("obtained_at DESC").
		Find(&inventories).Error
	return inventories, err
}

// TotalGranted 统计发放的礼物总数
func (r *inventoryRepo) TotalGranted(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// WithTx 使用事务
func (r *inventoryRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &inventoryRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

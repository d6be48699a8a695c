package service

import (
	"context"

	apperrors "github.com/wfunc/trivia-game/internal/errors"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
)

// rewardService 奖励发放服务实现
type rewardService struct {
	giftRepo repository.GiftRepository
	invRepo  repository.InventoryRepository
	log      *zap.Logger
}

// NewRewardService 创建奖励发放服务
func NewRewardService(
	giftRepo repository.GiftRepository,
	invRepo repository.InventoryRepository,
	log *zap.Logger,
) RewardService {
	return &rewardService{
		giftRepo: giftRepo,
		invRepo:  invRepo,
		log:      log,
	}
}

// Grant 发放礼物
// 匿名用户（userID为0）或未知礼物名时静默跳过，不视为错误：
// 游戏流程不因奖励缺失而中断
func (s *rewardService) Grant(ctx context.Context, userID uint, giftName string) (bool, *models.Gift, error) {
	if userID == 0 {
		s.log.Debug("匿名用户跳过奖励发放", zap.String("gift", giftName))
		return false, nil, nil
	}

	gift, err := s.giftRepo.FindByName(ctx, giftName)
	if err != nil {
		s.log.Warn("礼物不存在，跳过发放",
			zap.Uint("user_id", userID),
			zap.String("gift", giftName),
		)
		return false, nil, nil
	}

	if err := s.invRepo.Grant(ctx, userID, gift.ID); err != nil {
		return false, nil, apperrors.Wrap(err, apperrors.ErrGrantFailed)
	}

	s.log.Info("礼物发放成功",
		zap.Uint("user_id", userID),
		zap.String("gift", giftName),
	)
	return true, gift, nil
}

// GetInventory 获取用户库存
func (s *rewardService) GetInventory(ctx context.Context, userID uint) ([]*models.Inventory, error) {
	inventories, err := s.invRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return inventories, nil
}

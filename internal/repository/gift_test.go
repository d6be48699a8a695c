package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/trivia-game/internal/models"
	"gorm.io/gorm"
)

// InventoryRepositoryTestSuite 礼物库存仓储测试套件
type InventoryRepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	giftRepo GiftRepository
	invRepo  InventoryRepository
	gift     *models.Gift
}

func (suite *InventoryRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.giftRepo = NewGiftRepository(suite.db)
	suite.invRepo = NewInventoryRepository(suite.db)

	suite.gift = &models.Gift{
		Name:   "Golden Key",
		Rarity: "rare",
	}
	err := suite.giftRepo.Create(context.Background(), suite.gift)
	suite.Require().NoError(err)
}

func (suite *InventoryRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestGiftRepository_FindByName 测试按名称查找礼物
func (suite *InventoryRepositoryTestSuite) TestGiftRepository_FindByName() {
	ctx := context.Background()

	found, err := suite.giftRepo.FindByName(ctx, "Golden Key")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.gift.ID, found.ID)

	_, err = suite.giftRepo.FindByName(ctx, "Unknown Gift")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "礼物不存在")
}

// TestInventoryRepository_Grant 测试首次发放
func (suite *InventoryRepositoryTestSuite) TestInventoryRepository_Grant() {
	ctx := context.Background()

	err := suite.invRepo.Grant(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)

	inv, err := suite.invRepo.FindByUserAndGift(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, inv.Quantity)
	assert.False(suite.T(), inv.ObtainedAt.IsZero())
}

// TestInventoryRepository_GrantTwice 测试重复发放只累加数量
func (suite *InventoryRepositoryTestSuite) TestInventoryRepository_GrantTwice() {
	ctx := context.Background()

	err := suite.invRepo.Grant(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	err = suite.invRepo.Grant(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)

	// 仍然只有一条记录，数量为2
	var count int64
	suite.db.Model(&models.Inventory{}).
		Where("user_id = ? AND gift_id = ?", 1, suite.gift.ID).
		Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	inv, err := suite.invRepo.FindByUserAndGift(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, inv.Quantity)
}

// TestInventoryRepository_GrantDifferentUsers 测试不同用户各自独立
func (suite *InventoryRepositoryTestSuite) TestInventoryRepository_GrantDifferentUsers() {
	ctx := context.Background()

	err := suite.invRepo.Grant(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	err = suite.invRepo.Grant(ctx, 2, suite.gift.ID)
	assert.NoError(suite.T(), err)

	inv1, err := suite.invRepo.FindByUserAndGift(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, inv1.Quantity)

	inv2, err := suite.invRepo.FindByUserAndGift(ctx, 2, suite.gift.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, inv2.Quantity)
}

// TestInventoryRepository_GetByUser 测试查询用户库存
func (suite *InventoryRepositoryTestSuite) TestInventoryRepository_GetByUser() {
	ctx := context.Background()

	coin := &models.Gift{Name: "Silver Coin", Rarity: "common"}
	err := suite.giftRepo.Create(ctx, coin)
	assert.NoError(suite.T(), err)

	err = suite.invRepo.Grant(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	err = suite.invRepo.Grant(ctx, 1, coin.ID)
	assert.NoError(suite.T(), err)

	inventories, err := suite.invRepo.GetByUser(ctx, 1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), inventories, 2)

	// 预加载礼物信息
	for _, inv := range inventories {
		assert.NotEmpty(suite.T(), inv.Gift.Name)
	}
}

// TestInventoryRepository_TotalGranted 测试发放总数统计
func (suite *InventoryRepositoryTestSuite) TestInventoryRepository_TotalGranted() {
	ctx := context.Background()

	err := suite.invRepo.Grant(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	err = suite.invRepo.Grant(ctx, 1, suite.gift.ID)
	assert.NoError(suite.T(), err)
	err = suite.invRepo.Grant(ctx, 2, suite.gift.ID)
	assert.NoError(suite.T(), err)

	total, err := suite.invRepo.TotalGranted(ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), total)
}

func TestInventoryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryRepositoryTestSuite))
}

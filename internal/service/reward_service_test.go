package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RewardServiceTestSuite 奖励服务测试套件
type RewardServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc RewardService
}

func (suite *RewardServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	giftRepo := repository.NewGiftRepository(suite.db)
	invRepo := repository.NewInventoryRepository(suite.db)
	suite.svc = NewRewardService(giftRepo, invRepo, zap.NewNop())

	err := giftRepo.Create(context.Background(), &models.Gift{Name: "Golden Key", Rarity: "rare"})
	suite.Require().NoError(err)
}

func (suite *RewardServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// TestGrant 测试正常发放
func (suite *RewardServiceTestSuite) TestGrant() {
	ctx := context.Background()

	granted, gift, err := suite.svc.Grant(ctx, 1, "Golden Key")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), granted)
	assert.Equal(suite.T(), "Golden Key", gift.Name)

	inventories, err := suite.svc.GetInventory(ctx, 1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), inventories, 1)
	assert.Equal(suite.T(), 1, inventories[0].Quantity)
}

// TestGrant_Anonymous 测试匿名用户静默跳过
func (suite *RewardServiceTestSuite) TestGrant_Anonymous() {
	ctx := context.Background()

	granted, gift, err := suite.svc.Grant(ctx, 0, "Golden Key")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), granted)
	assert.Nil(suite.T(), gift)
}

// TestGrant_UnknownGift 测试未知礼物静默跳过
func (suite *RewardServiceTestSuite) TestGrant_UnknownGift() {
	ctx := context.Background()

	granted, gift, err := suite.svc.Grant(ctx, 1, "Not Exist")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), granted)
	assert.Nil(suite.T(), gift)

	inventories, err := suite.svc.GetInventory(ctx, 1)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), inventories)
}

// TestGrant_Twice 测试重复发放累加数量
func (suite *RewardServiceTestSuite) TestGrant_Twice() {
	ctx := context.Background()

	_, _, err := suite.svc.Grant(ctx, 1, "Golden Key")
	assert.NoError(suite.T(), err)
	_, _, err = suite.svc.Grant(ctx, 1, "Golden Key")
	assert.NoError(suite.T(), err)

	inventories, err := suite.svc.GetInventory(ctx, 1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), inventories, 1)
	assert.Equal(suite.T(), 2, inventories[0].Quantity)
}

func TestRewardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RewardServiceTestSuite))
}

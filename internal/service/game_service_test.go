package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/trivia-game/internal/errors"
	"github.com/wfunc/trivia-game/internal/game"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GameServiceTestSuite 答题服务测试套件
type GameServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	svc         GameService
	reward      RewardService
	messageRepo repository.MessageRepository
	invRepo     repository.InventoryRepository
	user        *models.User
	goldenKey   *models.Gift
}

func (suite *GameServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(suite.db)
	sessionRepo := repository.NewSessionRepository(suite.db)
	suite.messageRepo = repository.NewMessageRepository(suite.db)
	giftRepo := repository.NewGiftRepository(suite.db)
	suite.invRepo = repository.NewInventoryRepository(suite.db)
	levelRepo := repository.NewLevelRepository(suite.db)

	suite.reward = NewRewardService(giftRepo, suite.invRepo, log)
	suite.svc = NewGameService(
		suite.db,
		sessionRepo,
		suite.messageRepo,
		levelRepo,
		userRepo,
		suite.reward,
		game.NewGrader(),
		100,
		"欢迎来到谜题之夜！",
		"主持人",
		log,
	)

	ctx := context.Background()

	suite.user = &models.User{Username: "player1", Status: "active"}
	suite.Require().NoError(userRepo.Create(ctx, suite.user))

	suite.goldenKey = &models.Gift{Name: "Golden Key", Rarity: "rare"}
	suite.Require().NoError(giftRepo.Create(ctx, suite.goldenKey))
}

func (suite *GameServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// TestGetOrCreateSession 测试会话创建与幂等
func (suite *GameServiceTestSuite) TestGetOrCreateSession() {
	ctx := context.Background()

	session, created, err := suite.svc.GetOrCreateSession(ctx, "room-1")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), created)
	assert.Equal(suite.T(), models.SessionStatusWaiting, session.Status)
	assert.Equal(suite.T(), 1, session.CurrentClue)
	assert.Equal(suite.T(), 0, session.Score)

	// 再次获取不重复创建
	again, created, err := suite.svc.GetOrCreateSession(ctx, "room-1")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), created)
	assert.Equal(suite.T(), session.ID, again.ID)

	// 欢迎消息只写入一次
	count, err := suite.messageRepo.CountBySession(ctx, "room-1")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), count)

	history, err := suite.messageRepo.RecentHistory(ctx, "room-1", 50)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MessageTypeSystem, history[0].Type)
}

// TestGetOrCreateSession_EmptyID 测试空会话标识
func (suite *GameServiceTestSuite) TestGetOrCreateSession_EmptyID() {
	ctx := context.Background()

	_, _, err := suite.svc.GetOrCreateSession(ctx, "  ")
	assert.Error(suite.T(), err)
}

// TestSubmitAnswer_Clue1Correct 测试答对第一条线索
// 得100分、推进到线索2、无奖励
func (suite *GameServiceTestSuite) TestSubmitAnswer_Clue1Correct() {
	ctx := context.Background()

	result, err := suite.svc.SubmitAnswer(ctx, "room-a", suite.user.ID, 1, "D")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)
	assert.Equal(suite.T(), 100, result.Points)
	assert.Empty(suite.T(), result.Reward)
	assert.False(suite.T(), result.RewardGranted)
	assert.False(suite.T(), result.Completed)
	assert.Equal(suite.T(), 100, result.Session.Score)
	assert.Equal(suite.T(), 2, result.Session.CurrentClue)
	assert.Equal(suite.T(), models.SessionStatusActive, result.Session.Status)

	// 未发放任何礼物
	inventories, err := suite.reward.GetInventory(ctx, suite.user.ID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), inventories)
}

// TestSubmitAnswer_Clue1Wrong 测试答错不推进
func (suite *GameServiceTestSuite) TestSubmitAnswer_Clue1Wrong() {
	ctx := context.Background()

	result, err := suite.svc.SubmitAnswer(ctx, "room-b", suite.user.ID, 1, "A")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Correct)
	assert.NotEmpty(suite.T(), result.Narrative)
	assert.Equal(suite.T(), 0, result.Session.Score)
	assert.Equal(suite.T(), 1, result.Session.CurrentClue)
}

// TestSubmitAnswer_WrongKeepsWaiting 测试答错不激活会话
// 只有首次答对才会进入进行中状态
func (suite *GameServiceTestSuite) TestSubmitAnswer_WrongKeepsWaiting() {
	ctx := context.Background()

	result, err := suite.svc.SubmitAnswer(ctx, "room-wait", suite.user.ID, 1, "A")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Correct)
	assert.Equal(suite.T(), models.SessionStatusWaiting, result.Session.Status)

	result, err = suite.svc.SubmitAnswer(ctx, "room-wait", suite.user.ID, 1, "D")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)
	assert.Equal(suite.T(), models.SessionStatusActive, result.Session.Status)
}

// TestSubmitAnswer_StaleClue 测试携带过期线索号的提交被拒绝
func (suite *GameServiceTestSuite) TestSubmitAnswer_StaleClue() {
	ctx := context.Background()

	result, err := suite.svc.SubmitAnswer(ctx, "room-stale", suite.user.ID, 1, "D")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)

	// 会话已在线索2，重放线索1的提交不得判定
	_, err = suite.svc.SubmitAnswer(ctx, "room-stale", suite.user.ID, 1, "D")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrGameStateError))

	session, err := suite.svc.GetSession(ctx, "room-stale")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, session.CurrentClue)
	assert.Equal(suite.T(), 100, session.Score)
}

// TestSubmitAnswer_Clue2GrantsReward 测试答对第二条线索发放奖励并完成
func (suite *GameServiceTestSuite) TestSubmitAnswer_Clue2GrantsReward() {
	ctx := context.Background()

	result, err := suite.svc.SubmitAnswer(ctx, "room-c", suite.user.ID, 1, "D")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)

	result, err = suite.svc.SubmitAnswer(ctx, "room-c", suite.user.ID, 2, "BONZ")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)
	assert.Equal(suite.T(), "Golden Key", result.Reward)
	assert.True(suite.T(), result.RewardGranted)
	assert.True(suite.T(), result.Completed)
	assert.Equal(suite.T(), 200, result.Session.Score)
	assert.True(suite.T(), result.Session.IsCompleted())

	// 库存恰好一条记录
	inv, err := suite.invRepo.FindByUserAndGift(ctx, suite.user.ID, suite.goldenKey.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, inv.Quantity)
}

// TestSubmitAnswer_Anonymous 测试匿名用户答对但不写库存
func (suite *GameServiceTestSuite) TestSubmitAnswer_Anonymous() {
	ctx := context.Background()

	result, err := suite.svc.SubmitAnswer(ctx, "room-anon", 0, 0, "D")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)

	result, err = suite.svc.SubmitAnswer(ctx, "room-anon", 0, 0, "bonz")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)
	assert.Equal(suite.T(), "Golden Key", result.Reward)
	assert.False(suite.T(), result.RewardGranted)

	// 没有任何库存记录
	var count int64
	suite.db.Model(&models.Inventory{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestSubmitAnswer_CompletedSession 测试已完成会话不再判定
func (suite *GameServiceTestSuite) TestSubmitAnswer_CompletedSession() {
	ctx := context.Background()

	_, err := suite.svc.SubmitAnswer(ctx, "room-done", suite.user.ID, 0, "D")
	assert.NoError(suite.T(), err)
	_, err = suite.svc.SubmitAnswer(ctx, "room-done", suite.user.ID, 0, "bonz")
	assert.NoError(suite.T(), err)

	result, err := suite.svc.SubmitAnswer(ctx, "room-done", suite.user.ID, 0, "D")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Correct)
	assert.Equal(suite.T(), completedNarrative, result.Narrative)
	assert.Equal(suite.T(), 200, result.Session.Score)
}

// TestUseHint 测试提示计数
func (suite *GameServiceTestSuite) TestUseHint() {
	ctx := context.Background()

	result, err := suite.svc.UseHint(ctx, "room-hint", 0)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), result.Hint)
	assert.Equal(suite.T(), 1, result.HintsUsed)

	result, err = suite.svc.UseHint(ctx, "room-hint", 1)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, result.HintsUsed)

	// 与当前线索不一致的提示请求被拒绝
	_, err = suite.svc.UseHint(ctx, "room-hint", 2)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrGameStateError))
}

// TestRecordProgress 测试单机模式进度上报
func (suite *GameServiceTestSuite) TestRecordProgress() {
	ctx := context.Background()

	session, err := suite.svc.RecordProgress(ctx, &ProgressRequest{
		SessionID:  "solo-1",
		UserID:     suite.user.ID,
		ClueNumber: 1,
		Answer:     "D",
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, session.CurrentClue)

	// 跳关上报被拒绝
	_, err = suite.svc.RecordProgress(ctx, &ProgressRequest{
		SessionID:  "solo-1",
		UserID:     suite.user.ID,
		ClueNumber: 1,
		Answer:     "D",
	})
	assert.Error(suite.T(), err)

	// 答错返回错误
	_, err = suite.svc.RecordProgress(ctx, &ProgressRequest{
		SessionID:  "solo-1",
		UserID:     suite.user.ID,
		ClueNumber: 2,
		Answer:     "wrong",
	})
	assert.Error(suite.T(), err)
}

// TestCreateLevel 测试关卡创建与编号冲突
func (suite *GameServiceTestSuite) TestCreateLevel() {
	ctx := context.Background()

	level, err := suite.svc.CreateLevel(ctx, &CreateLevelRequest{
		ClueNumber: 3,
		Question:   "新的谜题",
		Answer:     "moon",
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, level.ClueNumber)
	assert.Equal(suite.T(), 100, level.ScoreValue)

	// 重复编号冲突
	_, err = suite.svc.CreateLevel(ctx, &CreateLevelRequest{
		ClueNumber: 3,
		Question:   "重复",
		Answer:     "x",
	})
	assert.Error(suite.T(), err)

	levels, err := suite.svc.ListLevels(ctx)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), levels, 1)
}

func TestGameServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}

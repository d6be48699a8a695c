package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/trivia-game/internal/models"
	"gorm.io/gorm"
)

// MessageRepositoryTestSuite 消息仓储测试套件
type MessageRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo MessageRepository
}

func (suite *MessageRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.repo = NewMessageRepository(suite.db)
}

func (suite *MessageRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestMessageRepository_Append 测试追加消息
func (suite *MessageRepositoryTestSuite) TestMessageRepository_Append() {
	ctx := context.Background()

	msg := &models.Message{
		SessionID: "room-001",
		UserID:    1,
		Sender:    "玩家1",
		Role:      models.SenderRoleUser,
		Type:      models.MessageTypeText,
		Content:   "大家好",
	}

	err := suite.repo.Append(ctx, msg)
	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), msg.ID)
	assert.False(suite.T(), msg.CreatedAt.IsZero())
}

// TestMessageRepository_RecentHistory 测试历史消息窗口
// 写入60条后只返回最新50条，且按时间升序
func (suite *MessageRepositoryTestSuite) TestMessageRepository_RecentHistory() {
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 60; i++ {
		msg := &models.Message{
			SessionID: "room-history",
			Sender:    "玩家1",
			Role:      models.SenderRoleUser,
			Type:      models.MessageTypeText,
			Content:   fmt.Sprintf("M%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		err := suite.repo.Append(ctx, msg)
		assert.NoError(suite.T(), err)
	}

	history, err := suite.repo.RecentHistory(ctx, "room-history", 50)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), history, 50)

	// 最旧的10条被挤出窗口
	assert.Equal(suite.T(), "M11", history[0].Content)
	assert.Equal(suite.T(), "M60", history[49].Content)

	// 验证升序
	for i := 1; i < len(history); i++ {
		assert.False(suite.T(), history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}
}

// TestMessageRepository_RecentHistory_Isolated 测试会话之间互不影响
func (suite *MessageRepositoryTestSuite) TestMessageRepository_RecentHistory_Isolated() {
	ctx := context.Background()

	err := suite.repo.Append(ctx, &models.Message{
		SessionID: "room-a",
		Content:   "A的消息",
	})
	assert.NoError(suite.T(), err)
	err = suite.repo.Append(ctx, &models.Message{
		SessionID: "room-b",
		Content:   "B的消息",
	})
	assert.NoError(suite.T(), err)

	history, err := suite.repo.RecentHistory(ctx, "room-a", 50)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), history, 1)
	assert.Equal(suite.T(), "A的消息", history[0].Content)
}

// TestMessageRepository_RecentHistory_Empty 测试空会话返回空列表
func (suite *MessageRepositoryTestSuite) TestMessageRepository_RecentHistory_Empty() {
	ctx := context.Background()

	history, err := suite.repo.RecentHistory(ctx, "empty-room", 50)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), history)
}

// TestMessageRepository_Count 测试消息计数
func (suite *MessageRepositoryTestSuite) TestMessageRepository_Count() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := suite.repo.Append(ctx, &models.Message{
			SessionID: "room-count",
			Content:   "消息",
		})
		assert.NoError(suite.T(), err)
	}

	count, err := suite.repo.CountBySession(ctx, "room-count")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), count)

	total, err := suite.repo.CountAll(ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), total)
}

func TestMessageRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MessageRepositoryTestSuite))
}

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/trivia-game/internal/game"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChatServiceTestSuite 聊天服务测试套件
type ChatServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc ChatService
}

func (suite *ChatServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.svc = NewChatService(
		repository.NewMessageRepository(suite.db),
		game.NewHostResponder(nil),
		50,
		500,
		"主持人",
		zap.NewNop(),
	)
}

func (suite *ChatServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// TestSaveUserMessage 测试保存玩家消息
func (suite *ChatServiceTestSuite) TestSaveUserMessage() {
	ctx := context.Background()

	msg, err := suite.svc.SaveUserMessage(ctx, "room-1", 1, "玩家1", "大家好")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.SenderRoleUser, msg.Role)
	assert.Equal(suite.T(), models.MessageTypeText, msg.Type)
	assert.Equal(suite.T(), "大家好", msg.Content)
}

// TestSaveUserMessage_Validation 测试消息内容校验
func (suite *ChatServiceTestSuite) TestSaveUserMessage_Validation() {
	ctx := context.Background()

	// 空消息
	_, err := suite.svc.SaveUserMessage(ctx, "room-1", 1, "玩家1", "   ")
	assert.Error(suite.T(), err)

	// 超长消息
	_, err = suite.svc.SaveUserMessage(ctx, "room-1", 1, "玩家1", strings.Repeat("喵", 501))
	assert.Error(suite.T(), err)
}

// TestSaveHostMessage 测试保存主持人消息
func (suite *ChatServiceTestSuite) TestSaveHostMessage() {
	ctx := context.Background()

	msg, err := suite.svc.SaveHostMessage(ctx, "room-1", "欢迎！", "happy", "")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.SenderRoleHost, msg.Role)
	assert.Equal(suite.T(), models.MessageTypeText, msg.Type)
	assert.Equal(suite.T(), "happy", msg.Emotion)
	assert.Equal(suite.T(), "主持人", msg.Sender)

	// 系统消息使用系统角色
	msg, err = suite.svc.SaveHostMessage(ctx, "room-1", "玩家加入", "", models.MessageTypeSystem)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.SenderRoleSystem, msg.Role)
}

// TestHistory 测试历史按时间升序
func (suite *ChatServiceTestSuite) TestHistory() {
	ctx := context.Background()

	_, err := suite.svc.SaveUserMessage(ctx, "room-h", 1, "玩家1", "第一条")
	assert.NoError(suite.T(), err)
	_, err = suite.svc.SaveHostMessage(ctx, "room-h", "第二条", "", "")
	assert.NoError(suite.T(), err)

	history, err := suite.svc.History(ctx, "room-h")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), history, 2)
	assert.Equal(suite.T(), "第一条", history[0].Content)
	assert.Equal(suite.T(), "第二条", history[1].Content)
}

// TestHostReply 测试主持人回复
func (suite *ChatServiceTestSuite) TestHostReply() {
	reply := suite.svc.HostReply("你好")
	assert.NotEmpty(suite.T(), reply.Content)
	assert.NotEmpty(suite.T(), reply.Emotion)
}

func TestChatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChatServiceTestSuite))
}

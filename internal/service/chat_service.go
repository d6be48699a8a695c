package service

import (
	"context"
	"strings"

	apperrors "github.com/wfunc/trivia-game/internal/errors"
	"github.com/wfunc/trivia-game/internal/game"
	"github.com/wfunc/trivia-game/internal/logger"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
)

// chatService 聊天服务实现
type chatService struct {
	messageRepo repository.MessageRepository
	responder   *game.HostResponder

	historyLimit int
	maxLength    int
	hostName     string
	log          *zap.Logger
}

// NewChatService 创建聊天服务
func NewChatService(
	messageRepo repository.MessageRepository,
	responder *game.HostResponder,
	historyLimit int,
	maxLength int,
	hostName string,
	log *zap.Logger,
) ChatService {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	if maxLength <= 0 {
		maxLength = 500
	}
	return &chatService{
		messageRepo:  messageRepo,
		responder:    responder,
		historyLimit: historyLimit,
		maxLength:    maxLength,
		hostName:     hostName,
		log:          log,
	}
}

// SaveUserMessage 保存玩家消息
func (s *chatService) SaveUserMessage(ctx context.Context, sessionID string, userID uint, sender, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.New(apperrors.ErrMessageEmpty)
	}
	if len([]rune(content)) > s.maxLength {
		return nil, apperrors.Newf(apperrors.ErrMessageTooLong, "最多%d个字符", s.maxLength)
	}

	msg := &models.Message{
		SessionID: sessionID,
		UserID:    userID,
		Sender:    sender,
		Role:      models.SenderRoleUser,
		Type:      models.MessageTypeText,
		Content:   content,
	}

	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMessagePersist)
	}

	logger.LogChatMessage(sessionID, msg.Role, msg.Type)
	return msg, nil
}

// SaveHostMessage 保存主持人/系统消息
func (s *chatService) SaveHostMessage(ctx context.Context, sessionID, content, emotion, msgType string) (*models.Message, error) {
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	role := models.SenderRoleHost
	if msgType == models.MessageTypeSystem {
		role = models.SenderRoleSystem
	}

	msg := &models.Message{
		SessionID: sessionID,
		Sender:    s.hostName,
		Role:      role,
		Type:      msgType,
		Content:   content,
		Emotion:   emotion,
	}

	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMessagePersist)
	}

	logger.LogChatMessage(sessionID, msg.Role, msg.Type)
	return msg, nil
}

// History 获取会话最近的消息（时间升序）
func (s *chatService) History(ctx context.Context, sessionID string) ([]*models.Message, error) {
	messages, err := s.messageRepo.RecentHistory(ctx, sessionID, s.historyLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return messages, nil
}

// HostReply 生成主持人对聊天内容的回复
func (s *chatService) HostReply(message string) game.HostReply {
	return s.responder.Respond(message)
}

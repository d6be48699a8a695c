package service

import (
	"context"
	"strings"

	apperrors "github.com/wfunc/trivia-game/internal/errors"
	"github.com/wfunc/trivia-game/internal/game"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 会话完成后再次提交答案时的叙述
const completedNarrative = "本局谜题已经全部解开啦，等下一轮吧！"

// gameService 答题服务实现
type gameService struct {
	db          *gorm.DB
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	levelRepo   repository.LevelRepository
	userRepo    repository.UserRepository
	reward      RewardService
	grader      *game.Grader

	pointsPerAnswer int
	welcomeMessage  string
	hostName        string
	log             *zap.Logger
}

// NewGameService 创建答题服务
func NewGameService(
	db *gorm.DB,
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	levelRepo repository.LevelRepository,
	userRepo repository.UserRepository,
	reward RewardService,
	grader *game.Grader,
	pointsPerAnswer int,
	welcomeMessage string,
	hostName string,
	log *zap.Logger,
) GameService {
	if pointsPerAnswer <= 0 {
		pointsPerAnswer = 100
	}
	return &gameService{
		db:              db,
		sessionRepo:     sessionRepo,
		messageRepo:     messageRepo,
		levelRepo:       levelRepo,
		userRepo:        userRepo,
		reward:          reward,
		grader:          grader,
		pointsPerAnswer: pointsPerAnswer,
		welcomeMessage:  welcomeMessage,
		hostName:        hostName,
		log:             log,
	}
}

// GetOrCreateSession 获取或创建答题会话
// 新会话在同一事务中写入欢迎消息，保证每个会话只有一条欢迎消息
func (s *gameService) GetOrCreateSession(ctx context.Context, sessionID string) (*models.TriviaSession, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, false, apperrors.New(apperrors.ErrInvalidParam, "会话标识不能为空")
	}

	if session, err := s.sessionRepo.FindBySessionID(ctx, sessionID); err == nil {
		return session, false, nil
	}

	session := &models.TriviaSession{
		SessionID: sessionID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.sessionRepo.WithTx(tx).(repository.SessionRepository).Create(ctx, session); err != nil {
			return err
		}
		welcome := &models.Message{
			SessionID: sessionID,
			Sender:    s.hostName,
			Role:      models.SenderRoleSystem,
			Type:      models.MessageTypeSystem,
			Content:   s.welcomeMessage,
		}
		return s.messageRepo.WithTx(tx).(repository.MessageRepository).Append(ctx, welcome)
	})
	if err != nil {
		// 并发创建撞上唯一索引时回退为读取
		if existing, findErr := s.sessionRepo.FindBySessionID(ctx, sessionID); findErr == nil {
			return existing, false, nil
		}
		s.log.Error("创建会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, false, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}

	s.log.Info("创建答题会话", zap.String("session_id", sessionID))
	return session, true, nil
}

// GetSession 获取会话
func (s *gameService) GetSession(ctx context.Context, sessionID string) (*models.TriviaSession, error) {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrSessionNotFound, sessionID)
	}
	return session, nil
}

// SubmitAnswer 提交答案并推进会话
// clueNumber 为 0 时判定当前线索；非 0 且与当前线索不一致时拒绝，
// 客户端据此重新同步会话状态
func (s *gameService) SubmitAnswer(ctx context.Context, sessionID string, userID uint, clueNumber int, answer string) (*AnswerResult, error) {
	session, _, err := s.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// 已完成的会话不再判定
	if session.IsCompleted() {
		return &AnswerResult{
			Correct:   false,
			Narrative: completedNarrative,
			Session:   session,
		}, nil
	}

	if clueNumber != 0 && clueNumber != session.CurrentClue {
		return nil, apperrors.Newf(apperrors.ErrGameStateError,
			"当前线索为%d，收到%d", session.CurrentClue, clueNumber)
	}

	grade := s.grader.Grade(session.CurrentClue, answer)
	if !grade.Correct {
		session, _ = s.sessionRepo.FindBySessionID(ctx, sessionID)
		return &AnswerResult{
			Correct:   false,
			Narrative: grade.Narrative,
			Session:   session,
		}, nil
	}

	// 首次答对才激活会话，答错保持等待状态
	if session.Status == models.SessionStatusWaiting {
		if err := s.sessionRepo.MarkActive(ctx, sessionID); err != nil {
			s.log.Warn("激活会话失败", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	points := grade.Points
	if points <= 0 {
		points = s.pointsPerAnswer
	}

	// 以读取到的当前线索为条件推进，并发或重复提交时只有一次生效
	if err := s.sessionRepo.AdvanceClue(ctx, sessionID, session.CurrentClue, points); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}

	// 推进用户进度（匿名跳过）
	if userID != 0 {
		if err := s.userRepo.AddProgress(ctx, userID, points, 1); err != nil {
			s.log.Warn("更新用户进度失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	session, err = s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	// 最后一条线索解开后标记完成
	completed := false
	if session.CurrentClue > s.grader.ClueCount() {
		if err := s.sessionRepo.Complete(ctx, sessionID); err != nil {
			s.log.Warn("标记会话完成失败", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			completed = true
			session.Status = models.SessionStatusCompleted
		}
	}

	// 发放奖励（匿名或未知礼物时静默跳过）
	granted := false
	if grade.Reward != "" {
		granted, _, err = s.reward.Grant(ctx, userID, grade.Reward)
		if err != nil {
			s.log.Warn("奖励发放失败",
				zap.Uint("user_id", userID),
				zap.String("gift", grade.Reward),
				zap.Error(err),
			)
		}
	}

	s.log.Info("答对线索",
		zap.String("session_id", sessionID),
		zap.Uint("user_id", userID),
		zap.Int("points", points),
		zap.Bool("completed", completed),
	)

	return &AnswerResult{
		Correct:       true,
		Narrative:     grade.Narrative,
		Points:        points,
		Reward:        grade.Reward,
		RewardGranted: granted,
		Completed:     completed,
		Session:       session,
	}, nil
}

// UseHint 使用提示
// clueNumber 为 0 时取当前线索的提示；与当前线索不一致时拒绝
func (s *gameService) UseHint(ctx context.Context, sessionID string, clueNumber int) (*HintResult, error) {
	session, _, err := s.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if clueNumber != 0 && clueNumber != session.CurrentClue {
		return nil, apperrors.Newf(apperrors.ErrGameStateError,
			"当前线索为%d，收到%d", session.CurrentClue, clueNumber)
	}

	hint := "仔细观察题目，答案比你想的更近。"
	if level, err := s.levelRepo.FindByClueNumber(ctx, session.CurrentClue); err == nil && level.Question != "" {
		hint = level.Question
	}

	if err := s.sessionRepo.IncrementHints(ctx, sessionID); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}

	session, err = s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	return &HintResult{
		Hint:      hint,
		HintsUsed: session.HintsUsed,
		Session:   session,
	}, nil
}

// RecordProgress 单机模式进度上报
// 与实时模式共用同一会话存储和判定规则
func (s *gameService) RecordProgress(ctx context.Context, req *ProgressRequest) (*models.TriviaSession, error) {
	session, _, err := s.GetOrCreateSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// 只接受当前线索的上报，防止跳关
	if req.ClueNumber != session.CurrentClue {
		return nil, apperrors.Newf(apperrors.ErrGameStateError,
			"当前线索为%d，收到%d", session.CurrentClue, req.ClueNumber)
	}

	result, err := s.SubmitAnswer(ctx, req.SessionID, req.UserID, req.ClueNumber, req.Answer)
	if err != nil {
		return nil, err
	}
	if !result.Correct {
		return nil, apperrors.New(apperrors.ErrInvalidAnswer, result.Narrative)
	}

	return result.Session, nil
}

// CreateLevel 创建关卡
func (s *gameService) CreateLevel(ctx context.Context, req *CreateLevelRequest) (*models.Level, error) {
	exists, err := s.levelRepo.ExistsByClueNumber(ctx, req.ClueNumber)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if exists {
		return nil, apperrors.Newf(apperrors.ErrClueAlreadyExists, "线索编号%d", req.ClueNumber)
	}

	level := &models.Level{
		ClueNumber:    req.ClueNumber,
		Title:         req.Title,
		Question:      req.Question,
		Answer:        req.Answer,
		Aliases:       req.Aliases,
		CaseSensitive: req.CaseSensitive,
		PassMessage:   req.PassMessage,
		FailMessage:   req.FailMessage,
		RewardGift:    req.RewardGift,
		ScoreValue:    req.ScoreValue,
	}
	if level.ScoreValue <= 0 {
		level.ScoreValue = s.pointsPerAnswer
	}
	if level.PassMessage == "" {
		level.PassMessage = "答对了！"
	}
	if level.FailMessage == "" {
		level.FailMessage = "不对哦，再想想。"
	}

	if err := s.levelRepo.Create(ctx, level); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}

	// 新关卡即时生效
	s.grader.SetRule(level.ClueNumber, game.ClueRule{
		Answer:        level.Answer,
		Aliases:       level.Aliases,
		CaseSensitive: level.CaseSensitive,
		PassMessage:   level.PassMessage,
		FailMessage:   level.FailMessage,
		Reward:        level.RewardGift,
		Points:        level.ScoreValue,
	})

	s.log.Info("创建关卡", zap.Int("clue_number", level.ClueNumber))
	return level, nil
}

// ListLevels 获取所有关卡
func (s *gameService) ListLevels(ctx context.Context) ([]*models.Level, error) {
	return s.levelRepo.GetAll(ctx)
}

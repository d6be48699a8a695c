package service

import (
	"context"

	apperrors "github.com/wfunc/trivia-game/internal/errors"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
)

// statsService 统计服务实现
type statsService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	invRepo     repository.InventoryRepository
	log         *zap.Logger
}

// NewStatsService 创建统计服务
func NewStatsService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	invRepo repository.InventoryRepository,
	log *zap.Logger,
) StatsService {
	return &statsService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		invRepo:     invRepo,
		log:         log,
	}
}

// Leaderboard 获取排行榜
func (s *statsService) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	users, err := s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	entries := make([]*LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &LeaderboardEntry{
			Rank:        i + 1,
			UserID:      user.ID,
			Username:    user.Username,
			Nickname:    user.Nickname,
			Avatar:      user.Avatar,
			Level:       user.Level,
			CluesSolved: user.CluesSolved,
			Experience:  user.Experience,
		})
	}
	return entries, nil
}

// Overview 获取全局统计
func (s *statsService) Overview(ctx context.Context) (*GameStats, error) {
	stats := &GameStats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.CountUsers(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if stats.TotalSessions, err = s.sessionRepo.CountAll(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if stats.ActiveSessions, err = s.sessionRepo.CountByStatus(ctx, models.SessionStatusActive); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if stats.CompletedSessions, err = s.sessionRepo.CountByStatus(ctx, models.SessionStatusCompleted); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if stats.TotalMessages, err = s.messageRepo.CountAll(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if stats.TotalScore, err = s.sessionRepo.SumScore(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	if stats.GiftsGranted, err = s.invRepo.TotalGranted(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	return stats, nil
}

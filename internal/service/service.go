package service

import (
	"context"
	"strconv"
	"time"

	"github.com/wfunc/trivia-game/internal/config"
	"github.com/wfunc/trivia-game/internal/game"
	"github.com/wfunc/trivia-game/internal/repository"
	"github.com/wfunc/trivia-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth   AuthService
	Game   GameService
	Chat   ChatService
	Reward RewardService
	Stats  StatsService

	Grader    *game.Grader
	Responder *game.HostResponder
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Services {
	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewUserAuthRepository(db)
	userSessRepo := repository.NewUserSessionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	invRepo := repository.NewInventoryRepository(db)
	levelRepo := repository.NewLevelRepository(db)

	// 初始化JWT管理器
	jwtManager := utils.NewJWTManager(
		cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour,
		time.Duration(cfg.Security.JWT.RefreshHours)*time.Hour,
	)

	// 构建判定器：优先使用关卡表，空表回退到内置规则
	grader := buildGrader(db, levelRepo, cfg, log)

	// 主持人回复解析器
	responder := game.NewHostResponder(nil)

	// 初始化服务
	authService := NewAuthService(db, userRepo, authRepo, userSessRepo, jwtManager, log)
	rewardService := NewRewardService(giftRepo, invRepo, log)
	gameService := NewGameService(
		db,
		sessionRepo,
		messageRepo,
		levelRepo,
		userRepo,
		rewardService,
		grader,
		cfg.Game.PointsPerAnswer,
		cfg.Chat.WelcomeMessage,
		cfg.Chat.HostName,
		log,
	)
	chatService := NewChatService(
		messageRepo,
		responder,
		cfg.Chat.HistoryLimit,
		cfg.Chat.MaxMessageLength,
		cfg.Chat.HostName,
		log,
	)
	statsService := NewStatsService(userRepo, sessionRepo, messageRepo, invRepo, log)

	return &Services{
		Auth:      authService,
		Game:      gameService,
		Chat:      chatService,
		Reward:    rewardService,
		Stats:     statsService,
		Grader:    grader,
		Responder: responder,
	}
}

// buildGrader 构建线索判定器
func buildGrader(db *gorm.DB, levelRepo repository.LevelRepository, cfg *config.Config, log *zap.Logger) *game.Grader {
	var grader *game.Grader

	levels, err := levelRepo.GetAll(context.Background())
	if err != nil || len(levels) == 0 {
		if err != nil {
			log.Warn("加载关卡失败，使用内置规则", zap.Error(err))
		}
		grader = game.NewGrader()
	} else {
		grader = game.NewGraderFromLevels(levels)
		log.Info("从关卡表加载判定规则", zap.Int("count", len(levels)))
	}

	// 追加配置中的别名
	for key, aliases := range cfg.Game.ClueAliases {
		clueNumber, err := strconv.Atoi(key)
		if err != nil {
			log.Warn("无效的线索别名配置", zap.String("key", key))
			continue
		}
		grader.AddAliases(clueNumber, aliases)
	}

	return grader
}

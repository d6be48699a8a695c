package service

import (
	"context"

	"github.com/wfunc/trivia-game/internal/game"
	"github.com/wfunc/trivia-game/internal/models"
)

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, userID uint, token string) error
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
}

// GameService 答题服务接口
type GameService interface {
	// GetOrCreateSession 获取或创建答题会话
	// 新会话只写入一次欢迎消息；返回值第二项表示本次是否新建
	GetOrCreateSession(ctx context.Context, sessionID string) (*models.TriviaSession, bool, error)
	GetSession(ctx context.Context, sessionID string) (*models.TriviaSession, error)

	// SubmitAnswer 提交答案并推进会话
	// clueNumber为0时判定当前线索，非0且不一致时拒绝
	SubmitAnswer(ctx context.Context, sessionID string, userID uint, clueNumber int, answer string) (*AnswerResult, error)

	// UseHint 使用提示
	// clueNumber为0时取当前线索，非0且不一致时拒绝
	UseHint(ctx context.Context, sessionID string, clueNumber int) (*HintResult, error)

	// RecordProgress 单机模式进度上报（写入同一会话存储）
	RecordProgress(ctx context.Context, req *ProgressRequest) (*models.TriviaSession, error)

	// 关卡编辑
	CreateLevel(ctx context.Context, req *CreateLevelRequest) (*models.Level, error)
	ListLevels(ctx context.Context) ([]*models.Level, error)
}

// ChatService 聊天服务接口
type ChatService interface {
	// SaveUserMessage 保存玩家消息
	SaveUserMessage(ctx context.Context, sessionID string, userID uint, sender, content string) (*models.Message, error)

	// SaveHostMessage 保存主持人/系统消息
	SaveHostMessage(ctx context.Context, sessionID, content, emotion, msgType string) (*models.Message, error)

	// History 获取会话最近的消息（时间升序）
	History(ctx context.Context, sessionID string) ([]*models.Message, error)

	// HostReply 生成主持人对聊天内容的回复
	HostReply(message string) game.HostReply
}

// RewardService 奖励发放服务接口
type RewardService interface {
	// Grant 发放礼物
	// userID为0（匿名）或礼物不存在时静默跳过，返回false
	Grant(ctx context.Context, userID uint, giftName string) (bool, *models.Gift, error)

	// GetInventory 获取用户库存
	GetInventory(ctx context.Context, userID uint) ([]*models.Inventory, error)
}

// StatsService 统计服务接口
type StatsService interface {
	Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
	Overview(ctx context.Context) (*GameStats, error)
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
	Avatar          string `json:"avatar"`
	IP              string `json:"-"` // 客户端IP，由handler设置
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"` // 用户名或邮箱
	Password string `json:"password" binding:"required"`
	Device   string `json:"device"`
	IP       string `json:"ip"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// AnswerResult 答案判定结果
type AnswerResult struct {
	Correct       bool                  `json:"correct"`
	Narrative     string                `json:"narrative"`
	Points        int                   `json:"points"`
	Reward        string                `json:"reward,omitempty"`
	RewardGranted bool                  `json:"reward_granted"`
	Completed     bool                  `json:"completed"`
	Session       *models.TriviaSession `json:"session"`
}

// HintResult 提示结果
type HintResult struct {
	Hint      string                `json:"hint"`
	HintsUsed int                   `json:"hints_used"`
	Session   *models.TriviaSession `json:"session"`
}

// ProgressRequest 单机模式进度上报
type ProgressRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	UserID      uint   `json:"-"` // 由handler从认证信息注入
	ClueNumber  int    `json:"clue_number" binding:"required,min=1"`
	Answer      string `json:"answer" binding:"required"`
}

// CreateLevelRequest 创建关卡请求
type CreateLevelRequest struct {
	ClueNumber    int      `json:"clue_number" binding:"required,min=1"`
	Title         string   `json:"title"`
	Question      string   `json:"question" binding:"required"`
	Answer        string   `json:"answer" binding:"required"`
	Aliases       []string `json:"aliases"`
	CaseSensitive bool     `json:"case_sensitive"`
	PassMessage   string   `json:"pass_message"`
	FailMessage   string   `json:"fail_message"`
	RewardGift    string   `json:"reward_gift"`
	ScoreValue    int      `json:"score_value"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	Avatar      string `json:"avatar"`
	Level       int    `json:"level"`
	CluesSolved int    `json:"clues_solved"`
	Experience  int    `json:"experience"`
}

// GameStats 全局统计
type GameStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalSessions     int64 `json:"total_sessions"`
	ActiveSessions    int64 `json:"active_sessions"`
	CompletedSessions int64 `json:"completed_sessions"`
	TotalMessages     int64 `json:"total_messages"`
	TotalScore        int64 `json:"total_score"`
	GiftsGranted      int64 `json:"gifts_granted"`
}

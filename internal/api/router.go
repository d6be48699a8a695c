package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/trivia-game/internal/config"
	"github.com/wfunc/trivia-game/internal/middleware"
	"github.com/wfunc/trivia-game/internal/service"
	"github.com/wfunc/trivia-game/internal/utils"
	ws "github.com/wfunc/trivia-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	services       *service.Services
	hub            *ws.Hub
	authHandler    *AuthHandler
	triviaHandler  *TriviaHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 创建服务
	services := service.NewServices(db, cfg, log)

	// WebSocket中心与答题消息处理器
	hub := ws.NewHub(log)
	handler := ws.NewTriviaMessageHandler(
		hub,
		services.Game,
		services.Chat,
		services.Reward,
		cfg.Game.Host.ReplyDelayMin,
		cfg.Game.Host.ReplyDelayMax,
		log,
	)
	hub.SetMessageHandler(handler)

	// 创建处理器
	authHandler := NewAuthHandler(services.Auth)
	triviaHandler := NewTriviaHandler(services.Game, services.Reward, services.Stats)
	wsHandler := NewWebSocketHandler(hub, log)

	// 创建中间件
	jwtManager := utils.NewJWTManager(
		cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour,
		time.Duration(cfg.Security.JWT.RefreshHours)*time.Hour,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	router := &Router{
		engine:         engine,
		db:             db,
		services:       services,
		hub:            hub,
		authHandler:    authHandler,
		triviaHandler:  triviaHandler,
		wsHandler:      wsHandler,
		authMiddleware: authMiddleware,
		log:            log,
	}

	router.setupRoutes(cfg)

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes(cfg *config.Config) {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			// 需要认证的路由
			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.POST("/logout", r.authHandler.Logout)
				authRequired.GET("/profile", r.authHandler.GetProfile)
			}
		}

		// 公开查询
		v1.GET("/leaderboard", r.triviaHandler.GetLeaderboard)
		v1.GET("/stats", r.triviaHandler.GetStats)
		v1.GET("/online", r.wsHandler.GetOnlineCount)
		v1.GET("/levels", r.triviaHandler.ListLevels)
		v1.GET("/sessions/:id", r.triviaHandler.GetSession)

		// 库存（需要认证）
		v1.GET("/inventory", r.authMiddleware.RequireAuth(), r.triviaHandler.GetInventory)

		// 关卡编辑（需要认证）
		v1.POST("/levels", r.authMiddleware.RequireAuth(), r.triviaHandler.CreateLevel)

		// 单机模式进度上报（可匿名）
		v1.POST("/progress", r.authMiddleware.OptionalAuth(), r.triviaHandler.RecordProgress)
	}

	// WebSocket路由（可匿名接入）
	wsPath := cfg.WebSocket.Path
	if wsPath == "" {
		wsPath = "/ws/game"
	}
	r.engine.GET(wsPath, r.authMiddleware.OptionalAuth(), r.wsHandler.GameWebSocket)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 启动Hub并运行服务器
func (r *Router) Run(addr string) error {
	go r.hub.Run()

	r.log.Info("启动API服务器", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试和外部Server管理）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetHub 获取WebSocket中心
func (r *Router) GetHub() *ws.Hub {
	return r.hub
}

// GetServices 获取服务集合
func (r *Router) GetServices() *service.Services {
	return r.services
}

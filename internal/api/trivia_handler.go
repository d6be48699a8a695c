package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/trivia-game/internal/errors"
	"github.com/wfunc/trivia-game/internal/middleware"
	"github.com/wfunc/trivia-game/internal/service"
)

// TriviaHandler 答题游戏REST处理器
type TriviaHandler struct {
	gameService   service.GameService
	rewardService service.RewardService
	statsService  service.StatsService
}

// NewTriviaHandler 创建答题处理器
func NewTriviaHandler(
	gameService service.GameService,
	rewardService service.RewardService,
	statsService service.StatsService,
) *TriviaHandler {
	return &TriviaHandler{
		gameService:   gameService,
		rewardService: rewardService,
		statsService:  statsService,
	}
}

// GetSession 获取会话状态
func (h *TriviaHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.gameService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetInventory 获取当前用户库存
func (h *TriviaHandler) GetInventory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "未登录",
		})
		return
	}

	inventories, err := h.rewardService.GetInventory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": inventories,
		"count": len(inventories),
	})
}

// GetLeaderboard 获取排行榜
func (h *TriviaHandler) GetLeaderboard(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := h.statsService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
	})
}

// GetStats 获取全局统计
func (h *TriviaHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CreateLevel 创建关卡
func (h *TriviaHandler) CreateLevel(c *gin.Context) {
	var req service.CreateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	level, err := h.gameService.CreateLevel(c.Request.Context(), &req)
	if err != nil {
		// 线索编号重复返回冲突
		if apperrors.Is(err, apperrors.ErrClueAlreadyExists) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Code:    "CLUE_EXISTS",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "CREATE_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, level)
}

// ListLevels 获取关卡列表
func (h *TriviaHandler) ListLevels(c *gin.Context) {
	levels, err := h.gameService.ListLevels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"levels": levels,
		"count":  len(levels),
	})
}

// RecordProgress 单机模式进度上报
func (h *TriviaHandler) RecordProgress(c *gin.Context) {
	var req service.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	// 匿名上报时userID为0
	userID, _ := middleware.GetUserID(c)
	req.UserID = userID

	session, err := h.gameService.RecordProgress(c.Request.Context(), &req)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case apperrors.Is(err, apperrors.ErrSessionNotFound):
			status = http.StatusNotFound
		case apperrors.Is(err, apperrors.ErrGameStateError):
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{
			Code:    "PROGRESS_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

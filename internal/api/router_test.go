package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/trivia-game/internal/config"
	"github.com/wfunc/trivia-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APITestSuite REST接口集成测试套件
type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *Router
	token  string
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.db = repository.SetupTestDB()

	cfg := &config.Config{}
	cfg.Security.JWT.Secret = "test-secret"
	cfg.Security.JWT.ExpireHours = 1
	cfg.Security.JWT.RefreshHours = 24
	cfg.Game.PointsPerAnswer = 100
	cfg.Game.Host.ReplyDelayMin = 10 * time.Millisecond
	cfg.Game.Host.ReplyDelayMax = 20 * time.Millisecond
	cfg.Chat.HistoryLimit = 50
	cfg.Chat.MaxMessageLength = 500
	cfg.Chat.WelcomeMessage = "欢迎来到谜题之夜！"
	cfg.Chat.HostName = "主持人"
	cfg.WebSocket.Path = "/ws/game"

	suite.router = NewRouter(suite.db, cfg, zap.NewNop())
	suite.token = suite.register("player1", "player1@example.com")
}

func (suite *APITestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// request 发起测试请求
func (suite *APITestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.GetEngine().ServeHTTP(w, req)
	return w
}

// register 注册用户并返回访问令牌
func (suite *APITestSuite) register(username, email string) string {
	w := suite.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username":         username,
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
	}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotEmpty(resp.AccessToken)
	return resp.AccessToken
}

// TestHealthCheck 测试健康检查
func (suite *APITestSuite) TestHealthCheck() {
	w := suite.request(http.MethodGet, "/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestLogin 测试登录
func (suite *APITestSuite) TestLogin() {
	w := suite.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"account":  "player1",
		"password": "secret123",
	}, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	// 错误密码
	w = suite.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"account":  "player1",
		"password": "wrong",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestProfile 测试获取个人信息
func (suite *APITestSuite) TestProfile() {
	w := suite.request(http.MethodGet, "/api/v1/auth/profile", nil, suite.token)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/auth/profile", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestInventory 测试库存查询需要认证
func (suite *APITestSuite) TestInventory() {
	w := suite.request(http.MethodGet, "/api/v1/inventory", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/inventory", nil, suite.token)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), 0, resp.Count)
}

// TestCreateLevel 测试关卡创建与编号冲突
func (suite *APITestSuite) TestCreateLevel() {
	body := map[string]interface{}{
		"clue_number": 5,
		"question":    "月亮的背面是什么？",
		"answer":      "moon",
	}

	// 未认证拒绝
	w := suite.request(http.MethodPost, "/api/v1/levels", body, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/levels", body, suite.token)
	assert.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	// 重复编号返回冲突
	w = suite.request(http.MethodPost, "/api/v1/levels", body, suite.token)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	// 列表可见
	w = suite.request(http.MethodGet, "/api/v1/levels", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), 1, resp.Count)
}

// TestRecordProgress 测试单机模式进度上报
func (suite *APITestSuite) TestRecordProgress() {
	body := map[string]interface{}{
		"session_id":  "solo-api",
		"clue_number": 1,
		"answer":      "D",
	}

	// 匿名上报也可以
	w := suite.request(http.MethodPost, "/api/v1/progress", body, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var session struct {
		CurrentClue int `json:"current_clue"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(suite.T(), 2, session.CurrentClue)

	// 跳关被拒绝
	w = suite.request(http.MethodPost, "/api/v1/progress", body, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	// 答错返回错误
	w = suite.request(http.MethodPost, "/api/v1/progress", map[string]interface{}{
		"session_id":  "solo-api",
		"clue_number": 2,
		"answer":      "wrong",
	}, suite.token)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestLeaderboardAndStats 测试排行榜与统计
func (suite *APITestSuite) TestLeaderboardAndStats() {
	w := suite.request(http.MethodGet, "/api/v1/leaderboard", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/stats", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var stats struct {
		TotalUsers int64 `json:"total_users"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(suite.T(), int64(1), stats.TotalUsers)
}

// TestOnlineCount 测试在线人数
func (suite *APITestSuite) TestOnlineCount() {
	w := suite.request(http.MethodGet, "/api/v1/online", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		OnlineCount int `json:"online_count"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), 0, resp.OnlineCount)
}

// TestGetSession 测试会话查询
func (suite *APITestSuite) TestGetSession() {
	// 先通过进度上报创建会话
	w := suite.request(http.MethodPost, "/api/v1/progress", map[string]interface{}{
		"session_id":  "solo-query",
		"clue_number": 1,
		"answer":      "D",
	}, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/sessions/solo-query", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/sessions/not-exist", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

package websocket

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"time"

	apperrors "github.com/wfunc/trivia-game/internal/errors"
	"github.com/wfunc/trivia-game/internal/models"
	"github.com/wfunc/trivia-game/internal/service"
	"go.uber.org/zap"
)

// TriviaMessageHandler 答题房间消息处理器
type TriviaMessageHandler struct {
	hub           *Hub
	gameService   service.GameService
	chatService   service.ChatService
	rewardService service.RewardService
	logger        *zap.Logger

	// 主持人回复延迟区间
	replyDelayMin time.Duration
	replyDelayMax time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewTriviaMessageHandler 创建答题消息处理器
func NewTriviaMessageHandler(
	hub *Hub,
	gameService service.GameService,
	chatService service.ChatService,
	rewardService service.RewardService,
	replyDelayMin time.Duration,
	replyDelayMax time.Duration,
	logger *zap.Logger,
) *TriviaMessageHandler {
	if replyDelayMin <= 0 {
		replyDelayMin = 1500 * time.Millisecond
	}
	if replyDelayMax < replyDelayMin {
		replyDelayMax = replyDelayMin
	}
	return &TriviaMessageHandler{
		hub:           hub,
		gameService:   gameService,
		chatService:   chatService,
		rewardService: rewardService,
		logger:        logger,
		replyDelayMin: replyDelayMin,
		replyDelayMax: replyDelayMax,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleClientMessage 处理客户端消息
func (h *TriviaMessageHandler) HandleClientMessage(client *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Error("解析消息失败",
			zap.String("client_id", client.ID),
			zap.Error(err))
		h.sendError(client, "消息格式错误")
		client.Close()
		return
	}

	if msg.Type == "" {
		h.sendError(client, "消息类型不能为空")
		client.Close()
		return
	}

	h.logger.Debug("收到WebSocket消息",
		zap.String("client_id", client.ID),
		zap.String("type", msg.Type),
		zap.Uint("user_id", client.UserID))

	switch msg.Type {
	case EventPing:
		client.SendMessage(EventPong, map[string]string{"message": "pong"})

	case EventPong:
		// 心跳响应，无需处理

	case EventJoinGame:
		h.handleJoinGame(client, &msg)

	case EventSendMessage:
		h.handleSendMessage(client, &msg)

	case EventSubmitAnswer:
		h.handleSubmitAnswer(client, &msg)

	case EventRequestHint:
		h.handleRequestHint(client, &msg)

	case EventTyping:
		h.handleTyping(client)

	case EventSendEmote:
		h.handleSendEmote(client, &msg)

	default:
		h.logger.Warn("未知消息类型",
			zap.String("client_id", client.ID),
			zap.String("type", msg.Type))
		h.sendError(client, "不支持的消息类型: "+msg.Type)
	}
}

// HandleClientDisconnect 客户端断开后广播离开事件
func (h *TriviaMessageHandler) HandleClientDisconnect(client *Client) {
	sessionID := client.SessionID
	if sessionID == "" {
		return
	}

	payload := h.playerPayload(client)
	h.sendToRoom(sessionID, EventPlayerLeft, payload)
	h.sendToRoom(sessionID, EventUserLeft, payload)
	h.broadcastActiveUsers(sessionID)
}

// handleJoinGame 处理加入游戏
func (h *TriviaMessageHandler) handleJoinGame(client *Client, msg *Message) {
	var data struct {
		SessionID string `json:"session_id"`
		Username  string `json:"username"`
	}
	if msg.Data != nil {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(client, "加入参数错误")
			return
		}
	}

	sessionID := strings.TrimSpace(data.SessionID)
	if sessionID == "" {
		sessionID = msg.SessionID
	}
	if sessionID == "" {
		h.sendError(client, "缺少会话标识")
		return
	}
	if data.Username != "" {
		client.Username = data.Username
	}

	ctx := context.Background()

	session, created, err := h.gameService.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		h.logger.Error("获取会话失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		h.sendError(client, "加入游戏失败")
		return
	}

	h.hub.JoinRoom(client, sessionID)

	// 先回会话状态，再回历史消息
	client.SendMessage(EventGameJoined, map[string]interface{}{
		"session":      session,
		"created":      created,
		"online_count": h.hub.RoomCount(sessionID),
	})

	history, err := h.chatService.History(ctx, sessionID)
	if err != nil {
		h.logger.Warn("加载历史消息失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		history = nil
	}
	client.SendMessage(EventMessageHistory, map[string]interface{}{
		"messages": history,
	})

	// 通知房间内其他玩家
	h.hub.SendToRoomExcept(sessionID, client.ID, h.event(EventUserJoined, sessionID, h.playerPayload(client)))
	h.broadcastActiveUsers(sessionID)

	h.logger.Info("玩家加入答题房间",
		zap.String("session_id", sessionID),
		zap.Uint("user_id", client.UserID),
		zap.String("username", client.Username))
}

// handleSendMessage 处理聊天消息
func (h *TriviaMessageHandler) handleSendMessage(client *Client, msg *Message) {
	sessionID := client.SessionID
	if sessionID == "" {
		h.sendError(client, "请先加入游戏")
		return
	}

	var data struct {
		Content string `json:"content"`
	}
	if msg.Data != nil {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(client, "消息参数错误")
			return
		}
	}

	ctx := context.Background()

	saved, err := h.chatService.SaveUserMessage(ctx, sessionID, client.UserID, client.Username, data.Content)
	if err != nil {
		// 校验失败直接拒绝，落库失败仍然转发
		if !apperrors.Is(err, apperrors.ErrMessagePersist) {
			h.sendError(client, err.Error())
			return
		}
		h.logger.Warn("消息落库失败，仍然转发",
			zap.String("session_id", sessionID),
			zap.Error(err))
		saved = &models.Message{
			SessionID: sessionID,
			UserID:    client.UserID,
			Sender:    client.Username,
			Role:      models.SenderRoleUser,
			Type:      models.MessageTypeText,
			Content:   strings.TrimSpace(data.Content),
			CreatedAt: time.Now(),
		}
	}

	h.sendToRoom(sessionID, EventNewMessage, map[string]interface{}{
		"message": saved,
	})

	// 延迟主持人回复，计时器不依赖客户端连接
	h.scheduleHostReply(sessionID, client.UserID, client.Username, saved.Content)
}

// scheduleHostReply 调度主持人延迟回复
// 回复规则命中带奖励的规则时，在host-response之后发放并广播礼物
func (h *TriviaMessageHandler) scheduleHostReply(sessionID string, userID uint, username, content string) {
	delay := h.replyDelay()

	time.AfterFunc(delay, func() {
		reply := h.chatService.HostReply(content)

		ctx := context.Background()
		saved, err := h.chatService.SaveHostMessage(ctx, sessionID, reply.Content, reply.Emotion, models.MessageTypeText)
		if err != nil {
			h.logger.Warn("主持人消息落库失败，仍然转发",
				zap.String("session_id", sessionID),
				zap.Error(err))
			saved = &models.Message{
				SessionID: sessionID,
				Role:      models.SenderRoleHost,
				Type:      models.MessageTypeText,
				Content:   reply.Content,
				Emotion:   reply.Emotion,
				CreatedAt: time.Now(),
			}
		}

		h.sendToRoom(sessionID, EventHostResponse, map[string]interface{}{
			"message": saved,
			"emotion": reply.Emotion,
		})

		if reply.Reward == "" {
			return
		}

		// 匿名或未知礼物时Grant静默跳过，不广播
		granted, _, err := h.rewardService.Grant(ctx, userID, reply.Reward)
		if err != nil {
			h.logger.Warn("主持人奖励发放失败",
				zap.String("session_id", sessionID),
				zap.Uint("user_id", userID),
				zap.String("gift", reply.Reward),
				zap.Error(err))
			return
		}
		if !granted {
			return
		}

		if _, err := h.chatService.SaveHostMessage(ctx, sessionID,
			username+" 获得了 "+reply.Reward, "excited", models.MessageTypeGift); err != nil {
			h.logger.Warn("礼物消息落库失败",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		h.sendToRoom(sessionID, EventReceiveGift, map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"gift":     reply.Reward,
		})
	})
}

// replyDelay 在配置区间内随机取回复延迟
func (h *TriviaMessageHandler) replyDelay() time.Duration {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()

	span := h.replyDelayMax - h.replyDelayMin
	if span <= 0 {
		return h.replyDelayMin
	}
	return h.replyDelayMin + time.Duration(h.rng.Int63n(int64(span)))
}

// handleSubmitAnswer 处理答案提交
func (h *TriviaMessageHandler) handleSubmitAnswer(client *Client, msg *Message) {
	sessionID := client.SessionID
	if sessionID == "" {
		h.sendError(client, "请先加入游戏")
		return
	}

	var data struct {
		ClueID int    `json:"clue_id"`
		Answer string `json:"answer"`
	}
	if msg.Data != nil {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(client, "答案参数错误")
			return
		}
	}

	ctx := context.Background()

	result, err := h.gameService.SubmitAnswer(ctx, sessionID, client.UserID, data.ClueID, data.Answer)
	if err != nil {
		// 线索不一致时回推会话状态供客户端重新同步
		if apperrors.Is(err, apperrors.ErrGameStateError) {
			h.sendError(client, err.Error())
			h.syncSession(client, sessionID)
			return
		}
		h.logger.Error("答案判定失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		h.sendError(client, "答案判定失败")
		return
	}

	// 判定结果先落库（尽力而为），再广播
	if _, err := h.chatService.SaveHostMessage(ctx, sessionID, result.Narrative, "", models.MessageTypeText); err != nil {
		h.logger.Warn("判定消息落库失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	payload := map[string]interface{}{
		"username":  client.Username,
		"narrative": result.Narrative,
		"points":    result.Points,
		"completed": result.Completed,
		"session":   result.Session,
	}

	if result.Correct {
		h.sendToRoom(sessionID, EventAnswerCorrect, payload)

		// 礼物事件必须在答对事件之后
		if result.RewardGranted {
			if _, err := h.chatService.SaveHostMessage(ctx, sessionID,
				client.Username+" 获得了 "+result.Reward, "excited", models.MessageTypeGift); err != nil {
				h.logger.Warn("礼物消息落库失败",
					zap.String("session_id", sessionID),
					zap.Error(err))
			}
			h.sendToRoom(sessionID, EventReceiveGift, map[string]interface{}{
				"user_id":  client.UserID,
				"username": client.Username,
				"gift":     result.Reward,
			})
		}
	} else {
		h.sendToRoom(sessionID, EventAnswerWrong, payload)
	}
}

// handleRequestHint 处理提示请求
func (h *TriviaMessageHandler) handleRequestHint(client *Client, msg *Message) {
	sessionID := client.SessionID
	if sessionID == "" {
		h.sendError(client, "请先加入游戏")
		return
	}

	var data struct {
		ClueID int `json:"clue_id"`
	}
	if msg.Data != nil {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(client, "提示参数错误")
			return
		}
	}

	ctx := context.Background()

	result, err := h.gameService.UseHint(ctx, sessionID, data.ClueID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrGameStateError) {
			h.sendError(client, err.Error())
			h.syncSession(client, sessionID)
			return
		}
		h.logger.Error("获取提示失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		h.sendError(client, "获取提示失败")
		return
	}

	if _, err := h.chatService.SaveHostMessage(ctx, sessionID, result.Hint, "thoughtful", models.MessageTypeHint); err != nil {
		h.logger.Warn("提示消息落库失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	client.SendMessage(EventReceiveHint, map[string]interface{}{
		"hint":       result.Hint,
		"hints_used": result.HintsUsed,
	})
}

// handleTyping 处理输入状态
func (h *TriviaMessageHandler) handleTyping(client *Client) {
	sessionID := client.SessionID
	if sessionID == "" {
		return
	}

	h.hub.SendToRoomExcept(sessionID, client.ID, h.event(EventPlayerTyping, sessionID, h.playerPayload(client)))
}

// handleSendEmote 处理表情动作
// 表情只广播不落库，不进入消息历史
func (h *TriviaMessageHandler) handleSendEmote(client *Client, msg *Message) {
	sessionID := client.SessionID
	if sessionID == "" {
		h.sendError(client, "请先加入游戏")
		return
	}

	var data struct {
		Emote string `json:"emote"`
	}
	if msg.Data != nil {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(client, "表情参数错误")
			return
		}
	}

	emote := strings.TrimSpace(data.Emote)
	if emote == "" {
		h.sendError(client, "表情不能为空")
		return
	}

	h.sendToRoom(sessionID, EventPlayerEmote, map[string]interface{}{
		"user_id":  client.UserID,
		"username": client.Username,
		"emote":    emote,
	})
}

// syncSession 将最新会话状态回推给客户端
func (h *TriviaMessageHandler) syncSession(client *Client, sessionID string) {
	session, err := h.gameService.GetSession(context.Background(), sessionID)
	if err != nil {
		h.logger.Warn("回推会话状态失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}
	client.SendMessage(EventGameJoined, map[string]interface{}{
		"session":      session,
		"created":      false,
		"online_count": h.hub.RoomCount(sessionID),
	})
}

// broadcastActiveUsers 广播房间在线玩家列表
func (h *TriviaMessageHandler) broadcastActiveUsers(sessionID string) {
	clients := h.hub.RoomClients(sessionID)

	users := make([]map[string]interface{}, 0, len(clients))
	for _, c := range clients {
		users = append(users, map[string]interface{}{
			"user_id":  c.UserID,
			"username": c.Username,
		})
	}

	h.sendToRoom(sessionID, EventActiveUsers, map[string]interface{}{
		"count": len(users),
		"users": users,
	})
}

// playerPayload 构造玩家事件载荷
func (h *TriviaMessageHandler) playerPayload(client *Client) map[string]interface{} {
	return map[string]interface{}{
		"user_id":  client.UserID,
		"username": client.Username,
	}
}

// sendToRoom 向房间广播事件
func (h *TriviaMessageHandler) sendToRoom(sessionID, eventType string, payload interface{}) {
	h.hub.SendToRoom(sessionID, h.event(eventType, sessionID, payload))
}

// event 构造事件消息
func (h *TriviaMessageHandler) event(eventType, sessionID string, payload interface{}) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("序列化事件失败",
			zap.String("type", eventType),
			zap.Error(err))
		data = json.RawMessage(`{}`)
	}
	return &Message{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

// sendError 发送错误消息
func (h *TriviaMessageHandler) sendError(client *Client, message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	errorMsg := &Message{
		Type:      EventError,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	h.hub.SendToClient(client.ID, errorMsg)
}

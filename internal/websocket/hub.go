package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MessageHandler 客户端消息处理器
type MessageHandler interface {
	// HandleClientMessage 处理客户端发来的消息
	HandleClientMessage(client *Client, data []byte)

	// HandleClientDisconnect 客户端断开后回调（已从连接池移除）
	HandleClientDisconnect(client *Client)
}

// Hub WebSocket连接管理中心
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 用户ID到客户端的映射
	userClients map[uint][]*Client
	userMu      sync.RWMutex

	// 房间成员映射（房间即答题会话）
	rooms  map[string]map[string]*Client
	roomMu sync.RWMutex

	// 消息广播通道
	broadcast chan *Message

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 消息处理器
	messageHandler MessageHandler

	// 日志
	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	UserID    uint            `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 事件类型
const (
	// 系统事件
	EventConnected = "connected"
	EventPing      = "ping"
	EventPong      = "pong"
	EventError     = "error"

	// 客户端事件
	EventJoinGame     = "join-game"
	EventSendMessage  = "send-message"
	EventSubmitAnswer = "submit-answer"
	EventRequestHint  = "request-hint"
	EventTyping       = "typing"
	EventSendEmote    = "send-emote"

	// 服务端事件
	EventGameJoined     = "game-joined"
	EventMessageHistory = "message-history"
	EventNewMessage     = "new-message"
	EventHostResponse   = "host-response"
	EventAnswerCorrect  = "answer-correct"
	EventAnswerWrong    = "answer-wrong"
	EventReceiveGift    = "receive-gift"
	EventReceiveHint    = "receive-hint"
	EventPlayerTyping   = "player-typing"
	EventPlayerEmote    = "player-emote"
	EventPlayerLeft     = "player-left"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventActiveUsers    = "active-users"
)

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		userClients: make(map[uint][]*Client),
		rooms:       make(map[string]map[string]*Client),
		broadcast:   make(chan *Message, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// SetMessageHandler 设置消息处理器
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.messageHandler = handler
}

// Run 运行Hub
func (h *Hub) Run() {
	// 启动心跳检测
	go h.runHeartbeat()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	if client.UserID > 0 {
		h.userMu.Lock()
		h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
		h.userMu.Unlock()
	}

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.Uint("user_id", client.UserID))

	msg := &Message{
		Type:      EventConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	}
	h.SendToClient(client.ID, msg)
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	} else {
		h.clientsMu.Unlock()
		return
	}
	h.clientsMu.Unlock()

	if client.UserID > 0 {
		h.userMu.Lock()
		clients := h.userClients[client.UserID]
		for i, c := range clients {
			if c.ID == client.ID {
				h.userClients[client.UserID] = append(clients[:i], clients[i+1:]...)
				break
			}
		}
		if len(h.userClients[client.UserID]) == 0 {
			delete(h.userClients, client.UserID)
		}
		h.userMu.Unlock()
	}

	h.leaveRoom(client)

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.Uint("user_id", client.UserID))

	if h.messageHandler != nil {
		h.messageHandler.HandleClientDisconnect(client)
	}
}

// JoinRoom 将客户端加入房间（同一客户端同时只在一个房间）
func (h *Hub) JoinRoom(client *Client, sessionID string) {
	h.leaveRoom(client)

	h.roomMu.Lock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[string]*Client)
	}
	h.rooms[sessionID][client.ID] = client
	h.roomMu.Unlock()

	client.SessionID = sessionID
}

// leaveRoom 将客户端移出当前房间
func (h *Hub) leaveRoom(client *Client) {
	if client.SessionID == "" {
		return
	}

	h.roomMu.Lock()
	if members, ok := h.rooms[client.SessionID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, client.SessionID)
		}
	}
	h.roomMu.Unlock()
}

// RoomClients 获取房间内客户端快照
func (h *Hub) RoomClients(sessionID string) []*Client {
	h.roomMu.RLock()
	defer h.roomMu.RUnlock()

	members := h.rooms[sessionID]
	clients := make([]*Client, 0, len(members))
	for _, client := range members {
		clients = append(clients, client)
	}
	return clients
}

// RoomCount 获取房间在线人数
func (h *Hub) RoomCount(sessionID string) int {
	h.roomMu.RLock()
	defer h.roomMu.RUnlock()
	return len(h.rooms[sessionID])
}

// broadcastMessage 广播消息给所有客户端
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID))
		}
	}
	h.clientsMu.RUnlock()
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendToUser 发送消息给指定用户的所有客户端
func (h *Hub) SendToUser(userID uint, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.userMu.RLock()
	clients := h.userClients[userID]
	h.userMu.RUnlock()

	if len(clients) == 0 {
		return ErrUserNotConnected
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("用户客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.Uint("user_id", userID))
		}
	}

	return nil
}

// SendToRoom 发送消息给房间内所有客户端
func (h *Hub) SendToRoom(sessionID string, message *Message) {
	h.sendToRoomExcept(sessionID, "", message)
}

// SendToRoomExcept 发送消息给房间内除指定客户端外的所有客户端
func (h *Hub) SendToRoomExcept(sessionID, exceptClientID string, message *Message) {
	h.sendToRoomExcept(sessionID, exceptClientID, message)
}

func (h *Hub) sendToRoomExcept(sessionID, exceptClientID string, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.roomMu.RLock()
	defer h.roomMu.RUnlock()

	for _, client := range h.rooms[sessionID] {
		if client.ID == exceptClientID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("房间客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.String("session_id", sessionID))
		}
	}
}

// GetOnlineUsers 获取在线用户列表
func (h *Hub) GetOnlineUsers() []uint {
	h.userMu.RLock()
	defer h.userMu.RUnlock()

	users := make([]uint, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

// GetOnlineCount 获取在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// runHeartbeat 运行心跳检测
func (h *Hub) runHeartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		ping := &Message{
			Type:      EventPing,
			Timestamp: time.Now().Unix(),
		}
		h.broadcast <- ping
	}
}

// Broadcast 广播消息（公开方法）
func (h *Hub) Broadcast(message *Message) {
	h.broadcast <- message
}

// Register 注册客户端（公开方法）
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端（公开方法）
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
